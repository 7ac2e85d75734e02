package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contém as configurações da aplicação
type Config struct {
	TelegramBotToken string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CheckInterval   time.Duration // intervalo entre ciclos de monitoramento
	BackoffInterval time.Duration // espera reduzida após um ciclo com falha
	CycleTimeout    time.Duration // watchdog: tempo máximo de um ciclo
	BatchSize       int           // quantidade de URLs por lote
	BatchPause      time.Duration // pausa entre lotes dentro de um ciclo

	FetchConcurrency int           // buscas de preço simultâneas
	FetchTimeout     time.Duration // tempo máximo por URL
	FetchMaxRetries  int           // novas tentativas HTTP dentro de uma busca

	APIListenAddr     string
	APIAllowedOrigins []string
}

// Load carrega as configurações das variáveis de ambiente
func Load() (*Config, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN não configurado")
	}

	cfg := &Config{
		TelegramBotToken: token,
		RedisAddr:        "localhost:6379",
		CheckInterval:    600 * time.Second,
		BackoffInterval:  60 * time.Second,
		CycleTimeout:     300 * time.Second,
		BatchSize:        50,
		BatchPause:       2 * time.Second,
		FetchConcurrency: 10,
		FetchTimeout:     15 * time.Second,
		FetchMaxRetries:  2,
		APIListenAddr:    ":8000",
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.RedisAddr = addr
	}
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if db, err := strconv.Atoi(dbStr); err == nil && db >= 0 {
			cfg.RedisDB = db
		}
	}

	cfg.CheckInterval = loadSeconds("CHECK_INTERVAL_SECONDS", cfg.CheckInterval)
	cfg.BackoffInterval = loadSeconds("BACKOFF_SECONDS", cfg.BackoffInterval)
	cfg.CycleTimeout = loadSeconds("CYCLE_TIMEOUT_SECONDS", cfg.CycleTimeout)
	cfg.BatchPause = loadSeconds("BATCH_PAUSE_SECONDS", cfg.BatchPause)
	cfg.FetchTimeout = loadSeconds("FETCH_TIMEOUT_SECONDS", cfg.FetchTimeout)

	cfg.BatchSize = loadInt("BATCH_SIZE", cfg.BatchSize)
	cfg.FetchConcurrency = loadInt("FETCH_CONCURRENCY", cfg.FetchConcurrency)
	cfg.FetchMaxRetries = loadInt("FETCH_MAX_RETRIES", cfg.FetchMaxRetries)

	if addr := os.Getenv("API_LISTEN_ADDR"); addr != "" {
		cfg.APIListenAddr = addr
	}
	if origins := os.Getenv("API_ALLOWED_ORIGINS"); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.APIAllowedOrigins = append(cfg.APIAllowedOrigins, origin)
			}
		}
	}

	// O backoff deve ser estritamente menor que o intervalo normal
	if cfg.BackoffInterval >= cfg.CheckInterval {
		cfg.BackoffInterval = cfg.CheckInterval / 2
	}

	return cfg, nil
}

func loadSeconds(name string, fallback time.Duration) time.Duration {
	if envValue := os.Getenv(name); envValue != "" {
		if parsed, err := strconv.Atoi(envValue); err == nil && parsed > 0 {
			return time.Duration(parsed) * time.Second
		}
	}
	return fallback
}

func loadInt(name string, fallback int) int {
	if envValue := os.Getenv(name); envValue != "" {
		if parsed, err := strconv.Atoi(envValue); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}
