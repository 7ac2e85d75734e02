package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"monitor-precos/config"
	"monitor-precos/internal/api"
	"monitor-precos/internal/monitor"
	"monitor-precos/internal/notifier"
	"monitor-precos/internal/pricesource"
	"monitor-precos/internal/scraper"
	"monitor-precos/internal/storage"

	"github.com/joho/godotenv"
)

func main() {
	// Carregar variáveis de ambiente
	if err := godotenv.Load(); err != nil {
		log.Println("Arquivo .env não encontrado, usando variáveis de ambiente do sistema")
	}

	// Carregar configurações
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Erro ao carregar configurações: %v", err)
	}

	// Inicializar armazenamento
	store, err := storage.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Erro ao inicializar armazenamento: %v", err)
	}
	defer store.Close()

	// Inicializar notificador do Telegram
	telegram, err := notifier.NewTelegram(cfg.TelegramBotToken)
	if err != nil {
		log.Fatalf("Erro ao inicializar bot do Telegram: %v", err)
	}

	// Inicializar scrapers e fonte de preços
	registry := scraper.NewRegistry(scraper.RetryPolicy{
		MaxRetries:      uint64(cfg.FetchMaxRetries),
		InitialInterval: 500 * time.Millisecond,
	})
	source := pricesource.New(registry, cfg.FetchConcurrency, cfg.FetchTimeout)

	// Criar gerenciador de monitoramento
	monitorInstance := monitor.New(store, source, telegram, monitor.Options{
		Interval:        cfg.CheckInterval,
		BackoffInterval: cfg.BackoffInterval,
		CycleTimeout:    cfg.CycleTimeout,
		BatchSize:       cfg.BatchSize,
		BatchPause:      cfg.BatchPause,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Iniciar monitoramento em background
	monitorDone := make(chan struct{})
	go func() {
		defer close(monitorDone)
		monitorInstance.Start(ctx)
	}()

	// Iniciar a API de armazenamento usada pela extensão
	server := api.NewServer(store, cfg.APIAllowedOrigins)
	go func() {
		if err := server.Run(cfg.APIListenAddr); err != nil {
			log.Printf("Erro na API de armazenamento: %v", err)
			stop()
		}
	}()

	// Aguardar sinal de interrupção
	<-ctx.Done()
	log.Println("Encerrando bot...")

	// Encerramento gracioso: parar a API e esperar o ciclo em andamento,
	// limitado pelo período de carência
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Erro ao encerrar a API: %v", err)
	}

	select {
	case <-monitorDone:
	case <-shutdownCtx.Done():
		log.Println("Tempo de carência esgotado, encerrando mesmo assim")
	}
}
