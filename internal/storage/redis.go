package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"monitor-precos/internal/models"

	"github.com/redis/go-redis/v9"
)

// Chaves usadas no Redis, sempre por usuário.
const (
	keyUser     = "user:%d"     // hash: token, is_active
	keyProducts = "products:%d" // lista de produtos em JSON
	keyNotified = "notified:%d" // conjunto de URLs já notificadas
	keyActivity = "activity:%d" // chave com expiração para atividade recente
)

var (
	// ErrUserNotFound indica que o usuário não está registrado
	ErrUserNotFound = errors.New("usuário não encontrado")
	// ErrInvalidProduct indica um registro de produto inválido
	ErrInvalidProduct = errors.New("produto inválido")
)

// Store encapsula o acesso ao Redis
type Store struct {
	rdb *redis.Client
}

// New cria uma nova instância do armazenamento e valida a conexão
func New(addr, password string, db int) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("erro ao conectar no Redis (%s): %w", addr, err)
	}

	log.Println("Armazenamento inicializado com sucesso")
	return &Store{rdb: rdb}, nil
}

// NewWithClient cria o armazenamento a partir de um cliente existente (útil em testes)
func NewWithClient(rdb *redis.Client) (*Store, error) {
	if rdb == nil {
		return nil, errors.New("cliente redis é nil")
	}
	return &Store{rdb: rdb}, nil
}

// Close fecha a conexão com o Redis
func (s *Store) Close() error {
	return s.rdb.Close()
}

// SaveUser registra o usuário com seu token de acesso
func (s *Store) SaveUser(ctx context.Context, userID int64, token string) error {
	if err := s.rdb.HSet(ctx, userKey(userID), "token", token, "is_active", "1").Err(); err != nil {
		return fmt.Errorf("erro ao salvar usuário %d: %w", userID, err)
	}
	return nil
}

// GetUser retorna os dados do usuário
func (s *Store) GetUser(ctx context.Context, userID int64) (models.User, error) {
	fields, err := s.rdb.HGetAll(ctx, userKey(userID)).Result()
	if err != nil {
		return models.User{}, fmt.Errorf("erro ao buscar usuário %d: %w", userID, err)
	}
	if len(fields) == 0 {
		return models.User{}, ErrUserNotFound
	}
	return models.User{
		TelegramID: userID,
		Token:      fields["token"],
		IsActive:   fields["is_active"] == "1",
	}, nil
}

// GetUserToken retorna o token de acesso do usuário
func (s *Store) GetUserToken(ctx context.Context, userID int64) (string, error) {
	token, err := s.rdb.HGet(ctx, userKey(userID), "token").Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("erro ao buscar token do usuário %d: %w", userID, err)
	}
	return token, nil
}

// DeleteUser remove o usuário, sua lista de produtos e o estado de notificação
func (s *Store) DeleteUser(ctx context.Context, userID int64) error {
	keys := []string{userKey(userID), productsKey(userID), notifiedKey(userID), activityKey(userID)}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("erro ao remover usuário %d: %w", userID, err)
	}
	return nil
}

// SaveProducts substitui a lista de produtos do usuário.
// A troca limpa o conjunto de URLs notificadas: uma nova lista rearma os alertas.
func (s *Store) SaveProducts(ctx context.Context, userID int64, products []models.Product) error {
	encoded := make([]interface{}, 0, len(products))
	for _, product := range products {
		if err := validateProduct(product); err != nil {
			return err
		}
		data, err := json.Marshal(product)
		if err != nil {
			return fmt.Errorf("erro ao serializar produto %q: %w", product.ProductURL, err)
		}
		encoded = append(encoded, string(data))
	}

	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, productsKey(userID), notifiedKey(userID))
	if len(encoded) > 0 {
		pipe.RPush(ctx, productsKey(userID), encoded...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("erro ao salvar produtos do usuário %d: %w", userID, err)
	}
	return nil
}

// GetProducts retorna a lista de produtos do usuário
func (s *Store) GetProducts(ctx context.Context, userID int64) ([]models.Product, error) {
	entries, err := s.rdb.LRange(ctx, productsKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar produtos do usuário %d: %w", userID, err)
	}

	products := make([]models.Product, 0, len(entries))
	for _, entry := range entries {
		var product models.Product
		if err := json.Unmarshal([]byte(entry), &product); err != nil {
			log.Printf("Registro de produto ilegível para o usuário %d, ignorando: %v", userID, err)
			continue
		}
		if err := validateProduct(product); err != nil {
			log.Printf("Registro de produto inválido para o usuário %d, ignorando: %v", userID, err)
			continue
		}
		products = append(products, product)
	}
	return products, nil
}

// GetAllUsers retorna os IDs de todos os usuários registrados
func (s *Store) GetAllUsers(ctx context.Context) ([]int64, error) {
	var userIDs []int64
	iter := s.rdb.Scan(ctx, 0, "user:*", 100).Iterator()
	for iter.Next(ctx) {
		var userID int64
		if _, err := fmt.Sscanf(iter.Val(), "user:%d", &userID); err != nil {
			continue
		}
		userIDs = append(userIDs, userID)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("erro ao listar usuários: %w", err)
	}
	return userIDs, nil
}

// IsNotified verifica se o usuário já foi alertado sobre essa URL
func (s *Store) IsNotified(ctx context.Context, userID int64, url string) (bool, error) {
	notified, err := s.rdb.SIsMember(ctx, notifiedKey(userID), url).Result()
	if err != nil {
		return false, fmt.Errorf("erro ao consultar notificação (%d, %s): %w", userID, url, err)
	}
	return notified, nil
}

// MarkNotified registra que o usuário já foi alertado sobre essa URL.
// A operação é idempotente: marcar duas vezes não tem efeito adicional.
func (s *Store) MarkNotified(ctx context.Context, userID int64, url string) error {
	if err := s.rdb.SAdd(ctx, notifiedKey(userID), url).Err(); err != nil {
		return fmt.Errorf("erro ao marcar notificação (%d, %s): %w", userID, url, err)
	}
	return nil
}

// MarkActivity registra atividade recente do usuário com expiração automática
func (s *Store) MarkActivity(ctx context.Context, userID int64, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, activityKey(userID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("erro ao registrar atividade do usuário %d: %w", userID, err)
	}
	return nil
}

// IsActive informa se o usuário teve atividade dentro da janela de expiração
func (s *Store) IsActive(ctx context.Context, userID int64) (bool, error) {
	count, err := s.rdb.Exists(ctx, activityKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("erro ao consultar atividade do usuário %d: %w", userID, err)
	}
	return count > 0, nil
}

// validateProduct valida um registro na fronteira do armazenamento
func validateProduct(product models.Product) error {
	if product.ProductURL == "" {
		return fmt.Errorf("%w: product_url vazio", ErrInvalidProduct)
	}
	if product.TargetPrice < 0 {
		return fmt.Errorf("%w: target_price negativo (%s)", ErrInvalidProduct, product.ProductURL)
	}
	return nil
}

func userKey(userID int64) string     { return fmt.Sprintf(keyUser, userID) }
func productsKey(userID int64) string { return fmt.Sprintf(keyProducts, userID) }
func notifiedKey(userID int64) string { return fmt.Sprintf(keyNotified, userID) }
func activityKey(userID int64) string { return fmt.Sprintf(keyActivity, userID) }
