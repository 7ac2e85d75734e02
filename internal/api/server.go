package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"monitor-precos/internal/models"
	"monitor-precos/internal/scraper"
	"monitor-precos/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// activityTTL define por quanto tempo um usuário conta como ativo
const activityTTL = 24 * time.Hour

// productPayload é o formato de produto no protocolo da extensão (camelCase)
type productPayload struct {
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	TargetPrice float64 `json:"targetPrice"`
	ImageURL    string  `json:"imageUrl"`
	ProductURL  string  `json:"productUrl"`
	Marketplace string  `json:"marketplace"`
}

type saveProductsRequest struct {
	TelegramID int64            `json:"telegram_id" binding:"required"`
	Token      string           `json:"token" binding:"required"`
	Products   []productPayload `json:"products"`
}

// Server expõe a API HTTP de armazenamento usada pela extensão do navegador
type Server struct {
	store  *storage.Store
	engine *gin.Engine
	srv    *http.Server
}

// NewServer cria o servidor da API
func NewServer(store *storage.Store, allowedOrigins []string) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	if len(allowedOrigins) > 0 {
		engine.Use(cors.New(cors.Config{
			AllowOrigins:     allowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type"},
			AllowCredentials: true,
		}))
	}

	server := &Server{store: store, engine: engine}
	engine.POST("/api/save-products", server.saveProducts)
	engine.GET("/api/get-products", server.getProducts)
	return server
}

// Engine retorna o roteador (útil em testes)
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run inicia o servidor HTTP e bloqueia até ele ser encerrado
func (s *Server) Run(addr string) error {
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("API de armazenamento ouvindo em %s", addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown encerra o servidor respeitando o contexto
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// saveProducts substitui a lista de produtos do usuário.
// A troca da lista também rearma os alertas (limpa as URLs já notificadas).
func (s *Server) saveProducts(c *gin.Context) {
	var req saveProductsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "payload inválido"})
		return
	}

	if !s.authorize(c, req.TelegramID, req.Token) {
		return
	}

	products := make([]models.Product, 0, len(req.Products))
	for _, payload := range req.Products {
		if scraper.ValidateURL(payload.ProductURL) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "URL não suportada: " + payload.ProductURL})
			return
		}
		products = append(products, models.Product{
			Title:       payload.Title,
			Price:       payload.Price,
			TargetPrice: payload.TargetPrice,
			ImageURL:    payload.ImageURL,
			ProductURL:  payload.ProductURL,
			Marketplace: payload.Marketplace,
		})
	}

	if err := s.store.SaveProducts(c.Request.Context(), req.TelegramID, products); err != nil {
		if errors.Is(err, storage.ErrInvalidProduct) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}
		log.Printf("Erro ao salvar produtos do usuário %d: %v", req.TelegramID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "erro interno"})
		return
	}

	log.Printf("Produtos salvos para o usuário %d (%d itens)", req.TelegramID, len(products))
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// getProducts devolve a lista de produtos do usuário no formato da extensão
func (s *Server) getProducts(c *gin.Context) {
	var query struct {
		TelegramID int64  `form:"telegram_id" binding:"required"`
		Token      string `form:"token" binding:"required"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "parâmetros inválidos"})
		return
	}

	if !s.authorize(c, query.TelegramID, query.Token) {
		return
	}

	products, err := s.store.GetProducts(c.Request.Context(), query.TelegramID)
	if err != nil {
		log.Printf("Erro ao buscar produtos do usuário %d: %v", query.TelegramID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "erro interno"})
		return
	}

	payload := make([]productPayload, 0, len(products))
	for _, product := range products {
		payload = append(payload, productPayload{
			Title:       product.Title,
			Price:       product.Price,
			TargetPrice: product.TargetPrice,
			ImageURL:    product.ImageURL,
			ProductURL:  product.ProductURL,
			Marketplace: product.Marketplace,
		})
	}
	c.JSON(http.StatusOK, gin.H{"products": payload})
}

// authorize confere o token do usuário e registra a atividade
func (s *Server) authorize(c *gin.Context, userID int64, token string) bool {
	stored, err := s.store.GetUserToken(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			c.JSON(http.StatusForbidden, gin.H{"detail": "Invalid token"})
			return false
		}
		log.Printf("Erro ao validar token do usuário %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "erro interno"})
		return false
	}
	if stored != token {
		c.JSON(http.StatusForbidden, gin.H{"detail": "Invalid token"})
		return false
	}

	if err := s.store.MarkActivity(c.Request.Context(), userID, activityTTL); err != nil {
		log.Printf("Erro ao registrar atividade do usuário %d: %v", userID, err)
	}
	return true
}
