package scraper

import (
	"context"
	"fmt"
	"strings"
)

// WildberriesScraper implementa o scraper para o Wildberries
type WildberriesScraper struct {
	fetcher *fetcher
}

// NewWildberriesScraper cria uma nova instância do scraper do Wildberries
func NewWildberriesScraper(fetcher *fetcher) *WildberriesScraper {
	return &WildberriesScraper{fetcher: fetcher}
}

// CanHandle verifica se o scraper pode lidar com a URL fornecida
func (w *WildberriesScraper) CanHandle(url string) bool {
	return strings.Contains(url, "wildberries.ru")
}

// GetPrice extrai o preço de um produto do Wildberries
func (w *WildberriesScraper) GetPrice(ctx context.Context, url string) (float64, error) {
	doc, err := w.fetcher.fetchDocument(ctx, cleanURL(url))
	if err != nil {
		return 0, err
	}

	priceText := strings.TrimSpace(doc.Find(".price-block__final-price").First().Text())
	if priceText == "" {
		priceText = strings.TrimSpace(doc.Find("ins.price-block__final-price").First().Text())
	}
	if priceText == "" {
		return 0, fmt.Errorf("preço não encontrado na página")
	}

	return parsePrice(priceText)
}

// GetName extrai o nome de um produto do Wildberries
func (w *WildberriesScraper) GetName(ctx context.Context, url string) (string, error) {
	doc, err := w.fetcher.fetchDocument(ctx, cleanURL(url))
	if err != nil {
		return "", err
	}
	return extractName(doc), nil
}
