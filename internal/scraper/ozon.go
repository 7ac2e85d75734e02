package scraper

import (
	"context"
	"fmt"
	"strings"
)

// OzonScraper implementa o scraper para o Ozon
type OzonScraper struct {
	fetcher *fetcher
}

// NewOzonScraper cria uma nova instância do scraper do Ozon
func NewOzonScraper(fetcher *fetcher) *OzonScraper {
	return &OzonScraper{fetcher: fetcher}
}

// CanHandle verifica se o scraper pode lidar com a URL fornecida
func (o *OzonScraper) CanHandle(url string) bool {
	return strings.Contains(url, "ozon.ru")
}

// GetPrice extrai o preço de um produto do Ozon
func (o *OzonScraper) GetPrice(ctx context.Context, url string) (float64, error) {
	doc, err := o.fetcher.fetchDocument(ctx, cleanURL(url))
	if err != nil {
		return 0, err
	}

	priceText := strings.TrimSpace(doc.Find("span.s3m_27").First().Text())
	if priceText == "" {
		// Fallback: meta tag usada nas páginas renderizadas no servidor
		priceText = doc.Find("meta[property='product:price:amount']").AttrOr("content", "")
	}
	if priceText == "" {
		return 0, fmt.Errorf("preço não encontrado na página")
	}

	return parsePrice(priceText)
}

// GetName extrai o nome de um produto do Ozon
func (o *OzonScraper) GetName(ctx context.Context, url string) (string, error) {
	doc, err := o.fetcher.fetchDocument(ctx, cleanURL(url))
	if err != nil {
		return "", err
	}
	return extractName(doc), nil
}
