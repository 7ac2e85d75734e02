package scraper

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// YandexMarketScraper implementa o scraper para o Yandex Market
type YandexMarketScraper struct {
	fetcher *fetcher
}

// NewYandexMarketScraper cria uma nova instância do scraper do Yandex Market
func NewYandexMarketScraper(fetcher *fetcher) *YandexMarketScraper {
	return &YandexMarketScraper{fetcher: fetcher}
}

// CanHandle verifica se o scraper pode lidar com a URL fornecida
func (y *YandexMarketScraper) CanHandle(url string) bool {
	return strings.Contains(url, "market.yandex.ru")
}

// GetPrice extrai o preço de um produto do Yandex Market
func (y *YandexMarketScraper) GetPrice(ctx context.Context, url string) (float64, error) {
	doc, err := y.fetcher.fetchDocument(ctx, cleanURL(url))
	if err != nil {
		return 0, err
	}

	priceText := strings.TrimSpace(doc.Find(`div[data-tid="c3eaad93"]`).First().Text())
	if priceText == "" {
		priceText = strings.TrimSpace(doc.Find(`[data-auto="price-value"]`).First().Text())
	}
	if priceText == "" {
		return 0, fmt.Errorf("preço não encontrado na página")
	}

	return parsePrice(priceText)
}

// GetName extrai o nome de um produto do Yandex Market
func (y *YandexMarketScraper) GetName(ctx context.Context, url string) (string, error) {
	doc, err := y.fetcher.fetchDocument(ctx, cleanURL(url))
	if err != nil {
		return "", err
	}
	return extractName(doc), nil
}

// extractName busca o nome do produto nos lugares mais comuns
func extractName(doc *goquery.Document) string {
	name := strings.TrimSpace(doc.Find("h1").First().Text())
	if name == "" {
		name = doc.Find("meta[property='og:title']").AttrOr("content", "")
	}
	if name == "" {
		name = "Produto sem nome"
	}
	return name
}
