package pricesource

import (
	"context"
	"errors"
	"sync"
	"time"

	"monitor-precos/internal/scraper"

	"golang.org/x/sync/errgroup"
)

// ErrUnsupportedURL indica que nenhum scraper atende a URL
var ErrUnsupportedURL = errors.New("nenhum scraper encontrado para a URL")

// PriceResult é o resultado da consulta de preço de uma URL.
// Err diferente de nil significa que o preço não foi obtido neste ciclo.
type PriceResult struct {
	URL   string
	Price float64
	Err   error
}

// Registry localiza o scraper de cada URL
type Registry interface {
	FindScraper(url string) scraper.Scraper
}

// ScraperSource consulta preços através dos scrapers com concorrência limitada
type ScraperSource struct {
	registry    Registry
	concurrency int
	timeout     time.Duration
}

// New cria uma fonte de preços com o limite de concorrência e o timeout por URL
func New(registry Registry, concurrency int, timeout time.Duration) *ScraperSource {
	if concurrency <= 0 {
		concurrency = 1
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &ScraperSource{
		registry:    registry,
		concurrency: concurrency,
		timeout:     timeout,
	}
}

// FetchPrices consulta todas as URLs e devolve um resultado para cada uma.
// Nunca há omissões: URLs com falha entram no mapa com Err preenchido, e a
// falha de uma URL não interrompe as demais.
func (s *ScraperSource) FetchPrices(ctx context.Context, urls []string) map[string]PriceResult {
	results := make(map[string]PriceResult, len(urls))
	var mu sync.Mutex

	group := new(errgroup.Group)
	group.SetLimit(s.concurrency)

	for _, url := range urls {
		url := url
		group.Go(func() error {
			result := s.fetchOne(ctx, url)
			mu.Lock()
			results[url] = result
			mu.Unlock()
			return nil
		})
	}

	// As goroutines nunca retornam erro; o Wait é apenas o ponto de junção
	_ = group.Wait()
	return results
}

func (s *ScraperSource) fetchOne(ctx context.Context, url string) PriceResult {
	sc := s.registry.FindScraper(url)
	if sc == nil {
		return PriceResult{URL: url, Err: ErrUnsupportedURL}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	price, err := sc.GetPrice(fetchCtx, url)
	if err != nil {
		return PriceResult{URL: url, Err: err}
	}
	return PriceResult{URL: url, Price: price}
}
