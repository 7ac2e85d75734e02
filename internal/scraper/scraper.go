package scraper

import "context"

// Scraper define a interface para scrapers de diferentes lojas
type Scraper interface {
	GetPrice(ctx context.Context, url string) (float64, error)
	GetName(ctx context.Context, url string) (string, error)
	CanHandle(url string) bool
}

// Registry mantém um registro de todos os scrapers disponíveis
type Registry struct {
	scrapers []Scraper
}

// NewRegistry cria um novo registro de scrapers.
// Todos compartilham a mesma política de novas tentativas HTTP.
func NewRegistry(policy RetryPolicy) *Registry {
	fetcher := newFetcher(policy)
	return &Registry{
		scrapers: []Scraper{
			NewOzonScraper(fetcher),
			NewWildberriesScraper(fetcher),
			NewYandexMarketScraper(fetcher),
		},
	}
}

// FindScraper encontra o scraper apropriado para uma URL
func (r *Registry) FindScraper(url string) Scraper {
	for _, scraper := range r.scrapers {
		if scraper.CanHandle(url) {
			return scraper
		}
	}
	return nil
}
