package scraper

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy centraliza a estratégia de novas tentativas das requisições HTTP.
// Erros de rede e respostas 5xx são repetidos; 4xx falham de imediato.
type RetryPolicy struct {
	MaxRetries      uint64
	InitialInterval time.Duration
}

// DefaultRetryPolicy retorna a política usada quando nada for configurado
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 2, InitialInterval: 500 * time.Millisecond}
}

func (p RetryPolicy) newBackOff(ctx context.Context) backoff.BackOffContext {
	exp := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		exp.InitialInterval = p.InitialInterval
	}
	return backoff.WithContext(backoff.WithMaxRetries(exp, p.MaxRetries), ctx)
}

// fetcher faz o download das páginas de produto com retry e cabeçalhos de navegador
type fetcher struct {
	client *http.Client
	policy RetryPolicy
}

func newFetcher(policy RetryPolicy) *fetcher {
	return &fetcher{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		policy: policy,
	}
}

// fetchDocument baixa a página e devolve o documento pronto para consulta
func (f *fetcher) fetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	var doc *goquery.Document

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "ru-RU,ru;q=0.9,en-US;q=0.8,en;q=0.7")

		resp, err := f.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			statusErr := fmt.Errorf("status code: %d", resp.StatusCode)
			if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
				return statusErr
			}
			return backoff.Permanent(statusErr)
		}

		parsed, err := goquery.NewDocumentFromReader(resp.Body)
		if err != nil {
			return backoff.Permanent(err)
		}
		doc = parsed
		return nil
	}

	if err := backoff.Retry(operation, f.policy.newBackOff(ctx)); err != nil {
		return nil, err
	}
	return doc, nil
}
