package pricesource

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"monitor-precos/internal/scraper"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScraper struct {
	getPrice func(ctx context.Context, url string) (float64, error)
}

func (f *fakeScraper) CanHandle(url string) bool { return true }

func (f *fakeScraper) GetPrice(ctx context.Context, url string) (float64, error) {
	return f.getPrice(ctx, url)
}

func (f *fakeScraper) GetName(ctx context.Context, url string) (string, error) {
	return "Produto", nil
}

type fakeRegistry struct {
	scraper scraper.Scraper
}

func (f *fakeRegistry) FindScraper(url string) scraper.Scraper {
	return f.scraper
}

func TestFetchPricesCompleteMapping(t *testing.T) {
	sc := &fakeScraper{
		getPrice: func(ctx context.Context, url string) (float64, error) {
			if url == "lento" {
				// Demora mais que o timeout por URL
				select {
				case <-ctx.Done():
					return 0, ctx.Err()
				case <-time.After(time.Second):
					return 100, nil
				}
			}
			return 100, nil
		},
	}

	source := New(&fakeRegistry{scraper: sc}, 4, 20*time.Millisecond)
	urls := []string{"a", "lento", "b"}
	results := source.FetchPrices(context.Background(), urls)

	// Toda URL de entrada tem resultado, inclusive a que estourou o tempo
	require.Len(t, results, 3)
	assert.NoError(t, results["a"].Err)
	assert.NoError(t, results["b"].Err)
	require.Error(t, results["lento"].Err)
	assert.ErrorIs(t, results["lento"].Err, context.DeadlineExceeded)
}

func TestFetchPricesRespectsConcurrencyLimit(t *testing.T) {
	var mu sync.Mutex
	inFlight, maxInFlight := 0, 0

	sc := &fakeScraper{
		getPrice: func(ctx context.Context, url string) (float64, error) {
			mu.Lock()
			inFlight++
			if inFlight > maxInFlight {
				maxInFlight = inFlight
			}
			mu.Unlock()

			time.Sleep(10 * time.Millisecond)

			mu.Lock()
			inFlight--
			mu.Unlock()
			return 100, nil
		},
	}

	source := New(&fakeRegistry{scraper: sc}, 3, time.Second)
	urls := make([]string, 12)
	for i := range urls {
		urls[i] = fmt.Sprintf("url-%d", i)
	}

	results := source.FetchPrices(context.Background(), urls)

	require.Len(t, results, 12)
	assert.LessOrEqual(t, maxInFlight, 3)
	assert.Greater(t, maxInFlight, 0)
}

func TestFetchPricesErrorIsolation(t *testing.T) {
	failure := errors.New("página fora do ar")
	sc := &fakeScraper{
		getPrice: func(ctx context.Context, url string) (float64, error) {
			if url == "quebrada" {
				return 0, failure
			}
			return 50, nil
		},
	}

	source := New(&fakeRegistry{scraper: sc}, 2, time.Second)
	results := source.FetchPrices(context.Background(), []string{"ok-1", "quebrada", "ok-2"})

	require.Len(t, results, 3)
	assert.ErrorIs(t, results["quebrada"].Err, failure)
	assert.Equal(t, 50.0, results["ok-1"].Price)
	assert.Equal(t, 50.0, results["ok-2"].Price)
}

func TestFetchPricesUnsupportedURL(t *testing.T) {
	source := New(&fakeRegistry{scraper: nil}, 2, time.Second)
	results := source.FetchPrices(context.Background(), []string{"https://amazon.com/x"})

	require.Len(t, results, 1)
	assert.ErrorIs(t, results["https://amazon.com/x"].Err, ErrUnsupportedURL)
}
