package storage

import (
	"context"
	"testing"
	"time"

	"monitor-precos/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store, err := NewWithClient(rdb)
	require.NoError(t, err)
	return store, mr
}

func TestSaveAndGetUser(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveUser(ctx, 42, "token-abc"))

	user, err := store.GetUser(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.TelegramID)
	assert.Equal(t, "token-abc", user.Token)
	assert.True(t, user.IsActive)

	token, err := store.GetUserToken(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "token-abc", token)

	_, err = store.GetUser(ctx, 99)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = store.GetUserToken(ctx, 99)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSaveProductsRoundtrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	products := []models.Product{
		{Title: "Fone", Price: 1500, TargetPrice: 1000, ProductURL: "https://www.ozon.ru/product/fone", Marketplace: "ozon"},
		{Title: "Teclado", Price: 3000, TargetPrice: 2500, ProductURL: "https://www.wildberries.ru/catalog/123", Marketplace: "wildberries"},
	}
	require.NoError(t, store.SaveProducts(ctx, 1, products))

	loaded, err := store.GetProducts(ctx, 1)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, products, loaded)

	// Salvar de novo substitui, não acumula
	require.NoError(t, store.SaveProducts(ctx, 1, products[:1]))
	loaded, err = store.GetProducts(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}

func TestSaveProductsValidation(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	err := store.SaveProducts(ctx, 1, []models.Product{{Title: "Sem URL", TargetPrice: 10}})
	assert.ErrorIs(t, err, ErrInvalidProduct)

	err = store.SaveProducts(ctx, 1, []models.Product{{ProductURL: "https://www.ozon.ru/product/x", TargetPrice: -5}})
	assert.ErrorIs(t, err, ErrInvalidProduct)
}

func TestSaveProductsResetsNotified(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	url := "https://www.ozon.ru/product/fone"
	require.NoError(t, store.MarkNotified(ctx, 1, url))

	notified, err := store.IsNotified(ctx, 1, url)
	require.NoError(t, err)
	require.True(t, notified)

	// A troca da lista rearma os alertas
	require.NoError(t, store.SaveProducts(ctx, 1, []models.Product{
		{Title: "Fone", TargetPrice: 1000, ProductURL: url},
	}))

	notified, err = store.IsNotified(ctx, 1, url)
	require.NoError(t, err)
	assert.False(t, notified)
}

func TestMarkNotifiedIdempotent(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	url := "https://www.ozon.ru/product/fone"
	require.NoError(t, store.MarkNotified(ctx, 7, url))
	require.NoError(t, store.MarkNotified(ctx, 7, url))

	members, err := mr.Members("notified:7")
	require.NoError(t, err)
	assert.Equal(t, []string{url}, members)
}

func TestGetAllUsers(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveUser(ctx, 1, "a"))
	require.NoError(t, store.SaveUser(ctx, 2, "b"))
	require.NoError(t, store.SaveUser(ctx, 42, "c"))
	// Chaves de outros tipos não entram na listagem
	require.NoError(t, store.MarkNotified(ctx, 5, "https://www.ozon.ru/product/x"))

	userIDs, err := store.GetAllUsers(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{1, 2, 42}, userIDs)
}

func TestDeleteUser(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	url := "https://www.ozon.ru/product/x"
	require.NoError(t, store.SaveUser(ctx, 1, "a"))
	require.NoError(t, store.SaveProducts(ctx, 1, []models.Product{{Title: "X", TargetPrice: 1, ProductURL: url}}))
	require.NoError(t, store.MarkNotified(ctx, 1, url))

	require.NoError(t, store.DeleteUser(ctx, 1))

	assert.False(t, mr.Exists("user:1"))
	assert.False(t, mr.Exists("products:1"))
	assert.False(t, mr.Exists("notified:1"))

	userIDs, err := store.GetAllUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, userIDs)
}

func TestGetProductsSkipsInvalidRecords(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	_, err := mr.Push("products:1",
		"não é json",
		`{"title":"Sem URL","target_price":10}`,
		`{"title":"Fone","target_price":1000,"product_url":"https://www.ozon.ru/product/fone"}`,
	)
	require.NoError(t, err)

	products, err := store.GetProducts(ctx, 1)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Fone", products[0].Title)
}

func TestActivityExpires(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.MarkActivity(ctx, 1, time.Minute))

	active, err := store.IsActive(ctx, 1)
	require.NoError(t, err)
	require.True(t, active)

	mr.FastForward(2 * time.Minute)

	active, err = store.IsActive(ctx, 1)
	require.NoError(t, err)
	assert.False(t, active)
}
