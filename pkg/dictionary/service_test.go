package dictionary

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	items      map[string]*Item
	currencies map[string]Currency
}

func newMemStore() *memStore {
	return &memStore{items: map[string]*Item{}, currencies: map[string]Currency{}}
}

func (m *memStore) UpsertItem(_ context.Context, item *Item) (*Item, error) {
	key := item.TenantID + "|" + item.DictType + "|" + item.Code
	if existing, ok := m.items[key]; ok {
		existing.Label = item.Label
		existing.SortOrder = item.SortOrder
		existing.Active = item.Active
		return existing, nil
	}
	cp := *item
	m.items[key] = &cp
	return &cp, nil
}

func (m *memStore) EnsureCurrency(_ context.Context, c *Currency) error {
	if _, ok := m.currencies[c.Code]; !ok {
		m.currencies[c.Code] = *c
	}
	return nil
}

func TestUpsertCurrencyEnsuresGlobalRow(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)

	item, err := svc.Upsert(context.Background(), "acme", TypeCurrency, " usd ", " US Dollar ", 0, true)
	require.NoError(t, err)
	assert.Equal(t, "USD", item.Code)
	assert.Equal(t, "US Dollar", item.Label)

	cur, ok := store.currencies["USD"]
	require.True(t, ok)
	assert.Equal(t, Currency{Code: "USD", Name: "US Dollar", Symbol: "USD", DecimalPlaces: 2, Active: true}, cur)
}

func TestUpsertCurrencyKeepsExistingRow(t *testing.T) {
	store := newMemStore()
	store.currencies["EUR"] = Currency{Code: "EUR", Name: "Euro", Symbol: "€", DecimalPlaces: 2, Active: true}
	svc := NewService(store)

	_, err := svc.Upsert(context.Background(), "acme", TypeCurrency, "EUR", "", 1, true)
	require.NoError(t, err)
	assert.Equal(t, "€", store.currencies["EUR"].Symbol)
}

func TestUpsertRejectsBadCodes(t *testing.T) {
	svc := NewService(newMemStore())

	_, err := svc.Upsert(context.Background(), "acme", TypeCountry, "  ", "France", 0, true)
	assert.ErrorIs(t, err, ErrCodeRequired)

	_, err = svc.Upsert(context.Background(), "acme", TypeCurrency, "EURO", "Euro", 0, true)
	assert.ErrorIs(t, err, ErrInvalidCurrencyCode)
}

func TestUpsertUpdatesInPlace(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)
	ctx := context.Background()

	first, err := svc.Upsert(ctx, "acme", TypeCountry, "fr", "France", 0, true)
	require.NoError(t, err)
	second, err := svc.Upsert(ctx, "acme", TypeCountry, "FR", "France (métropole)", 4, true)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 4, second.SortOrder)
	assert.Len(t, store.items, 1)
	_, ok := store.currencies["FR"]
	assert.False(t, ok)
}
