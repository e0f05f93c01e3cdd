package dictionary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrCodeRequired        = errors.New("dictionary code is required")
	ErrInvalidCurrencyCode = errors.New("currency code must have three characters")
)

type Store interface {
	UpsertItem(ctx context.Context, item *Item) (*Item, error)
	EnsureCurrency(ctx context.Context, currency *Currency) error
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Upsert creates or updates a tenant dictionary value. Currency values also
// make sure the global currency row exists.
func (s *Service) Upsert(ctx context.Context, tenantID, dictType, code, label string, sortOrder int, active bool) (*Item, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrCodeRequired
	}
	label = strings.TrimSpace(label)

	if dictType == TypeCurrency {
		if len(code) != 3 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidCurrencyCode, code)
		}
		name := label
		if name == "" {
			name = code
		}
		if err := s.store.EnsureCurrency(ctx, &Currency{
			Code:          code,
			Name:          name,
			Symbol:        code,
			DecimalPlaces: 2,
			Active:        true,
		}); err != nil {
			return nil, fmt.Errorf("ensuring currency %s: %w", code, err)
		}
	}

	now := time.Now().UTC()
	item, err := s.store.UpsertItem(ctx, &Item{
		ID:        uuid.New(),
		TenantID:  tenantID,
		DictType:  dictType,
		Code:      code,
		Label:     label,
		SortOrder: sortOrder,
		Active:    active,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("upserting %s %s: %w", dictType, code, err)
	}
	return item, nil
}
