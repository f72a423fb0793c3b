package services

import (
	"context"
	"errors"
	"fmt"

	"outlay/internal/core"
	"outlay/internal/store"
)

var ErrUnknownCurrency = errors.New("unknown currency code")

// PreferenceService resolves and stores the per-user display currency.
type PreferenceService struct {
	store store.Store
}

func NewPreferenceService(st store.Store) *PreferenceService {
	return &PreferenceService{store: st}
}

// Currency returns the user's display currency, falling back to the default
// when no preference is stored yet.
func (s *PreferenceService) Currency(ctx context.Context, userID string) (core.Currency, error) {
	currencies, err := s.store.Currencies(ctx)
	if err != nil {
		return core.DefaultCurrency, fmt.Errorf("load currencies: %w", err)
	}

	pref, err := s.store.Preference(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return core.DefaultCurrency, nil
	}
	if err != nil {
		return core.DefaultCurrency, fmt.Errorf("load preference: %w", err)
	}

	return core.ResolveCurrency(currencies, pref.CurrencyCode), nil
}

// Save upserts the user's display currency. The code must exist in the
// reference data; last write wins.
func (s *PreferenceService) Save(ctx context.Context, userID, code string) error {
	currencies, err := s.store.Currencies(ctx)
	if err != nil {
		return fmt.Errorf("load currencies: %w", err)
	}

	known := false
	for _, c := range currencies {
		if c.Code == code {
			known = true
			break
		}
	}
	if !known {
		return ErrUnknownCurrency
	}

	return s.store.SavePreference(ctx, core.Preference{UserID: userID, CurrencyCode: code})
}
