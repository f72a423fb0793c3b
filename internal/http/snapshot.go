package http

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"outlay/internal/core"
	"outlay/internal/store"
)

// loadSnapshot fetches the user's full state in one shot. The four reads run
// concurrently; any failure fails the whole snapshot so a view never renders
// from half the data. Results are cached per user until the next mutation.
func (s *Server) loadSnapshot(ctx context.Context, userID string) (core.Snapshot, error) {
	if snap, found := s.snapshots.Get(userID); found {
		slog.DebugContext(ctx, "Snapshot cache hit", "user_id", userID)
		return snap, nil
	}

	cctx, cancel := context.WithTimeout(ctx, 7*time.Second)
	defer cancel()

	var snap core.Snapshot
	g, gctx := errgroup.WithContext(cctx)

	g.Go(func() error {
		cats, err := s.store.Categories(gctx, userID)
		if err != nil {
			return err
		}
		snap.Categories = cats
		return nil
	})
	g.Go(func() error {
		exps, err := s.store.Expenses(gctx, userID)
		if err != nil {
			return err
		}
		snap.Expenses = exps
		return nil
	})
	g.Go(func() error {
		curs, err := s.store.Currencies(gctx)
		if err != nil {
			return err
		}
		snap.Currencies = curs
		return nil
	})
	g.Go(func() error {
		pref, err := s.store.Preference(gctx, userID)
		if errors.Is(err, store.ErrNotFound) {
			// No stored preference yet; the default currency applies.
			snap.Preference = core.Preference{UserID: userID, CurrencyCode: core.DefaultCurrency.Code}
			return nil
		}
		if err != nil {
			return err
		}
		snap.Preference = pref
		return nil
	})

	if err := g.Wait(); err != nil {
		return core.Snapshot{}, err
	}

	s.snapshots.Set(userID, snap)
	slog.DebugContext(ctx, "Snapshot cached",
		"user_id", userID,
		"categories", len(snap.Categories),
		"expenses", len(snap.Expenses))
	return snap, nil
}

func (s *Server) invalidateSnapshot(userID string) {
	s.snapshots.Delete(userID)
}
