package confirm

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestConfirmRunsActionOnce(t *testing.T) {
	r := NewRegistry(time.Minute)
	defer r.Stop()

	calls := 0
	token := r.Arm("delete expense", func(ctx context.Context) error {
		calls++
		return nil
	})

	if got := r.StateOf(token); got != StatePending {
		t.Fatalf("StateOf after Arm = %q, want %q", got, StatePending)
	}

	if err := r.Confirm(context.Background(), token); err != nil {
		t.Fatalf("Confirm() error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("action called %d times, want 1", calls)
	}

	// Token is consumed; confirming again must not re-run the action.
	if err := r.Confirm(context.Background(), token); !errors.Is(err, ErrUnknownToken) {
		t.Errorf("second Confirm() = %v, want ErrUnknownToken", err)
	}
	if calls != 1 {
		t.Errorf("action re-ran on consumed token")
	}
}

func TestDeclineNeverRunsAction(t *testing.T) {
	r := NewRegistry(time.Minute)
	defer r.Stop()

	called := false
	token := r.Arm("delete all categories", func(ctx context.Context) error {
		called = true
		return nil
	})

	r.Decline(token)

	if called {
		t.Fatal("declined action was executed")
	}
	if got := r.StateOf(token); got != StateIdle {
		t.Errorf("StateOf after Decline = %q, want %q", got, StateIdle)
	}
	if err := r.Confirm(context.Background(), token); !errors.Is(err, ErrUnknownToken) {
		t.Errorf("Confirm after Decline = %v, want ErrUnknownToken", err)
	}
}

func TestConfirmUnknownToken(t *testing.T) {
	r := NewRegistry(time.Minute)
	defer r.Stop()

	if err := r.Confirm(context.Background(), "nope"); !errors.Is(err, ErrUnknownToken) {
		t.Errorf("Confirm(unknown) = %v, want ErrUnknownToken", err)
	}
	// Declining an unknown token is harmless.
	r.Decline("nope")
}

func TestConfirmPropagatesActionError(t *testing.T) {
	r := NewRegistry(time.Minute)
	defer r.Stop()

	boom := errors.New("boom")
	token := r.Arm("delete expense", func(ctx context.Context) error { return boom })

	if err := r.Confirm(context.Background(), token); !errors.Is(err, boom) {
		t.Errorf("Confirm() = %v, want %v", err, boom)
	}
	// A failed action still consumes the token.
	if err := r.Confirm(context.Background(), token); !errors.Is(err, ErrUnknownToken) {
		t.Errorf("retry after failure = %v, want ErrUnknownToken", err)
	}
}

func TestExpiredTokenIsGone(t *testing.T) {
	r := NewRegistry(10 * time.Millisecond)
	defer r.Stop()

	called := false
	token := r.Arm("delete expense", func(ctx context.Context) error {
		called = true
		return nil
	})

	time.Sleep(30 * time.Millisecond)

	if _, ok := r.Describe(token); ok {
		t.Error("Describe returned an expired token")
	}
	if err := r.Confirm(context.Background(), token); !errors.Is(err, ErrUnknownToken) {
		t.Errorf("Confirm(expired) = %v, want ErrUnknownToken", err)
	}
	if called {
		t.Error("expired action was executed")
	}
}

func TestDescribe(t *testing.T) {
	r := NewRegistry(time.Minute)
	defer r.Stop()

	token := r.Arm("delete all categories", func(ctx context.Context) error { return nil })
	subject, ok := r.Describe(token)
	if !ok || subject != "delete all categories" {
		t.Errorf("Describe = %q, %v", subject, ok)
	}
}
