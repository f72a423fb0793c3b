// Package confirm implements two-phase confirmation for destructive
// operations. A destructive request first arms a pending confirmation; the
// action only runs when the same token is confirmed, and an explicit decline
// or a timeout disarms it without side effects.
package confirm

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

type State string

const (
	StateIdle      State = "idle"
	StatePending   State = "pending"
	StateExecuting State = "executing"
)

var (
	ErrUnknownToken = errors.New("unknown or expired confirmation token")
	ErrInFlight     = errors.New("confirmation already executing")
)

// Action is the deferred destructive operation. It runs only on Confirm.
type Action func(ctx context.Context) error

type pending struct {
	state   State
	action  Action
	armedAt time.Time
	subject string
}

// Registry tracks armed confirmations by token. Tokens expire after the TTL
// so an abandoned dialog never leaves a live destructive action behind.
type Registry struct {
	mu           sync.Mutex
	ttl          time.Duration
	tokens       map[string]*pending
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	r := &Registry{
		ttl:         ttl,
		tokens:      make(map[string]*pending),
		stopCleanup: make(chan struct{}),
	}
	go r.startCleanup()
	return r
}

func (r *Registry) startCleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.cleanupExpired()
		case <-r.stopCleanup:
			return
		}
	}
}

func (r *Registry) cleanupExpired() {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-r.ttl)
	for token, p := range r.tokens {
		if p.state != StateExecuting && p.armedAt.Before(cutoff) {
			delete(r.tokens, token)
		}
	}
}

// Stop shuts down the cleanup goroutine. Safe to call more than once.
func (r *Registry) Stop() {
	r.shutdownOnce.Do(func() {
		close(r.stopCleanup)
	})
}

// Arm registers a destructive action and returns the token the caller must
// present to confirm it. subject is a human-readable description of what
// would be destroyed, echoed back by Describe.
func (r *Registry) Arm(subject string, action Action) string {
	token := uuid.New().String()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = &pending{
		state:   StatePending,
		action:  action,
		armedAt: time.Now(),
		subject: subject,
	}
	return token
}

// Describe returns the subject of a pending confirmation.
func (r *Registry) Describe(token string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.tokens[token]
	if !ok || r.expired(p) {
		return "", false
	}
	return p.subject, true
}

// Confirm runs the armed action and removes the token. The token is consumed
// whether or not the action succeeds; re-confirming returns ErrUnknownToken.
func (r *Registry) Confirm(ctx context.Context, token string) error {
	r.mu.Lock()
	p, ok := r.tokens[token]
	if !ok || r.expired(p) {
		delete(r.tokens, token)
		r.mu.Unlock()
		return ErrUnknownToken
	}
	if p.state == StateExecuting {
		r.mu.Unlock()
		return ErrInFlight
	}
	p.state = StateExecuting
	r.mu.Unlock()

	err := p.action(ctx)

	r.mu.Lock()
	delete(r.tokens, token)
	r.mu.Unlock()
	return err
}

// Decline disarms a pending confirmation without running its action.
// Declining an unknown token is a no-op.
func (r *Registry) Decline(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.tokens[token]; ok && p.state != StateExecuting {
		delete(r.tokens, token)
	}
}

// StateOf reports the lifecycle state of a token. Unknown and expired tokens
// are idle.
func (r *Registry) StateOf(token string) State {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.tokens[token]
	if !ok || r.expired(p) {
		return StateIdle
	}
	return p.state
}

func (r *Registry) expired(p *pending) bool {
	return p.state != StateExecuting && time.Since(p.armedAt) > r.ttl
}
