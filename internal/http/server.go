// Package http serves the web UI: full pages for auth, dashboard and
// invoice, plus HTMX partials for the expense list and budget bars.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"outlay/internal/auth"
	"outlay/internal/cache"
	"outlay/internal/confirm"
	"outlay/internal/core"
	"outlay/internal/export"
	applog "outlay/internal/log"
	"outlay/internal/services"
	"outlay/internal/store"
	appweb "outlay/web"
)

// Identity is the slice of the auth service the server uses. Tests swap in a
// fake; production passes *auth.Service.
type Identity interface {
	SignIn(email, password string) (auth.Session, error)
	SignUp(email, password string) (auth.User, error)
	SignOut(token string) error
	SendPasswordReset(email string) error
	UpdatePassword(token, newPassword string) error
	UserFromToken(token string) (auth.User, error)
	Refresh(refreshToken string) (auth.Session, error)
	AuthorizeURL(provider string) (string, error)
}

// Options carries everything NewServer needs. Exporter may be nil; the
// invoice export button then reports the feature as unavailable.
type Options struct {
	Addr         string
	CookieSecure bool
	Identity     Identity
	Store        store.Store
	Expenses     *services.ExpenseService
	Categories   *services.CategoryService
	Preferences  *services.PreferenceService
	Exporter     export.InvoiceExporter
	CacheTTL     time.Duration
	CacheSize    int
}

type Server struct {
	http.Server
	templates    *template.Template
	identity     Identity
	store        store.Store
	expenses     *services.ExpenseService
	categories   *services.CategoryService
	preferences  *services.PreferenceService
	exporter     export.InvoiceExporter
	confirms     *confirm.Registry
	rateLimiter  *rateLimiter
	cookieSecure bool
	structured   *applog.StructuredLogger

	// Per-user snapshot cache. Every mutation drops the owner's entry.
	snapshots    *cache.LRUCache[core.Snapshot]
	cacheManager *cache.Manager
	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(opts Options) *Server {
	mux := http.NewServeMux()

	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	size := opts.CacheSize
	if size <= 0 {
		size = 256
	}

	s := &Server{
		Server: http.Server{
			Addr:    opts.Addr,
			Handler: mux,
		},
		identity:     opts.Identity,
		store:        opts.Store,
		expenses:     opts.Expenses,
		categories:   opts.Categories,
		preferences:  opts.Preferences,
		exporter:     opts.Exporter,
		confirms:     confirm.NewRegistry(5 * time.Minute),
		rateLimiter:  newRateLimiter(60, time.Minute),
		cookieSecure: opts.CookieSecure,
		structured:   applog.NewStructuredLogger(applog.New(applog.DefaultConfig())),
		snapshots:    cache.NewLRUCache[core.Snapshot](size, ttl),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.snapshots)
	s.cacheManager.StartCleanup(10 * time.Minute)

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/", s.withSecurityHeaders(s.handleIndex))
	mux.HandleFunc("/login", s.withSecurityHeaders(s.handleLogin))
	mux.HandleFunc("/signup", s.withSecurityHeaders(s.handleSignup))
	mux.HandleFunc("/reset-password", s.withSecurityHeaders(s.handleResetPassword))
	mux.HandleFunc("/auth/oauth", s.withSecurityHeaders(s.handleOAuthStart))
	mux.HandleFunc("/update-password", s.withSecurityHeaders(s.requireUser(s.handleUpdatePassword)))
	mux.HandleFunc("/logout", s.withSecurityHeaders(s.handleLogout))

	mux.HandleFunc("/dashboard", s.withSecurityHeaders(s.requireUser(s.handleDashboard)))
	mux.HandleFunc("/invoice", s.withSecurityHeaders(s.requireUser(s.handleInvoice)))
	mux.HandleFunc("/invoice/export", s.withSecurityHeaders(s.requireUser(s.handleInvoiceExport)))

	// UI partials
	mux.HandleFunc("/ui/expenses", s.withSecurityHeaders(s.requireUser(s.handleExpenseList)))
	mux.HandleFunc("/ui/budgets", s.withSecurityHeaders(s.requireUser(s.handleBudgetList)))

	mux.HandleFunc("/expenses", s.withSecurityHeaders(s.requireUser(s.handleCreateExpense)))
	mux.HandleFunc("/expenses/delete", s.withSecurityHeaders(s.requireUser(s.handleArmDeleteExpense)))
	mux.HandleFunc("/categories", s.withSecurityHeaders(s.requireUser(s.handleCreateCategory)))
	mux.HandleFunc("/categories/update", s.withSecurityHeaders(s.requireUser(s.handleUpdateCategory)))
	mux.HandleFunc("/categories/delete", s.withSecurityHeaders(s.requireUser(s.handleArmDeleteCategory)))
	mux.HandleFunc("/categories/delete-all", s.withSecurityHeaders(s.requireUser(s.handleArmDeleteAll)))
	mux.HandleFunc("/confirm", s.withSecurityHeaders(s.requireUser(s.handleConfirm)))
	mux.HandleFunc("/currency", s.withSecurityHeaders(s.requireUser(s.handleSaveCurrency)))

	return s
}

// withSecurityHeaders adds security headers, rate limiting and request
// logging to responses.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		s.structured.LogHTTPStart(ctx, r, requestID, clientIP)

		if looksSuspicious(r) {
			slog.WarnContext(ctx, "Suspicious request pattern",
				"request_id", requestID,
				"url", r.URL.String(),
				"client_ip", clientIP)
		}

		// Mutations are rate limited per client IP; reads are not.
		if r.Method != http.MethodGet && r.Method != http.MethodHead && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com 'unsafe-eval'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		s.structured.LogHTTPEnd(ctx, r, requestID, rw.statusCode, duration.Milliseconds(), clientIP)
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Shutdown stops the background goroutines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		s.confirms.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// handleIndex routes the bare domain to the dashboard for signed-in users
// and to the login page for everyone else.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if _, err := s.sessionUser(r); err == nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution failed", "error", err, "template", name)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
