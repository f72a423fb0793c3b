package http

import (
	"context"
	"net/http"

	"outlay/internal/auth"
)

const (
	sessionCookie = "outlay_session"
	refreshCookie = "outlay_refresh"
)

type sessionUserKey struct{}

func (s *Server) setSessionCookies(w http.ResponseWriter, sess auth.Session) {
	maxAge := sess.ExpiresIn
	if maxAge <= 0 {
		maxAge = 3600
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.AccessToken,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    sess.RefreshToken,
		Path:     "/",
		MaxAge:   30 * 24 * 3600,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{sessionCookie, refreshCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   s.cookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func (s *Server) accessToken(r *http.Request) string {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

// sessionUser resolves the signed-in user from the session cookie.
func (s *Server) sessionUser(r *http.Request) (auth.User, error) {
	return s.identity.UserFromToken(s.accessToken(r))
}

// requireUser gates a handler behind a valid session. An expired access
// token is renewed transparently when a refresh token is present; otherwise
// the browser is sent to the login page. HTMX requests get an HX-Redirect
// instead of a 303 so the full page navigates, not the swapped fragment.
func (s *Server) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := s.sessionUser(r)
		if err != nil {
			user, err = s.refreshSession(w, r)
		}
		if err != nil {
			if r.Header.Get("HX-Request") == "true" {
				w.Header().Set("HX-Redirect", "/login")
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		ctx := context.WithValue(r.Context(), sessionUserKey{}, user)
		next(w, r.WithContext(ctx))
	}
}

func (s *Server) refreshSession(w http.ResponseWriter, r *http.Request) (auth.User, error) {
	c, err := r.Cookie(refreshCookie)
	if err != nil {
		return auth.User{}, auth.ErrNotSignedIn
	}
	sess, err := s.identity.Refresh(c.Value)
	if err != nil {
		return auth.User{}, err
	}
	s.setSessionCookies(w, sess)
	return sess.User, nil
}

// currentUser returns the user placed in the context by requireUser.
func currentUser(r *http.Request) auth.User {
	u, _ := r.Context().Value(sessionUserKey{}).(auth.User)
	return u
}
