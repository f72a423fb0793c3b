package http

import (
	"log/slog"
	"net/http"
)

// authPage is the template data shared by the login, signup and reset pages.
type authPage struct {
	Error   string
	Message string
	Email   string
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, r, "login.html", authPage{})
	case http.MethodPost:
		if resp := ParseFormOrFail(r); resp != nil {
			resp.Write(w)
			return
		}
		email := FormValue(r, "email")
		password := r.Form.Get("password")

		sess, err := s.identity.SignIn(email, password)
		if err != nil {
			slog.WarnContext(r.Context(), "Sign-in failed", "email", email, "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			s.render(w, r, "login.html", authPage{Error: err.Error(), Email: email})
			return
		}

		s.setSessionCookies(w, sess)
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	default:
		RequireMethod(r, http.MethodGet, http.MethodPost).Write(w)
	}
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, r, "signup.html", authPage{})
	case http.MethodPost:
		if resp := ParseFormOrFail(r); resp != nil {
			resp.Write(w)
			return
		}
		email := FormValue(r, "email")
		password := r.Form.Get("password")

		user, err := s.identity.SignUp(email, password)
		if err != nil {
			w.WriteHeader(http.StatusUnprocessableEntity)
			s.render(w, r, "signup.html", authPage{Error: err.Error(), Email: email})
			return
		}

		slog.InfoContext(r.Context(), "User signed up", "user_id", user.ID)
		s.render(w, r, "login.html", authPage{
			Message: "Account created. Check your inbox to confirm your email, then sign in.",
			Email:   user.Email,
		})
	default:
		RequireMethod(r, http.MethodGet, http.MethodPost).Write(w)
	}
}

// handleOAuthStart sends the browser to the external provider's consent
// page. The provider redirects back to the configured site URL afterwards.
func (s *Server) handleOAuthStart(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	provider := r.URL.Query().Get("provider")
	target, err := s.identity.AuthorizeURL(provider)
	if err != nil {
		slog.WarnContext(r.Context(), "OAuth start failed", "provider", provider, "error", err)
		w.WriteHeader(http.StatusUnprocessableEntity)
		s.render(w, r, "login.html", authPage{Error: err.Error()})
		return
	}

	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, r, "reset_password.html", authPage{})
	case http.MethodPost:
		if resp := ParseFormOrFail(r); resp != nil {
			resp.Write(w)
			return
		}
		email := FormValue(r, "email")

		if err := s.identity.SendPasswordReset(email); err != nil {
			w.WriteHeader(http.StatusUnprocessableEntity)
			s.render(w, r, "reset_password.html", authPage{Error: err.Error(), Email: email})
			return
		}

		// The same message goes out whether or not the account exists.
		s.render(w, r, "reset_password.html", authPage{
			Message: "If an account exists for that address, a reset link is on its way.",
		})
	default:
		RequireMethod(r, http.MethodGet, http.MethodPost).Write(w)
	}
}

// handleUpdatePassword finishes the recovery flow: the emailed link signs
// the user in, and this form sets the new password on that session.
func (s *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	if err := s.identity.UpdatePassword(s.accessToken(r), r.Form.Get("password")); err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	NewHTMXResponse().
		TriggerSuccessNotification("Password updated.").
		SuccessFragment("Password updated.").
		Write(w)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	if err := s.identity.SignOut(s.accessToken(r)); err != nil {
		slog.WarnContext(r.Context(), "Sign-out failed", "error", err)
	}

	s.clearSessionCookies(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
