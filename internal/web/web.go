// Package web serves the activity board as HTML. Each browser session gets
// its own board; the control panel is a GET form on / and the signup and
// removal controls are CSRF-protected POST forms.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/csrf"

	"github.com/Shivanand-hulikatti/school-activities/internal/board"
	"github.com/Shivanand-hulikatti/school-activities/internal/httpx"
	"github.com/Shivanand-hulikatti/school-activities/internal/model"
	"github.com/Shivanand-hulikatti/school-activities/internal/render"
)

// SessionCookie names the cookie holding the board session id.
const SessionCookie = "board_session"

// RouterConfig configures the board front.
type RouterConfig struct {
	// CSRFKey is the 32-byte key used to sign CSRF tokens.
	CSRFKey []byte
	// Secure marks cookies as HTTPS-only and expects TLS origins.
	Secure bool
}

// Server holds the board front handlers.
type Server struct {
	boards *board.Registry
	log    *slog.Logger
	secure bool
}

type boardKey struct{}

// NewRouter builds the board front router.
func NewRouter(boards *board.Registry, log *slog.Logger, cfg RouterConfig) http.Handler {
	s := &Server{boards: boards, log: log, secure: cfg.Secure}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpx.Logger(log))
	r.Use(securityHeaders)

	r.Get("/health", httpx.Health)

	r.Group(func(r chi.Router) {
		r.Use(s.plaintext)
		r.Use(csrf.Protect(cfg.CSRFKey,
			csrf.Secure(cfg.Secure),
			csrf.Path("/"),
			csrf.SameSite(csrf.SameSiteLaxMode),
			csrf.ErrorHandler(http.HandlerFunc(s.csrfFailed)),
		))
		r.Use(s.session)

		r.Get("/", s.index)
		r.Post("/signup", s.signup)
		r.Post("/unregister", s.unregister)
	})

	return r
}

// ─── Middleware ───────────────────────────────────────────────────────────────

// securityHeaders sets the browser hardening headers for every response.
// The board page carries its style and script inline.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; script-src 'self' 'unsafe-inline'")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// plaintext tells the CSRF middleware that a request arrived over plain
// HTTP, so origin checks compare against http:// rather than https://.
func (s *Server) plaintext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.secure && r.TLS == nil {
			r = csrf.PlaintextHTTPRequest(r)
		}
		next.ServeHTTP(w, r)
	})
}

// session attaches the caller's board to the request context, issuing a new
// session cookie when none or an invalid one is present.
func (s *Server) session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(SessionCookie); err == nil {
			if u, err := uuid.Parse(c.Value); err == nil {
				id = u.String()
			}
		}
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				Secure:   s.secure,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), boardKey{}, s.boards.Get(id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func boardFrom(ctx context.Context) *board.Board {
	b, _ := ctx.Value(boardKey{}).(*board.Board)
	return b
}

func (s *Server) csrfFailed(w http.ResponseWriter, r *http.Request) {
	s.log.Warn("csrf check failed",
		slog.String("path", r.URL.Path),
		slog.String("request_id", chimiddleware.GetReqID(r.Context())),
		slog.Any("reason", csrf.FailureReason(r)),
	)
	http.Error(w, "Forbidden - invalid or missing CSRF token. Reload the page and try again.", http.StatusForbidden)
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

// index handles GET /?category=&sort=&search=&draft_email=&draft_activity=
// Every visit fetches the activity set for the submitted filter inputs; the
// signup draft is echoed back untouched.
func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	b := boardFrom(r.Context())
	view := b.Load(r.Context(), criteriaFrom(q))
	email, activity := draftFrom(q)
	s.render(w, r, b, view, email, activity)
}

// signup handles POST /signup
func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	b := boardFrom(r.Context())
	email := strings.TrimSpace(r.PostForm.Get("email"))
	activity := r.PostForm.Get("activity")

	out := b.Signup(r.Context(), activity, email, criteriaFrom(r.PostForm))
	if out.ResetForm {
		email, activity = "", ""
	}
	s.render(w, r, b, out.View, email, activity)
}

// unregister handles POST /unregister
// Unregistering never touches the signup form: the draft carried by the
// removal form is rendered back as it was.
func (s *Server) unregister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	b := boardFrom(r.Context())
	out := b.Unregister(r.Context(), r.PostForm.Get("activity"), r.PostForm.Get("email"), criteriaFrom(r.PostForm))
	email, activity := draftFrom(r.PostForm)
	s.render(w, r, b, out.View, email, activity)
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func criteriaFrom(v url.Values) model.Criteria {
	return model.Criteria{
		Category: v.Get("category"),
		Sort:     v.Get("sort"),
		Search:   v.Get("search"),
	}
}

// draftFrom returns the signup form contents carried by the control panel
// and removal forms.
func draftFrom(v url.Values) (email, activity string) {
	return v.Get("draft_email"), v.Get("draft_activity")
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, b *board.Board, view board.View, email, activity string) {
	status, visible := b.Notifier().Current()
	// The browser hides the message when the rest of its window runs out,
	// not a full window after this render.
	hideAfter := b.Notifier().Remaining()
	visible = visible && hideAfter > 0

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := render.Board(w, render.Page{
		View:      view,
		Status:    status,
		Visible:   visible,
		HideAfter: hideAfter,
		Email:     email,
		Activity:  activity,
		CSRFField: csrf.TemplateField(r),
	})
	if err != nil {
		s.log.Error("render board failed",
			slog.String("request_id", chimiddleware.GetReqID(r.Context())),
			slog.Any("err", err),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
