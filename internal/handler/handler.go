// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/Shivanand-hulikatti/school-activities/internal/httpx"
	"github.com/Shivanand-hulikatti/school-activities/internal/model"
	"github.com/Shivanand-hulikatti/school-activities/internal/repository"
	"github.com/Shivanand-hulikatti/school-activities/internal/service"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// ActivityHandler holds all HTTP handlers for the activities API.
type ActivityHandler struct {
	svc *service.ActivityService
	log *slog.Logger
}

// NewActivityHandler constructs an ActivityHandler.
func NewActivityHandler(svc *service.ActivityService, log *slog.Logger) *ActivityHandler {
	return &ActivityHandler{svc: svc, log: log}
}

// RouterConfig configures the API router.
type RouterConfig struct {
	CORSOrigins []string
	// BoardURL is where GET / redirects; empty disables the redirect.
	BoardURL string
}

// NewRouter builds the API router with the global middleware stack.
func NewRouter(h *ActivityHandler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpx.Logger(h.log))
	r.Use(CORS(cfg.CORSOrigins))

	// Unmatched routes answer in the same JSON shape as handler errors.
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Get("/health", httpx.Health)
	if cfg.BoardURL != "" {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, cfg.BoardURL, http.StatusTemporaryRedirect)
		})
	}

	r.Route("/activities", func(r chi.Router) {
		r.Get("/", h.ListActivities)
		r.Post("/{name}/signup", h.Signup)
		r.Delete("/{name}/unregister", h.Unregister)
	})

	return r
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, model.ErrorResponse{Detail: detail})
}

// activityName returns the decoded {name} path parameter. chi matches on
// the escaped path when the request path contains escapes such as %2F, in
// which case the parameter is still escaped.
func activityName(r *http.Request) (string, error) {
	name := chi.URLParam(r, "name")
	if r.URL.RawPath == "" {
		return name, nil
	}
	return url.PathUnescape(name)
}

// writeServiceError maps service and repository errors to status codes.
func (h *ActivityHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "Activity not found")
	case errors.Is(err, repository.ErrAlreadyRegistered):
		writeError(w, http.StatusBadRequest, "Student is already signed up")
	case errors.Is(err, repository.ErrNotRegistered):
		writeError(w, http.StatusBadRequest, "Student is not signed up for this activity")
	case errors.Is(err, repository.ErrActivityFull):
		writeError(w, http.StatusConflict, "Activity is full")
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error("internal error",
			slog.String("path", r.URL.Path),
			slog.String("request_id", chimiddleware.GetReqID(r.Context())),
			slog.Any("err", err),
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

// ListActivities handles GET /activities
// Returns a JSON object keyed by activity name, in result order.
func (h *ActivityHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	criteria := model.Criteria{
		Category: q.Get("category"),
		Sort:     q.Get("sort"),
		Search:   q.Get("search"),
	}

	set, err := h.svc.List(r.Context(), criteria)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, set)
}

// Signup handles POST /activities/{name}/signup?email=
func (h *ActivityHandler) Signup(w http.ResponseWriter, r *http.Request) {
	name, err := activityName(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid activity name")
		return
	}

	msg, err := h.svc.Signup(r.Context(), name, r.URL.Query().Get("email"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Message: msg})
}

// Unregister handles DELETE /activities/{name}/unregister?email=
func (h *ActivityHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	name, err := activityName(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid activity name")
		return
	}

	msg, err := h.svc.Unregister(r.Context(), name, r.URL.Query().Get("email"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Message: msg})
}
