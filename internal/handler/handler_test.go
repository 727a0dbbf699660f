package handler_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/school-activities/internal/handler"
	"github.com/Shivanand-hulikatti/school-activities/internal/model"
	"github.com/Shivanand-hulikatti/school-activities/internal/repository"
	"github.com/Shivanand-hulikatti/school-activities/internal/service"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	records := []model.ActivityRecord{
		{Name: "Chess Club", Activity: model.Activity{
			Description: "Strategy", Schedule: "Fri", MaxParticipants: 2,
			Participants: []string{"michael@mergington.edu"}, Category: "Games", Date: "2025-09-05",
		}},
		{Name: "Art / Design", Activity: model.Activity{
			Description: "Paint", Schedule: "Wed", MaxParticipants: 5, Category: "Arts", Date: "2025-09-01",
		}},
	}
	repo, err := repository.NewJSONFileRepository(filepath.Join(t.TempDir(), "activities.json"), records)
	require.NoError(t, err)

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	h := handler.NewActivityHandler(service.NewActivityService(repo), logger)
	return handler.NewRouter(h, handler.RouterConfig{BoardURL: "http://board.local/"})
}

func do(t *testing.T, router http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestListActivities(t *testing.T) {
	router := newRouter(t)

	tests := []struct {
		name   string
		target string
		want   []string
	}{
		{"all", "/activities", []string{"Chess Club", "Art / Design"}},
		{"trailing slash", "/activities/", []string{"Chess Club", "Art / Design"}},
		{"category", "/activities?category=games", []string{"Chess Club"}},
		{"sort by date", "/activities?sort=date", []string{"Art / Design", "Chess Club"}},
		{"search", "/activities?search=PAINT", []string{"Art / Design"}},
		{"no match", "/activities?search=zzz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodGet, tt.target)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var set model.ActivitySet
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &set))
			assert.Equal(t, tt.want, set.Names())
		})
	}
}

func TestSignupAndUnregister(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		target     string
		wantStatus int
		wantField  string
		wantText   string
	}{
		{
			name:       "signup success",
			method:     http.MethodPost,
			target:     "/activities/Chess%20Club/signup?email=new%40mergington.edu",
			wantStatus: http.StatusOK,
			wantField:  "message",
			wantText:   "Signed up new@mergington.edu for Chess Club",
		},
		{
			name:       "signup with escaped slash in name",
			method:     http.MethodPost,
			target:     "/activities/Art%20%2F%20Design/signup?email=a%40mergington.edu",
			wantStatus: http.StatusOK,
			wantField:  "message",
			wantText:   "Signed up a@mergington.edu for Art / Design",
		},
		{
			name:       "signup unknown activity",
			method:     http.MethodPost,
			target:     "/activities/Knitting/signup?email=a%40mergington.edu",
			wantStatus: http.StatusNotFound,
			wantField:  "detail",
			wantText:   "Activity not found",
		},
		{
			name:       "signup duplicate",
			method:     http.MethodPost,
			target:     "/activities/Chess%20Club/signup?email=michael%40mergington.edu",
			wantStatus: http.StatusBadRequest,
			wantField:  "detail",
			wantText:   "Student is already signed up",
		},
		{
			name:       "signup missing email",
			method:     http.MethodPost,
			target:     "/activities/Chess%20Club/signup",
			wantStatus: http.StatusBadRequest,
			wantField:  "detail",
			wantText:   "invalid input: email is required",
		},
		{
			name:       "unregister success",
			method:     http.MethodDelete,
			target:     "/activities/Chess%20Club/unregister?email=michael%40mergington.edu",
			wantStatus: http.StatusOK,
			wantField:  "message",
			wantText:   "Unregistered michael@mergington.edu from Chess Club",
		},
		{
			name:       "unregister not signed up",
			method:     http.MethodDelete,
			target:     "/activities/Chess%20Club/unregister?email=ghost%40mergington.edu",
			wantStatus: http.StatusBadRequest,
			wantField:  "detail",
			wantText:   "Student is not signed up for this activity",
		},
		{
			name:       "unregister unknown activity",
			method:     http.MethodDelete,
			target:     "/activities/Knitting/unregister?email=a%40mergington.edu",
			wantStatus: http.StatusNotFound,
			wantField:  "detail",
			wantText:   "Activity not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(t)
			w := do(t, router, tt.method, tt.target)

			assert.Equal(t, tt.wantStatus, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantText, body[tt.wantField])
		})
	}
}

func TestSignup_FullActivity(t *testing.T) {
	router := newRouter(t)

	w := do(t, router, http.MethodPost, "/activities/Chess%20Club/signup?email=second%40mergington.edu")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodPost, "/activities/Chess%20Club/signup?email=third%40mergington.edu")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"detail":"Activity is full"}`, w.Body.String())
}

func TestWrongMethod(t *testing.T) {
	w := do(t, newRouter(t), http.MethodGet, "/activities/Chess%20Club/signup?email=a%40mergington.edu")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHealthAndRootRedirect(t *testing.T) {
	router := newRouter(t)

	w := do(t, router, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, router, http.MethodGet, "/")
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "http://board.local/", w.Header().Get("Location"))
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/activities/Chess%20Club/unregister", nil)
	req.Header.Set("Origin", "http://board.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
	w := httptest.NewRecorder()

	newRouter(t).ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodDelete)
}
