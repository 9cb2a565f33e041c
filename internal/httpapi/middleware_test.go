package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errx "github.com/OnePunchManz/sumi-backend/internal/core/error"
	"github.com/OnePunchManz/sumi-backend/internal/session"
)

type failingStore struct {
	err error
}

func (s failingStore) Create(context.Context) (*session.Session, error)      { return nil, s.err }
func (s failingStore) Get(context.Context, string) (*session.Session, error) { return nil, s.err }
func (s failingStore) Save(context.Context, *session.Session) error          { return s.err }
func (s failingStore) Destroy(context.Context, string) error                 { return s.err }

func TestLoadSessionStoreFailure(t *testing.T) {
	store := failingStore{err: errx.WrapRedis(errors.New("connection refused"))}
	reached := false
	h := LoadSession(store, "sid")(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		reached = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/user", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "00000000-0000-0000-0000-000000000001"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.False(t, reached)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestLoadSessionWithoutCookie(t *testing.T) {
	var got *session.Session
	h := LoadSession(failingStore{err: errors.New("must not be called")}, "sid")(
		http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			got = sessionFrom(r.Context())
		}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, got)
}

func TestLoadSessionNotFound(t *testing.T) {
	reached := false
	h := LoadSession(failingStore{err: errx.ErrSessionNotFound}, "sid")(
		http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			reached = true
			assert.Nil(t, sessionFrom(r.Context()))
		}))

	req := httptest.NewRequest(http.MethodGet, "/user", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "stale"})
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.True(t, reached)
}

func TestLoggerKeepsStatus(t *testing.T) {
	h := RequestID(Logger(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusTeapot, "short and stout")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)
	assert.JSONEq(t, `{"error":"short and stout"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(headerRequestID))
}

func TestReadJSONTooLarge(t *testing.T) {
	var ok bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok = readJSON[map[string]string](w, r, 8)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(`{"imageUrl":"https://example.com/chart.png"}`))
	h.ServeHTTP(rec, req)

	assert.False(t, ok)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
