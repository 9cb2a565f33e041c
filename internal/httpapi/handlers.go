// Package httpapi exposes the analysis service over HTTP: guest sign-in,
// session inspection, logout, chart analysis and conversation history.
package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/OnePunchManz/sumi-backend/internal/analysis/model"
	"github.com/OnePunchManz/sumi-backend/internal/analysis/request"
	errx "github.com/OnePunchManz/sumi-backend/internal/core/error"
	"github.com/OnePunchManz/sumi-backend/internal/session"
	logx "github.com/OnePunchManz/sumi-backend/pkg/logger"
)

// Analyzer is the analysis core as seen by the handlers.
type Analyzer interface {
	Analyze(ctx context.Context, in model.AnalyzeInput) (string, error)
	History(ctx context.Context, sessionID string) ([]*schema.Message, error)
	EndSession(ctx context.Context, sessionID string) error
}

type Handlers struct {
	Analyzer  Analyzer
	Sessions  session.Store
	Session   model.SessionConfig
	BodyLimit int64
	Now       func() time.Time
}

func (h *Handlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

type userResponse struct {
	User *session.User `json:"user"`
}

type historyResponse struct {
	Messages []request.WireMessage `json:"messages"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// ensureSession returns the request's session, creating one and setting its
// cookie when the client has none.
func (h *Handlers) ensureSession(w http.ResponseWriter, r *http.Request) (*session.Session, error) {
	if sess := sessionFrom(r.Context()); sess != nil {
		return sess, nil
	}
	sess, err := h.Sessions.Create(r.Context())
	if err != nil {
		return nil, err
	}
	h.setCookie(w, sess.ID)
	logx.Ctx(r.Context()).Debug().Str("session_id", sess.ID).Msg("created session")
	return sess, nil
}

func (h *Handlers) setCookie(w http.ResponseWriter, id string) {
	sameSite := http.SameSiteLaxMode
	if h.Session.CookieSecure {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.Session.CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(h.Session.TTL.Seconds()),
		HttpOnly: true,
		Secure:   h.Session.CookieSecure,
		SameSite: sameSite,
	})
}

func (h *Handlers) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.Session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Session.CookieSecure,
	})
}

// GuestLogin handles POST /auth/guest.
func (h *Handlers) GuestLogin(w http.ResponseWriter, r *http.Request) {
	sess, err := h.ensureSession(w, r)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	sess.User = session.NewGuestUser(h.now(), h.Session.TTL)
	if err := h.Sessions.Save(r.Context(), sess); err != nil {
		writeAppError(w, r, err)
		return
	}

	logx.Ctx(r.Context()).Info().Str("session_id", sess.ID).Str("user", sess.User.Name).Msg("guest signed in")
	writeJSON(w, http.StatusOK, userResponse{User: sess.User})
}

// GoogleLogin handles POST /auth/google. Token verification needs an external
// identity provider that is not configured.
func (h *Handlers) GoogleLogin(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotImplemented, "Google sign-in is not available")
}

// CurrentUser handles GET /user.
func (h *Handlers) CurrentUser(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if sess == nil || sess.User == nil {
		writeAppError(w, r, errx.ErrSessionNotFound)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{User: sess.User})
}

// Logout handles POST /logout. The session's conversation ends with it.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if sess := sessionFrom(r.Context()); sess != nil {
		if err := h.Analyzer.EndSession(r.Context(), sess.ID); err != nil {
			logx.Ctx(r.Context()).Warn().Err(err).Str("session_id", sess.ID).Msg("failed to end conversation")
		}
		if err := h.Sessions.Destroy(r.Context(), sess.ID); err != nil {
			writeAppError(w, r, err)
			return
		}
	}
	h.clearCookie(w)
	writeJSON(w, http.StatusOK, messageResponse{Message: "Logged out"})
}

// Analyze handles POST /analyze.
func (h *Handlers) Analyze(w http.ResponseWriter, r *http.Request) {
	in, ok := readJSON[model.AnalyzeInput](w, r, h.BodyLimit)
	if !ok {
		return
	}
	if strings.TrimSpace(in.ImageURL) == "" {
		writeAppError(w, r, errx.ErrMissingImageReference)
		return
	}

	sess, err := h.ensureSession(w, r)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	in.SessionID = sess.ID

	analysis, err := h.Analyzer.Analyze(r.Context(), in)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.AnalyzeOutput{Analysis: analysis})
}

// History handles GET /history.
func (h *Handlers) History(w http.ResponseWriter, r *http.Request) {
	resp := historyResponse{Messages: []request.WireMessage{}}

	sess := sessionFrom(r.Context())
	if sess == nil {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	msgs, err := h.Analyzer.History(r.Context(), sess.ID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	resp.Messages = append(resp.Messages, request.ToWireMessages(msgs)...)
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
