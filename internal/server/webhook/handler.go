// Package webhook receives identity provider lifecycle events over HTTP.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	svix "github.com/svix/svix-webhooks/go"
	"go.uber.org/zap"

	"github.com/ncontiero/dk-tube-sub000/internal/errs"
	"github.com/ncontiero/dk-tube-sub000/internal/limiter"
	"github.com/ncontiero/dk-tube-sub000/internal/model"
)

// Signature headers (Standard Webhooks). Timestamps older or newer than five
// minutes are rejected.
const (
	HeaderID        = "webhook-id"
	HeaderTimestamp = "webhook-timestamp"
	HeaderSignature = "webhook-signature"
)

const (
	maxBody      = 1 << 20
	limiterScope = "webhook"
	secretPrefix = "whsec_"
)

// IdentityEvents applies provider lifecycle events.
type IdentityEvents interface {
	OnIdentityEvent(ctx context.Context, kind string, id model.Identity) error
}

type Handler struct {
	events IdentityEvents
	wh     *svix.Webhook
	lim    limiter.Limiter
	log    *zap.Logger
}

// NewHandler constructs the webhook handler. secret is "whsec_<base64>" or raw.
func NewHandler(events IdentityEvents, secret string, lim limiter.Limiter, log *zap.Logger) (*Handler, error) {
	if lim == nil {
		lim = limiter.Nop{}
	}
	wh, err := newVerifier(secret)
	if err != nil {
		return nil, err
	}
	return &Handler{events: events, wh: wh, lim: lim, log: log}, nil
}

func newVerifier(secret string) (*svix.Webhook, error) {
	if secret == "" {
		return nil, errors.New("webhook secret is empty")
	}
	if strings.HasPrefix(secret, secretPrefix) {
		return svix.NewWebhook(secret)
	}
	return svix.NewWebhookRaw([]byte(secret))
}

// Router serves the webhook endpoints. The limiter keys on the socket peer;
// forwarding headers are ignored because any caller can set them.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Post("/webhooks/identity", h.identity)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"health": "ok"})
	})
	return r
}

// event is the provider envelope: {"type": "...", "data": {...}}.
type event struct {
	Type string    `json:"type"`
	Data eventUser `json:"data"`
}

type eventUser struct {
	ID                    string         `json:"id"`
	Username              string         `json:"username"`
	FirstName             string         `json:"first_name"`
	LastName              string         `json:"last_name"`
	ImageURL              string         `json:"image_url"`
	PrimaryEmailAddressID string         `json:"primary_email_address_id"`
	EmailAddresses        []emailAddress `json:"email_addresses"`
}

type emailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

func (u eventUser) identity() model.Identity {
	email := ""
	for _, e := range u.EmailAddresses {
		if e.ID == u.PrimaryEmailAddressID || email == "" {
			email = e.EmailAddress
		}
	}
	return model.Identity{
		ExternalID: u.ID,
		Email:      email,
		Username:   u.Username,
		Name:       strings.TrimSpace(u.FirstName + " " + u.LastName),
		AvatarURL:  u.ImageURL,
	}
}

func (h *Handler) identity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := limiter.Key{Scope: limiterScope, Peer: peerOf(r)}

	if ok, _, err := h.lim.Allow(ctx, key); err != nil {
		h.log.Warn("limiter allow", zap.Error(err))
	} else if !ok {
		writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many invalid signatures")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody+1))
	if err != nil || len(body) > maxBody {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "unreadable or oversized body")
		return
	}

	if err := h.wh.Verify(body, r.Header); err != nil {
		if _, _, ferr := h.lim.Failure(ctx, key); ferr != nil {
			h.log.Warn("limiter failure", zap.Error(ferr))
		}
		h.log.Info("webhook rejected", zap.String("peer", key.Peer), zap.Error(err))
		writeError(w, http.StatusUnauthorized, "BAD_SIGNATURE", err.Error())
		return
	}
	if err := h.lim.Success(ctx, key); err != nil {
		h.log.Warn("limiter success", zap.Error(err))
	}

	var ev event
	if err := json.Unmarshal(body, &ev); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}

	err = h.events.OnIdentityEvent(ctx, ev.Type, ev.Data.identity())
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"type": ev.Type, "id": ev.Data.ID})
	case errors.Is(err, errs.ErrValidation):
		writeError(w, http.StatusBadRequest, "INVALID_EVENT", err.Error())
	case errors.Is(err, errs.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "CONFLICT", "username already taken")
	default:
		h.log.Error("identity event", zap.String("type", ev.Type), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "INTERNAL", "failed to apply event")
	}
}

func peerOf(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
