package handlers

import (
	"errors"
	"net/http"

	"github.com/pribylovaa/go-league-auth/internal/autherr"
	"github.com/pribylovaa/go-league-auth/internal/gate"
	apierrors "github.com/pribylovaa/go-league-auth/internal/http/errors"
)

// Login — POST /api/auth/login.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in LoginRequest
	if err := h.decodeValid(r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	pair, id, err := h.Auth.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse(pair, id))
}

// Refresh — POST /api/auth/refresh.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	var in RefreshRequest
	if err := h.decodeValid(r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	pair, id, err := h.Auth.Refresh(r.Context(), in.RefreshToken)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse(pair, id))
}

// Logout — POST /api/auth/logout. Идемпотентен: 204 и для уже отозванного токена.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	var in RefreshRequest
	if err := h.decodeValid(r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if err := h.Auth.Logout(r.Context(), in.RefreshToken); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me — GET /api/me за bearer-гейтом.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := gate.IdentityFrom(r.Context())
	if !ok {
		apierrors.WriteAuthError(w, r, autherr.E("handlers.Me", autherr.KindMissingCredential, errors.New("no identity in context")))
		return
	}

	writeJSON(w, http.StatusOK, identityResponse(*id))
}
