package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-league-auth/internal/autherr"
	"github.com/pribylovaa/go-league-auth/internal/service"
)

func TestFromAuth_ThreeStableCodes(t *testing.T) {
	tcs := []struct {
		name     string
		kind     autherr.Kind
		wantCode string
	}{
		{"missing", autherr.KindMissingCredential, CodeMissingToken},
		{"expired", autherr.KindExpired, CodeTokenExpired},
		{"malformed", autherr.KindMalformedCredential, CodeInvalidToken},
		{"signature", autherr.KindInvalidSignature, CodeInvalidToken},
		{"wrong_type", autherr.KindWrongCredentialType, CodeInvalidToken},
		{"revoked", autherr.KindRevoked, CodeInvalidToken},
		{"not_found", autherr.KindNotFound, CodeInvalidToken},
		{"storage", autherr.KindStorageFailure, CodeInvalidToken},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			status, resp := FromAuth(autherr.E("op", tc.kind, nil))
			require.Equal(t, http.StatusUnauthorized, status)
			require.Equal(t, tc.wantCode, resp.Error.Code)
		})
	}

	status, resp := FromAuth(stderrors.New("boom"))
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, CodeInvalidToken, resp.Error.Code)
}

func TestToHTTP_Mapping(t *testing.T) {
	tcs := []struct {
		name       string
		in         error
		wantStatus int
		wantCode   string
	}{
		{"nil", nil, http.StatusInternalServerError, "internal"},
		{"bad_request", fmt.Errorf("decode: %w", ErrInvalidArgument), http.StatusBadRequest, "invalid_argument"},
		{"credentials", fmt.Errorf("login: %w", service.ErrInvalidCredentials), http.StatusUnauthorized, "invalid_credentials"},
		{"storage_write", fmt.Errorf("issue: %w: %w", service.ErrUnavailable, autherr.E("refresh.Store", autherr.KindStorageFailure, stderrors.New("down"))), http.StatusServiceUnavailable, "unavailable"},
		{"storage_read", autherr.E("refresh.Validate", autherr.KindStorageFailure, stderrors.New("down")), http.StatusUnauthorized, CodeInvalidToken},
		{"revoked", autherr.E("refresh.Consume", autherr.KindRevoked, nil), http.StatusUnauthorized, CodeInvalidToken},
		{"expired", autherr.E("token.validate", autherr.KindExpired, nil), http.StatusUnauthorized, CodeTokenExpired},
		{"canceled", context.Canceled, StatusClientClosedRequest, "canceled"},
		{"deadline", fmt.Errorf("x: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, "deadline_exceeded"},
		{"other", stderrors.New("boom"), http.StatusInternalServerError, "internal"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			status, resp := ToHTTP(tc.in)
			require.Equal(t, tc.wantStatus, status)
			require.Equal(t, tc.wantCode, resp.Error.Code)
			require.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestWriteAuthError_EnvelopeAndRequestID(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	r.Header.Set("X-Request-Id", "rid-42")
	w := httptest.NewRecorder()

	WriteAuthError(w, r, autherr.E("gate", autherr.KindMissingCredential, nil))

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))
	require.Contains(t, w.Header().Get("WWW-Authenticate"), CodeMissingToken)

	var got ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, CodeMissingToken, got.Error.Code)
	require.Equal(t, "rid-42", got.Error.RequestID)
}

func TestWriteError_NoDetailLeak(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	w := httptest.NewRecorder()

	WriteError(w, r, fmt.Errorf("issue: %w: %w", service.ErrUnavailable,
		autherr.E("refresh.Store", autherr.KindStorageFailure, stderrors.New("dial tcp 10.0.0.5:5432"))))

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.NotContains(t, w.Body.String(), "10.0.0.5")
}
