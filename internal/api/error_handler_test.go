package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transportconnect/marketplace/internal/core/domain"
)

func renderError(t *testing.T, err error) (int, string) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/demandes/d-1/statut", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body.Error
}

func TestHTTPErrorHandler_StatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{
			name:     "illegal transition keeps its message",
			err:      fmt.Errorf("transition: %w", &domain.IllegalTransitionError{From: domain.StatusEnAttente, To: domain.StatusLivree}),
			wantCode: http.StatusBadRequest,
			wantMsg:  `Impossible de passer de "en_attente" à "livree"`,
		},
		{
			name:     "invalid input carries detail",
			err:      fmt.Errorf("%w: note must be between 1 and 5", domain.ErrInvalidInput),
			wantCode: http.StatusBadRequest,
			wantMsg:  "invalid input: note must be between 1 and 5",
		},
		{
			name:     "wrapped not found hides context",
			err:      fmt.Errorf("transition: %w", domain.ErrDemandeNotFound),
			wantCode: http.StatusNotFound,
			wantMsg:  domain.ErrDemandeNotFound.Error(),
		},
		{
			name:     "wrapped forbidden hides role detail",
			err:      fmt.Errorf("%w: role expediteur cannot move demande to livree", domain.ErrForbidden),
			wantCode: http.StatusForbidden,
			wantMsg:  domain.ErrForbidden.Error(),
		},
		{
			name:     "concurrent update",
			err:      fmt.Errorf("transition d-1: %w", domain.ErrConcurrentUpdate),
			wantCode: http.StatusConflict,
			wantMsg:  domain.ErrConcurrentUpdate.Error(),
		},
		{name: "duplicate demande", err: domain.ErrDuplicateDemande, wantCode: http.StatusConflict, wantMsg: domain.ErrDuplicateDemande.Error()},
		{name: "annonce busy", err: domain.ErrAnnonceHasActiveDemandes, wantCode: http.StatusConflict, wantMsg: domain.ErrAnnonceHasActiveDemandes.Error()},
		{name: "capacity", err: domain.ErrCapacityExceeded, wantCode: http.StatusBadRequest, wantMsg: domain.ErrCapacityExceeded.Error()},
		{name: "credentials", err: domain.ErrInvalidCredentials, wantCode: http.StatusUnauthorized, wantMsg: domain.ErrInvalidCredentials.Error()},
		{name: "rate limited", err: domain.ErrRateLimited, wantCode: http.StatusTooManyRequests, wantMsg: domain.ErrRateLimited.Error()},
		{name: "position queue full", err: domain.ErrPositionQueueFull, wantCode: http.StatusServiceUnavailable, wantMsg: domain.ErrPositionQueueFull.Error()},
		{name: "tracking number retries exhausted", err: fmt.Errorf("create demande: %w", domain.ErrNumeroSuiviTaken), wantCode: http.StatusConflict, wantMsg: domain.ErrNumeroSuiviTaken.Error()},
		{
			name:     "echo error passes through",
			err:      echo.NewHTTPError(http.StatusUnprocessableEntity, "note must be at most 5"),
			wantCode: http.StatusUnprocessableEntity,
			wantMsg:  "note must be at most 5",
		},
		{
			name:     "unknown error is opaque",
			err:      errors.New("mongo: connection refused"),
			wantCode: http.StatusInternalServerError,
			wantMsg:  "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, msg := renderError(t, tt.err)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}

func TestHTTPErrorHandler_SkipsCommittedResponse(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, c.NoContent(http.StatusNoContent))

	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrForbidden, c)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}
