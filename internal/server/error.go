package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/hauslink/notify/internal/auth"
	"github.com/hauslink/notify/internal/ierr"
	"go.uber.org/zap"
)

func httpStatus(code ierr.ErrorCode) int {
	switch code {
	case ierr.ErrorCodeInvalidArgument:
		return http.StatusBadRequest
	case ierr.ErrorCodeUnauthenticated:
		return http.StatusUnauthorized
	case ierr.ErrorCodePermissionDenied:
		return http.StatusForbidden
	case ierr.ErrorCodeNotFound:
		return http.StatusNotFound
	case ierr.ErrorCodeFailedPrecondition:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var coded ierr.Error
	if !errors.As(err, &coded) {
		logger.Error("request failed", zap.Error(err))
		coded = ierr.New(ierr.ErrorCodeInternal, errors.New("internal error"))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus(coded.Code))

	encodeErr := json.NewEncoder(w).Encode(map[string]any{"error": coded})
	if encodeErr != nil {
		logger.Error("failed to encode error response", zap.Error(encodeErr))
	}
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

// bearerAuthentication resolves the Authorization header against session
// tokens first, then API keys, so both browsers and internal services can
// call the same endpoints.
func bearerAuthentication(authenticator *auth.Authenticator, r *http.Request) (*auth.Authentication, error) {
	header := r.Header.Get("Authorization")

	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || tokenString == "" {
		return nil, ierr.New(ierr.ErrorCodeUnauthenticated, errors.New("missing bearer token"))
	}

	authentication, err := authenticator.AuthenticateJWT(tokenString)
	if err == nil {
		return authentication, nil
	}

	return authenticator.AuthenticateAPIKey(tokenString)
}
