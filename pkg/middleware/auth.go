package middleware

import (
	"context"
	"net/http"
	"strings"

	apperrors "renthub/pkg/errors"
	httputil "renthub/pkg/http"
	"renthub/pkg/logger"
	"renthub/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const PrincipalKey contextKey = "principal"

// TokenVerifier turns a bearer token into the principal it was issued
// for. The auth module provides the JWT-backed implementation.
type TokenVerifier interface {
	Verify(token string) (model.Principal, error)
}

// Authenticate extracts and verifies the Authorization bearer token,
// attaching the resulting principal to the request context. Requests
// without a valid token are rejected with 401.
func Authenticate(verifier TokenVerifier, log *logger.Logger) func(httprouter.Handle) httprouter.Handle {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			token, ok := bearerToken(r)
			if !ok {
				httputil.WriteError(w, apperrors.Unauthorized("Missing or malformed Authorization header"))
				return
			}

			principal, err := verifier.Verify(token)
			if err != nil {
				log.Warn("Token verification failed",
					"path", r.URL.Path,
					"error", err,
				)
				httputil.WriteError(w, apperrors.Unauthorized("Invalid or expired token"))
				return
			}

			ctx := context.WithValue(r.Context(), PrincipalKey, principal)
			next(w, r.WithContext(ctx), ps)
		}
	}
}

// RequireRole wraps an authenticated handler and rejects principals
// whose role is not the given one.
func RequireRole(role model.Role, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		principal, ok := PrincipalFrom(r.Context())
		if !ok {
			httputil.WriteError(w, apperrors.Unauthorized("Authentication required"))
			return
		}
		if principal.Role != role {
			httputil.WriteError(w, apperrors.Forbidden("Insufficient permissions"))
			return
		}
		next(w, r, ps)
	}
}

// PrincipalFrom returns the authenticated principal stored by
// Authenticate, if any.
func PrincipalFrom(ctx context.Context) (model.Principal, bool) {
	principal, ok := ctx.Value(PrincipalKey).(model.Principal)
	return principal, ok
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
