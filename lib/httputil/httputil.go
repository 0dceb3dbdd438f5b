package httputil

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"lionclub-backend/internal/db"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type errorBody struct {
	Error string `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(value)
	if err != nil {
		slog.Warn("failed to encode response body", "err", err)
	}
}

func WriteError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(ctx, "request failed", "status", status, "err", err)
		// internal details stay out of the response
		WriteJSON(w, status, errorBody{Error: "internal server error"})
		return
	}
	WriteJSON(w, status, errorBody{Error: err.Error()})
}

func ReadJSON[T any](r *http.Request) (T, error) {
	var out T
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	err := decoder.Decode(&out)
	if err != nil {
		return out, fmt.Errorf("invalid request body: %w", err)
	}
	return out, nil
}

// TokenVerifier resolves a bearer token to the user it belongs to.
// implemented by the auth service.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (db.User, error)
}

const profileCtxKey = "lionclub:profile"
const tokenCtxKey = "lionclub:token"

// RequireAuth resolves the Authorization bearer token and stores the
// authenticated user and the token itself in the request context.
func RequireAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			split := strings.Split(r.Header.Get("Authorization"), " ")
			if len(split) < 2 {
				WriteError(r.Context(), w, http.StatusUnauthorized, fmt.Errorf("missing bearer token"))
				return
			}

			user, err := verifier.VerifyToken(r.Context(), split[1])
			if err != nil {
				WriteError(r.Context(), w, http.StatusUnauthorized, err)
				return
			}

			ctx := context.WithValue(r.Context(), profileCtxKey, user)
			ctx = context.WithValue(ctx, tokenCtxKey, split[1])
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route to the given roles. it must sit inside
// RequireAuth.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := ProfileFromContext(r.Context())
			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			WriteError(r.Context(), w, http.StatusForbidden, fmt.Errorf("insufficient permissions"))
		})
	}
}

func ProfileFromContext(ctx context.Context) db.User {
	span := trace.SpanFromContext(ctx)
	profile, ok := ctx.Value(profileCtxKey).(db.User)
	if !ok {
		panic("user ctx is not set")
	}
	if profile.Studentid == "" {
		panic("empty profile student id")
	}
	span.SetAttributes(attribute.KeyValue{
		Key:   "profile:student_id",
		Value: attribute.StringValue(profile.Studentid),
	})
	return profile
}

// TokenFromContext returns the bearer token RequireAuth resolved the
// current profile from.
func TokenFromContext(ctx context.Context) string {
	token, ok := ctx.Value(tokenCtxKey).(string)
	if !ok {
		panic("token ctx is not set")
	}
	return token
}
