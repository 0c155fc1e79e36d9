package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/m04kA/SMC-LessonBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-LessonBookingService/internal/domain"
)

// Заголовки, которые выставляет провайдер идентификации перед сервисом
const (
	HeaderUserID    = "X-User-ID"
	HeaderUserRole  = "X-User-Role"
	HeaderUserEmail = "X-User-Email"
	HeaderUserName  = "X-User-Name"
)

const (
	msgMissingUserID = "отсутствует ID пользователя"
	msgInvalidRole   = "некорректная роль пользователя"
)

type identityKey struct{}

// Auth требует X-User-ID и кладёт личность пользователя в контекст
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(HeaderUserID))
		if userID == "" {
			handlers.RespondUnauthorized(w, msgMissingUserID)
			return
		}

		role := domain.Role(strings.ToLower(strings.TrimSpace(r.Header.Get(HeaderUserRole))))
		if role != "" && !role.IsValid() {
			handlers.RespondUnauthorized(w, msgInvalidRole)
			return
		}

		identity := domain.Identity{
			ID:    userID,
			Email: strings.TrimSpace(r.Header.Get(HeaderUserEmail)),
			Name:  strings.TrimSpace(r.Header.Get(HeaderUserName)),
			Role:  role,
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

// WithIdentity кладёт личность в контекст
func WithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// GetIdentity достаёт личность пользователя из контекста
func GetIdentity(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(domain.Identity)
	return identity, ok && identity.ID != ""
}

// GetUserID достаёт ID пользователя из контекста
func GetUserID(ctx context.Context) (string, bool) {
	identity, ok := GetIdentity(ctx)
	if !ok {
		return "", false
	}
	return identity.ID, true
}
