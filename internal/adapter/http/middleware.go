package httpadapter

import (
	"context"
	"net/http"

	"landmarket/internal/core/domain"
)

const (
	headerActor = "X-Actor-ID"
	headerRole  = "X-Actor-Role"

	roleAdmin = domain.RoleAdmin
)

type actorKey struct{}

// requireActor rejects requests without an actor id and stores it in the
// request context.
func requireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := r.Header.Get(headerActor)
		if actor == "" {
			writeError(w, http.StatusUnauthorized, "NoActor", headerActor+" header is required")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey{}, actor)))
	})
}

func actorFrom(r *http.Request) string {
	actor, _ := r.Context().Value(actorKey{}).(string)
	return actor
}

// roleFrom reads the caller's role. Unknown or missing roles count as user.
func roleFrom(r *http.Request) domain.Role {
	switch role := domain.Role(r.Header.Get(headerRole)); role {
	case domain.RoleAdmin, domain.RoleAgent:
		return role
	}
	return domain.RoleUser
}

func requireRole(role domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if roleFrom(r) != role {
				writeError(w, http.StatusForbidden, "Forbidden", "requires role "+string(role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
