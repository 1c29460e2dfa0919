package common

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey string

const actorIDKey ctxKey = "actor/id"

// ActorHeader is set by the upstream gateway after it has authenticated the
// terminal session. Authentication itself is not this service's concern.
const ActorHeader = "X-Actor-Id"

// WithActorID stores the acting cashier/attendant identifier on the context.
func WithActorID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, actorIDKey, id)
}

// ActorID extracts the acting user identifier from the context if present.
func ActorID(ctx context.Context) (string, bool) {
	v := ctx.Value(actorIDKey)
	if v == nil {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// ActorMiddleware copies the gateway-provided actor header into request context.
func ActorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := strings.TrimSpace(r.Header.Get(ActorHeader)); id != "" {
			r = r.WithContext(WithActorID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireActor rejects requests that arrived without an actor identity.
func RequireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ActorID(r.Context()); !ok {
			JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "actor identity required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
