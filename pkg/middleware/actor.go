package middleware

import (
	"context"
	apperrors "medibook/pkg/errors"
	"medibook/pkg/logger"
	"medibook/pkg/model"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ActorIDHeader   = "X-User-ID"
	ActorRoleHeader = "X-User-Role"

	actorKey contextKey = "actor"
)

// ActorContext reads the authenticated caller from the headers set by the
// gateway. Requests without a usable identity are rejected with 401.
func ActorContext(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, reason := actorFromHeaders(r)
			if reason != "" {
				log.Warn("Rejected request without a valid actor",
					"request_id", requestIDFrom(r),
					"reason", reason,
					"path", r.URL.Path,
				)
				_ = apperrors.WriteError(w, apperrors.Unauthorized(reason))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

func actorFromHeaders(r *http.Request) (model.Actor, string) {
	id := strings.TrimSpace(r.Header.Get(ActorIDHeader))
	role := model.Role(strings.ToLower(strings.TrimSpace(r.Header.Get(ActorRoleHeader))))

	if id == "" || role == "" {
		return model.Actor{}, "Authentication required"
	}
	if !primitive.IsValidObjectID(id) {
		return model.Actor{}, "Invalid user identity"
	}
	if !role.Valid() {
		return model.Actor{}, "Invalid user role"
	}
	return model.Actor{UserID: id, Role: role}, ""
}

func WithActor(ctx context.Context, actor model.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

func ActorFromContext(ctx context.Context) (model.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(model.Actor)
	return actor, ok
}

func requestIDFrom(r *http.Request) string {
	if id, ok := r.Context().Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
