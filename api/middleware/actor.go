package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/arbrepalabres/backend/api/responses"
	pkgerrors "github.com/arbrepalabres/backend/pkg/errors"
	"github.com/arbrepalabres/backend/pkg/logger"
)

const (
	actorIDHeader   = "X-Actor-Id"
	actorRoleHeader = "X-Actor-Role"
)

// Actor reads the caller identity the gateway forwards and places it in the
// request context. A malformed id is rejected; a missing header passes
// through, letting each handler decide whether it needs an actor.
func Actor(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(actorIDHeader))
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			actorID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid %s header", actorIDHeader))
				return
			}

			role := strings.TrimSpace(r.Header.Get(actorRoleHeader))
			ctx := WithActor(r.Context(), actorID, role)
			if logg != nil {
				ctx = logg.WithActorID(ctx, actorID.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
