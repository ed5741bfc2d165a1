package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/access-management/internal"
	"github.com/frahmantamala/access-management/internal/transport"
)

// RBACAuthorization guards routes with capabilities of the shared Authorizer.
type RBACAuthorization struct {
	*transport.BaseHandler
	authorizer internal.Authorizer
}

func NewRBACAuthorization(authorizer internal.Authorizer, logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{
		BaseHandler: transport.NewBaseHandler(logger),
		authorizer:  authorizer,
	}
}

func (ra *RBACAuthorization) Check(next http.HandlerFunc, c internal.Capability) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := internal.IdentityFromContext(r.Context())
		if !ok {
			ra.Logger.Warn("authorization check failed: identity not found in context")
			ra.WriteAppError(w, internal.ErrMissingToken)
			return
		}

		if err := internal.Authorize(ra.authorizer, identity, c); err != nil {
			ra.Logger.WarnContext(r.Context(), "access denied: insufficient role",
				"user_id", identity.UserID,
				"role", identity.Role,
				"required_capability", c.String())
			ra.HandleServiceError(w, err)
			return
		}

		next.ServeHTTP(w, r)
	}
}

// RequireCapability returns chi-compatible middleware for c.
func (ra *RBACAuthorization) RequireCapability(c internal.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return ra.Check(next.ServeHTTP, c)
	}
}
