package middleware

import (
	"net/http"
	"strings"

	"horizon/backend/internal/security"
	"horizon/backend/internal/server/httpjson"
	userdomain "horizon/backend/internal/user/domain"
)

const bearerPrefix = "bearer "

// Invalid credentials and invalid/expired tokens share one message so callers
// cannot tell which check failed. Role failures get a distinct one.
const (
	msgMissingAuth  = "Authorization header missing"
	msgInvalidToken = "Invalid or expired token"
	msgForbidden    = "Insufficient permissions"
)

// Guard verifies bearer tokens and enforces role membership. It only reads the
// immutable key material inside the token provider; it never mutates state and
// is safe to invoke on every request.
type Guard struct {
	tokens *security.TokenProvider
}

// NewGuard returns a Guard verifying with the given token provider.
func NewGuard(tokens *security.TokenProvider) *Guard {
	return &Guard{tokens: tokens}
}

// Require returns middleware that authenticates the caller and, when roles is
// non-empty, requires the token's role to be a member. An empty role set means
// any authenticated caller passes.
func (g *Guard) Require(roles ...userdomain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearer(r)
			if token == "" {
				httpjson.Error(w, http.StatusUnauthorized, msgMissingAuth)
				return
			}
			claims, err := g.tokens.ValidateAccess(token)
			if err != nil {
				httpjson.Error(w, http.StatusUnauthorized, msgInvalidToken)
				return
			}
			if len(roles) > 0 && !roleAllowed(claims.Role, roles) {
				httpjson.Error(w, http.StatusForbidden, msgForbidden)
				return
			}
			if st := GetState(r.Context()); st != nil {
				st.ActorID = claims.Subject
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func roleAllowed(role userdomain.Role, allowed []userdomain.Role) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}

// extractBearer returns the Bearer token from the Authorization header, or ""
// if missing or malformed.
func extractBearer(r *http.Request) string {
	v := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
