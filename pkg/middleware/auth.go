package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"

	apperrors "slotbook/pkg/errors"
	httputil "slotbook/pkg/http"
	"slotbook/pkg/model"
)

const identityKey contextKey = "identity"

type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator resolves the caller's identity from a Bearer token.
// Requests without a token pass through as guests; role checks happen
// in the services.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// Identity attaches the resolved identity to the request context. An
// absent or malformed token yields a guest identity rather than an
// error; endpoints that need authentication reject guests themselves.
func (a *Authenticator) Identity(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		identity := a.resolve(r)
		ctx := context.WithValue(r.Context(), identityKey, identity)
		next(w, r.WithContext(ctx), ps)
	}
}

// Middleware is the http.Handler form of Identity, for the server-wide
// chain. It runs before the router so later middleware can key on the
// caller.
func (a *Authenticator) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := a.resolve(r)
			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Require rejects the request unless a valid token is presented.
func (a *Authenticator) Require(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		identity := a.resolve(r)
		if !identity.Authenticated() {
			httputil.WriteError(w, apperrors.Unauthorized("authentication required"))
			return
		}
		ctx := context.WithValue(r.Context(), identityKey, identity)
		next(w, r.WithContext(ctx), ps)
	}
}

func (a *Authenticator) resolve(r *http.Request) model.Identity {
	guest := model.Identity{Role: model.RoleGuest}

	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return guest
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid || claims.UserID == "" {
		return guest
	}

	role := claims.Role
	if role != model.RoleAdmin {
		role = model.RoleUser
	}
	return model.Identity{UserID: claims.UserID, Role: role}
}

// IdentityFrom returns the identity stored by the Identity middleware,
// or a guest identity when none is present.
func IdentityFrom(ctx context.Context) model.Identity {
	if identity, ok := ctx.Value(identityKey).(model.Identity); ok {
		return identity
	}
	return model.Identity{Role: model.RoleGuest}
}
