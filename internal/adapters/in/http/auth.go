package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
)

// ErrNoActor is returned when a request context carries no authenticated
// staff member. Mutations never proceed anonymously.
var ErrNoActor = errors.New("no authenticated actor in request context")

type actorContextKey struct{}

// Claims is the JWT payload identifying a staff member. Subject carries the
// staff account id.
type Claims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Authenticator validates HS256 bearer tokens and stores the resolved actor
// in the request context.
type Authenticator struct {
	secret []byte
}

// NewAuthenticator creates an authenticator with the given signing secret.
func NewAuthenticator(secret []byte) *Authenticator {
	return &Authenticator{secret: secret}
}

// Middleware returns an echo middleware enforcing a valid bearer token.
// Requests without one are rejected with 401 before any handler runs.
func (a *Authenticator) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, ErrorResponse{
					Code:    http.StatusUnauthorized,
					Message: "missing bearer token",
				})
			}

			raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

			parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			var claims Claims
			token, err := parser.ParseWithClaims(raw, &claims, func(_ *jwt.Token) (any, error) {
				return a.secret, nil
			})
			if err != nil || !token.Valid {
				return c.JSON(http.StatusUnauthorized, ErrorResponse{
					Code:    http.StatusUnauthorized,
					Message: "invalid or expired token",
				})
			}

			actor, err := actorFromClaims(claims)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, ErrorResponse{
					Code:    http.StatusUnauthorized,
					Message: "token does not identify a staff member",
				})
			}

			ctx := context.WithValue(c.Request().Context(), actorContextKey{}, actor)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// GenerateToken signs an HS256 token for a staff member.
func (a *Authenticator) GenerateToken(actor kernel.Actor, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Name:  actor.Name(),
		Email: actor.Email(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

func actorFromClaims(claims Claims) (kernel.Actor, error) {
	id, err := kernel.UUIDFromString(claims.Subject)
	if err != nil {
		return kernel.Actor{}, err
	}
	return kernel.NewActor(id, claims.Name, claims.Email)
}

// ContextIdentityProvider implements IdentityProvider by reading the actor
// the auth middleware stored in the request context.
type ContextIdentityProvider struct{}

// NewContextIdentityProvider creates the context-backed identity provider.
func NewContextIdentityProvider() ContextIdentityProvider {
	return ContextIdentityProvider{}
}

// CurrentActor returns the authenticated staff member, or ErrNoActor.
func (ContextIdentityProvider) CurrentActor(ctx context.Context) (kernel.Actor, error) {
	actor, ok := ctx.Value(actorContextKey{}).(kernel.Actor)
	if !ok {
		return kernel.Actor{}, ErrNoActor
	}
	return actor, nil
}
