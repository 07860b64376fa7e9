package http

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	ctxOwnerKey      = "owner_key"
	ctxAuthenticated = "authenticated"

	sessionHeader = "X-Session-Key"
)

// ownerResolver derives the owner key for the request. A valid bearer token
// yields an authenticated user key; otherwise the anonymous session header is
// accepted. Both map into one key space so a cart survives either way, and
// the two prefixes cannot collide.
func ownerResolver(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if sub, ok := subjectFromBearer(c.Request().Header.Get(echo.HeaderAuthorization), jwtSecret); ok {
				c.Set(ctxOwnerKey, "user:"+sub)
				c.Set(ctxAuthenticated, true)
				return next(c)
			}

			if key := c.Request().Header.Get(sessionHeader); key != "" {
				c.Set(ctxOwnerKey, "session:"+key)
				c.Set(ctxAuthenticated, false)
			}
			return next(c)
		}
	}
}

func subjectFromBearer(header, secret string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if raw == "" {
		return "", false
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", false
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", false
	}
	return sub, true
}

func ownerKey(c echo.Context) string {
	key, _ := c.Get(ctxOwnerKey).(string)
	return key
}

func isAuthenticated(c echo.Context) bool {
	auth, _ := c.Get(ctxAuthenticated).(bool)
	return auth
}
