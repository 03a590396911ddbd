package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// Locals keys hydrated by AuthJWT.
const (
	LocUserID    = "user_id"
	LocUserEmail = "user_email"
	LocUserType  = "user_type"
)

type AuthJWTOpts struct {
	Secret              string
	AllowCookieFallback bool // use access_token cookie when no Bearer header
}

func AuthJWT(o AuthJWTOpts) fiber.Handler {
	secret := strings.TrimSpace(o.Secret)
	if secret == "" {
		panic("AuthJWT: Secret is required")
	}

	return func(c *fiber.Ctx) error {
		// 1) Token from Authorization: Bearer xxx (or cookie when allowed)
		raw := ""
		if authz := strings.TrimSpace(c.Get(fiber.HeaderAuthorization)); strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			raw = strings.TrimSpace(authz[7:])
		} else if o.AllowCookieFallback {
			raw = strings.TrimSpace(c.Cookies("access_token"))
		}
		if raw == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
		}

		// 2) Parse + verify algorithm
		tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !tok.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		}

		claims, ok := tok.Claims.(jwt.MapClaims)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
		}

		c.Locals("jwt_claims", claims)

		// user_id: prefer id, then sub. The identity key is an opaque string
		// (auth UID or wallet address), never assumed to be a UUID.
		switch {
		case strClaim(claims, "id") != "":
			c.Locals(LocUserID, strClaim(claims, "id"))
		case strClaim(claims, "sub") != "":
			c.Locals(LocUserID, strClaim(claims, "sub"))
		default:
			return fiber.NewError(fiber.StatusUnauthorized, "Token has no subject")
		}

		if v := strClaim(claims, "email"); v != "" {
			c.Locals(LocUserEmail, v)
		}
		if v := strClaim(claims, "user_type"); v != "" {
			c.Locals(LocUserType, v)
		}

		return c.Next()
	}
}

// UserID pulls the authenticated identity key from Locals.
func UserID(c *fiber.Ctx) string {
	if v, ok := c.Locals(LocUserID).(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func UserEmail(c *fiber.Ctx) string {
	if v, ok := c.Locals(LocUserEmail).(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func strClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key]; ok {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
