package auth

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// SessionCookies binds session tokens to the HTTP transport. The token
// travels as an HTTP-only cookie, with a bearer Authorization header
// accepted as fallback; the cookie wins when both are present.
type SessionCookies struct {
	Name   string
	Secure bool
}

// Set attaches the session cookie to the response.
func (s SessionCookies) Set(c *fiber.Ctx, token string, expiresAt time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     s.Name,
		Value:    token,
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   s.Secure,
		SameSite: fiber.CookieSameSiteNoneMode,
		Path:     "/",
	})
}

// Clear expires the session cookie.
func (s SessionCookies) Clear(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     s.Name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   s.Secure,
		SameSite: fiber.CookieSameSiteNoneMode,
		Path:     "/",
	})
}

// Extract pulls the session token from the request, cookie first, then
// the Authorization header (with or without a Bearer prefix). Returns
// false when no token is present.
func (s SessionCookies) Extract(c *fiber.Ctx) (string, bool) {
	if token := c.Cookies(s.Name); token != "" {
		return token, true
	}
	header := strings.TrimSpace(c.Get("Authorization"))
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1]), true
	}
	return header, true
}
