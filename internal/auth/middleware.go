package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/lead-service/internal/domain"
	"github.com/spec-kit/lead-service/internal/repository"
	apperrors "github.com/spec-kit/lead-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller with the password hash
// stripped.
type Principal struct {
	UserID    string
	FirstName string
	LastName  string
	Email     string
}

// AuthMiddleware resolves session tokens to live user records. Each
// request walks extract -> verify -> lookup, short-circuiting to the
// matching failure kind.
type AuthMiddleware struct {
	tokens  *TokenManager
	cookies SessionCookies
	users   repository.UserRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, cookies SessionCookies, users repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, cookies: cookies, users: users}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token, ok := m.cookies.Extract(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}

	userID, err := m.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return apperrors.NewSessionExpired("session expired")
		}
		return apperrors.NewInvalidSession("invalid session token")
	}

	user, err := m.users.GetByID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthenticated("user no longer exists")
		}
		return apperrors.NewInternalError(err)
	}

	c.Locals(principalKey, principalFromUser(user))
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated identity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

func principalFromUser(user *domain.User) *Principal {
	return &Principal{
		UserID:    user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
	}
}
