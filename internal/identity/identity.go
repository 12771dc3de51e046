package identity

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrUnauthenticated = errors.New("no identity")
	ErrForbidden       = errors.New("admin role required")
)

// Kind distinguishes an authenticated account from an anonymous guest session.
type Kind int

const (
	KindAccount Kind = iota
	KindGuest
)

// Identity is the resolved caller: either an account (from JWT claims) or a
// guest holding an anonymous session token. Cart, checkout and order lookups
// all scope their data by Key().
type Identity struct {
	Kind         Kind
	AccountID    int
	Role         string
	SessionToken string
}

func (i Identity) IsGuest() bool { return i.Kind == KindGuest }

// Key returns the owner key used to scope cart lines and guest orders.
func (i Identity) Key() string {
	if i.Kind == KindAccount {
		return fmt.Sprintf("account:%d", i.AccountID)
	}
	return "guest:" + i.SessionToken
}

// SessionHeader carries the anonymous session token for guest requests.
const SessionHeader = "X-Session-Token"

// FromCtx resolves the caller's identity. A JWT placed in locals by the auth
// middleware wins; otherwise the session token header identifies a guest.
func FromCtx(c *fiber.Ctx) (Identity, error) {
	if tok, ok := c.Locals("user").(*jwt.Token); ok {
		return fromToken(tok)
	}
	if sess := c.Get(SessionHeader); sess != "" {
		return Identity{Kind: KindGuest, SessionToken: sess}, nil
	}
	return Identity{}, ErrUnauthenticated
}

func fromToken(tok *jwt.Token) (Identity, error) {
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrUnauthenticated
	}

	id, err := intClaim(claims, "user_id")
	if err != nil {
		return Identity{}, ErrUnauthenticated
	}

	role, _ := claims["role"].(string)
	return Identity{Kind: KindAccount, AccountID: id, Role: role}, nil
}

func intClaim(claims jwt.MapClaims, key string) (int, error) {
	raw, ok := claims[key]
	if !ok {
		return 0, ErrUnauthenticated
	}
	switch v := raw.(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case string:
		id, err := strconv.Atoi(v)
		if err != nil {
			return 0, ErrUnauthenticated
		}
		return id, nil
	default:
		return 0, ErrUnauthenticated
	}
}

// RequireAdmin guards admin routes. Every admin operation goes through this
// one middleware instead of repeating the role check per handler.
func RequireAdmin(c *fiber.Ctx) error {
	ident, err := FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	if ident.IsGuest() || ident.Role != "admin" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "forbidden"})
	}
	return c.Next()
}
