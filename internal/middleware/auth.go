package middleware

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"foodgram/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// TokenIssuer is the iss claim of tokens minted by this service.
	TokenIssuer = "foodgram-api"
	// TokenAudience is the aud claim of tokens minted by this service.
	TokenAudience = "foodgram-client"
)

// TokenClaims is the subset of JWT claims the API relies on.
type TokenClaims struct {
	UserID    uint
	JTI       string
	ExpiresAt time.Time
}

// BlacklistKey is the Redis key marking a revoked token ID.
func BlacklistKey(jti string) string {
	return "blacklist:" + jti
}

// ParseToken validates signature, issuer and audience of tokenString and
// extracts the claims the API needs.
func ParseToken(secret, tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(secret), nil
	},
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, models.NewUnauthorizedError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, models.NewUnauthorizedError("Invalid token claims")
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, models.NewUnauthorizedError("Invalid subject claim")
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return nil, models.NewUnauthorizedError("Invalid user ID in token")
	}

	out := &TokenClaims{UserID: uint(userID)}
	if jti, ok := claims["jti"].(string); ok {
		out.JTI = jti
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

// IssueToken mints a signed HS256 token for userID valid for ttl.
func IssueToken(secret string, userID uint, username string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("JWT secret not configured")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(userID), 10),
		"username": username,
		"iss":      TokenIssuer,
		"aud":      TokenAudience,
		"exp":      now.Add(ttl).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func bearerToken(c *fiber.Ctx) string {
	parts := strings.Fields(c.Get(fiber.HeaderAuthorization))
	if len(parts) == 2 && (parts[0] == "Bearer" || parts[0] == "Token") {
		return parts[1]
	}
	return ""
}

func revoked(ctx context.Context, rdb *redis.Client, jti string) bool {
	if rdb == nil || jti == "" {
		return false
	}
	n, err := rdb.Exists(ctx, BlacklistKey(jti)).Result()
	return err == nil && n > 0
}

func setUser(c *fiber.Ctx, claims *TokenClaims) {
	c.Locals("userID", claims.UserID)
	c.Locals("tokenClaims", claims)
	ctx := context.WithValue(c.UserContext(), UserIDKey, claims.UserID)
	c.SetUserContext(ctx)
}

// AuthRequired rejects requests without a valid, unrevoked bearer token and
// stores the caller's ID in c.Locals("userID").
func AuthRequired(secret string, rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c)
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		claims, err := ParseToken(secret, tokenString)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}
		if revoked(c.UserContext(), rdb, claims.JTI) {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Token has been revoked"))
		}

		setUser(c, claims)
		return c.Next()
	}
}

// OptionalAuth sets c.Locals("userID") when a valid token is present and lets
// anonymous requests through untouched.
func OptionalAuth(secret string, rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c)
		if tokenString == "" {
			return c.Next()
		}
		claims, err := ParseToken(secret, tokenString)
		if err == nil && !revoked(c.UserContext(), rdb, claims.JTI) {
			setUser(c, claims)
		}
		return c.Next()
	}
}

// CurrentUserID returns the authenticated user's ID, or 0 for anonymous requests.
func CurrentUserID(c *fiber.Ctx) uint {
	if uid, ok := c.Locals("userID").(uint); ok {
		return uid
	}
	return 0
}
