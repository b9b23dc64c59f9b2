package authjwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/internal/pkg/log"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/internal/types"
)

// Config defines the config for the JWT middleware.
type Config struct {
	// The EC public key for validating ES256 tokens.
	PublicKey string
	// The claim key where the UserContext is stored.
	ClaimKey string
	// The context key to store the UserContext.
	UserCtxName string
	// Disabled trusts the uid header instead of a token. Local development only.
	Disabled bool
}

// New creates a new middleware handler.
func New(cfg Config) fiber.Handler {
	if cfg.ClaimKey == "" {
		cfg.ClaimKey = types.DefaultClaimKey
	}
	if cfg.UserCtxName == "" {
		cfg.UserCtxName = types.UserCtxName
	}

	if cfg.Disabled {
		log.Warn("JWT verification is disabled; identities are taken from the %q header", types.HeaderUID)
		return devIdentity(cfg)
	}

	// Parse the key once on startup.
	verifier, err := NewVerifier(cfg.PublicKey, cfg.ClaimKey)
	if err != nil {
		panic(err.Error())
	}

	return func(c *fiber.Ctx) error {
		tokenString := extractToken(c)
		if tokenString == "" {
			return unauthorized(c, "Missing or invalid JWT")
		}

		userCtx, err := verifier.Verify(tokenString)
		if err != nil {
			log.WarnWithContext(c.UserContext(), "rejected token: %v", err)
			return unauthorized(c, "Invalid token")
		}

		c.Locals(cfg.UserCtxName, userCtx)
		return c.Next()
	}
}

// Verifier validates ES256 tokens against a fixed public key
type Verifier struct {
	key      interface{}
	claimKey string
	now      func() time.Time
}

// NewVerifier parses the PEM encoded EC public key
func NewVerifier(publicKey, claimKey string) (*Verifier, error) {
	ecPublicKey, err := jwt.ParseECPublicKeyFromPEM([]byte(publicKey))
	if err != nil {
		return nil, fmt.Errorf("failed to parse EC public key: %w", err)
	}
	if claimKey == "" {
		claimKey = types.DefaultClaimKey
	}
	return &Verifier{key: ecPublicKey, claimKey: claimKey, now: time.Now}, nil
}

// Verify validates a token and returns the UserContext it carries.
// It never writes to a response so other callers can reuse it.
func (v *Verifier) Verify(tokenString string) (types.UserContext, error) {
	var userCtx types.UserContext

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// CRITICAL: Enforce the expected signing algorithm.
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.key, nil
	}, jwt.WithTimeFunc(v.now))
	if err != nil {
		return userCtx, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return userCtx, errors.New("invalid token")
	}

	claimData, ok := claims[v.claimKey].(map[string]interface{})
	if !ok {
		return userCtx, errors.New("invalid token claim format")
	}

	userCtx, err = mapToUserContext(claimData)
	if err != nil {
		return userCtx, fmt.Errorf("invalid user context in token: %w", err)
	}
	return userCtx, nil
}

func extractToken(c *fiber.Ctx) string {
	// Authorization header first (API clients), then the access_token cookie (browsers)
	authHeader := c.Get(types.HeaderAuthorization)
	if strings.HasPrefix(authHeader, types.BearerPrefix) {
		if token := strings.TrimSpace(strings.TrimPrefix(authHeader, types.BearerPrefix)); token != "" {
			return token
		}
	}
	return c.Cookies("access_token")
}

func devIdentity(cfg Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := uuid.FromString(c.Get(types.HeaderUID))
		if err != nil {
			return unauthorized(c, "Missing or invalid uid header")
		}
		c.Locals(cfg.UserCtxName, types.UserContext{UserID: userID})
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

// mapToUserContext converts claim data to UserContext
func mapToUserContext(claimData map[string]interface{}) (types.UserContext, error) {
	var userCtx types.UserContext

	userIDStr, ok := claimData[types.HeaderUID].(string)
	if !ok {
		return userCtx, errors.New("missing or invalid uid in claim")
	}
	userID, err := uuid.FromString(userIDStr)
	if err != nil {
		return userCtx, fmt.Errorf("invalid user ID: %v", err)
	}
	userCtx.UserID = userID

	if username, ok := claimData["username"].(string); ok {
		userCtx.Username = username
	}
	if displayName, ok := claimData["displayName"].(string); ok {
		userCtx.DisplayName = displayName
	}
	if systemRole, ok := claimData["role"].(string); ok {
		userCtx.SystemRole = systemRole
	}

	return userCtx, nil
}
