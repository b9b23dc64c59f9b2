package authjwt

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/internal/types"
)

func newKeyPair(t *testing.T) (*ecdsa.PrivateKey, string) {
	t.Helper()
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)
	pub := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	return priv, string(pub)
}

func signToken(t *testing.T, priv *ecdsa.PrivateKey, uid string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
		"exp": exp.Unix(),
		"claim": map[string]interface{}{
			"uid":         uid,
			"username":    "rep@example.com",
			"displayName": "Sales Rep",
		},
	})
	signed, err := token.SignedString(priv)
	require.NoError(t, err)
	return signed
}

func newApp(cfg Config) *fiber.App {
	app := fiber.New()
	app.Use(New(cfg))
	app.Get("/me", func(c *fiber.Ctx) error {
		user := c.Locals(types.UserCtxName).(types.UserContext)
		return c.SendString(user.UserID.String())
	})
	return app
}

func TestMiddleware_AcceptsValidBearerToken(t *testing.T) {
	priv, pub := newKeyPair(t)
	uid := uuid.Must(uuid.NewV4()).String()
	app := newApp(Config{PublicKey: pub})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(types.HeaderAuthorization, types.BearerPrefix+signToken(t, priv, uid, time.Now().Add(time.Hour)))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMiddleware_AcceptsCookie(t *testing.T) {
	priv, pub := newKeyPair(t)
	uid := uuid.Must(uuid.NewV4()).String()
	app := newApp(Config{PublicKey: pub})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: signToken(t, priv, uid, time.Now().Add(time.Hour))})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMiddleware_RejectsMissingExpiredAndForeignTokens(t *testing.T) {
	priv, pub := newKeyPair(t)
	other, _ := newKeyPair(t)
	uid := uuid.Must(uuid.NewV4()).String()
	app := newApp(Config{PublicKey: pub})

	cases := map[string]string{
		"missing": "",
		"expired": signToken(t, priv, uid, time.Now().Add(-time.Hour)),
		"foreign": signToken(t, other, uid, time.Now().Add(time.Hour)),
		"garbage": "not.a.token",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if token != "" {
				req.Header.Set(types.HeaderAuthorization, types.BearerPrefix+token)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestVerifier_RejectsBadUID(t *testing.T) {
	priv, pub := newKeyPair(t)
	v, err := NewVerifier(pub, "")
	require.NoError(t, err)

	_, err = v.Verify(signToken(t, priv, "7", time.Now().Add(time.Hour)))
	assert.Error(t, err)
}

func TestDisabledMode_UsesUIDHeader(t *testing.T) {
	app := newApp(Config{Disabled: true})
	uid := uuid.Must(uuid.NewV4()).String()

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(types.HeaderUID, uid)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
