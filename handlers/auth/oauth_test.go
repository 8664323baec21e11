package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func oauthTestApp() *fiber.App {
	// redisCache stays nil, matching the degraded mode the router runs
	// in when redis is unreachable.
	handler := &AuthHandler{
		oauth: OAuthConfig{
			Google: &oauth2.Config{
				ClientID:    "client-id",
				RedirectURL: "http://localhost:8080/api/v1/auth/google/callback",
				Endpoint: oauth2.Endpoint{
					AuthURL:  "https://accounts.google.com/o/oauth2/auth",
					TokenURL: "https://oauth2.googleapis.com/token",
				},
			},
			FrontendURL: "http://localhost:3000",
		},
	}

	app := fiber.New()
	app.Get("/auth/google", handler.GoogleLogin)
	app.Get("/auth/google/callback", handler.GoogleCallback)
	return app
}

func TestOAuthLoginWithoutRedis(t *testing.T) {
	app := oauthTestApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/auth/google", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestOAuthCallbackWithoutRedis(t *testing.T) {
	app := oauthTestApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=abc&code=xyz", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSplitName(t *testing.T) {
	first, last := splitName("Ada Lovelace", "adal")
	assert.Equal(t, "Ada", first)
	assert.Equal(t, "Lovelace", last)

	first, last = splitName("Prince", "p")
	assert.Equal(t, "Prince", first)
	assert.Empty(t, last)

	first, last = splitName("", "octocat")
	assert.Equal(t, "octocat", first)
	assert.Empty(t, last)
}
