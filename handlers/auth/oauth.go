package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"

	"github.com/coursehunt/api/config"
	"github.com/coursehunt/api/model"
	"github.com/coursehunt/api/utils/response"
)

const oauthStateTTL = 10 * time.Minute

// OAuthConfig holds the social login provider configurations
type OAuthConfig struct {
	Google      *oauth2.Config
	Github      *oauth2.Config
	FrontendURL string
}

// NewOAuthConfig builds provider configs from the environment
func NewOAuthConfig(env *config.EnviornmentVariable) OAuthConfig {
	return OAuthConfig{
		Google: &oauth2.Config{
			ClientID:     env.GOOGLE_CLIENT_ID,
			ClientSecret: env.GOOGLE_CLIENT_SECRET,
			RedirectURL:  env.GOOGLE_REDIRECT_URL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		Github: &oauth2.Config{
			ClientID:     env.GITHUB_CLIENT_ID,
			ClientSecret: env.GITHUB_CLIENT_SECRET,
			RedirectURL:  env.GITHUB_REDIRECT_URL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
		FrontendURL: env.FRONTEND_URL,
	}
}

// oauthProfile is the provider-agnostic identity we extract
type oauthProfile struct {
	Email     string
	FirstName string
	LastName  string
	Image     string
}

func (h *AuthHandler) beginOAuth(c *fiber.Ctx, cfg *oauth2.Config) error {
	// State tokens live in redis, so social login is off while it is down.
	if h.redisCache == nil {
		return response.ServiceUnavailable(c, "Social login is temporarily unavailable")
	}

	state := uuid.New().String()
	if err := h.redisCache.Set(c.Context(), "oauth:state:"+state, "1", oauthStateTTL); err != nil {
		return response.InternalServerError(c, "Failed to start login")
	}
	return c.Redirect(cfg.AuthCodeURL(state), fiber.StatusTemporaryRedirect)
}

// consumeState validates and burns the one-shot state parameter
func (h *AuthHandler) consumeState(c *fiber.Ctx, state string) bool {
	if h.redisCache == nil || state == "" {
		return false
	}
	_, err := h.redisCache.GetDel(c.Context(), "oauth:state:"+state)
	return err == nil
}

// finishOAuth upserts the social account and redirects to the frontend
// with a fresh token pair.
func (h *AuthHandler) finishOAuth(c *fiber.Ctx, profile *oauthProfile, method string) error {
	if profile.Email == "" {
		return response.BadRequest(c, "Provider account has no email address")
	}

	var user model.User
	err := h.db.Where("email = ?", profile.Email).First(&user).Error
	if err != nil {
		// Social accounts are active immediately; the provider already
		// verified the email.
		user = model.User{
			Email:     profile.Email,
			FirstName: profile.FirstName,
			LastName:  profile.LastName,
			Image:     profile.Image,
			Method:    method,
			Role:      model.RoleStudent,
			IsActive:  true,
		}
		if err := h.db.Create(&user).Error; err != nil {
			return response.InternalServerError(c, "Failed to create account")
		}
	} else if !user.IsActive {
		if err := h.db.Model(&user).Update("is_active", true).Error; err != nil {
			return response.InternalServerError(c, "Failed to activate account")
		}
		user.IsActive = true
	}

	tokens, err := h.issueTokens(&user)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate tokens")
	}

	redirect := fmt.Sprintf("%s/auth/callback?access_token=%s&refresh_token=%s",
		h.oauth.FrontendURL, tokens.AccessToken, tokens.RefreshToken)
	return c.Redirect(redirect, fiber.StatusTemporaryRedirect)
}

// GoogleLogin redirects to Google's consent screen
func (h *AuthHandler) GoogleLogin(c *fiber.Ctx) error {
	return h.beginOAuth(c, h.oauth.Google)
}

// GoogleCallback handles the Google OAuth redirect
func (h *AuthHandler) GoogleCallback(c *fiber.Ctx) error {
	if !h.consumeState(c, c.Query("state")) {
		return response.BadRequest(c, "Invalid OAuth state")
	}

	token, err := h.oauth.Google.Exchange(c.Context(), c.Query("code"))
	if err != nil {
		return response.Unauthorized(c, "OAuth code exchange failed")
	}

	profile, err := fetchGoogleProfile(c.Context(), h.oauth.Google, token)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch Google profile")
	}

	return h.finishOAuth(c, profile, model.AuthMethodGoogle)
}

// GithubLogin redirects to GitHub's consent screen
func (h *AuthHandler) GithubLogin(c *fiber.Ctx) error {
	return h.beginOAuth(c, h.oauth.Github)
}

// GithubCallback handles the GitHub OAuth redirect
func (h *AuthHandler) GithubCallback(c *fiber.Ctx) error {
	if !h.consumeState(c, c.Query("state")) {
		return response.BadRequest(c, "Invalid OAuth state")
	}

	token, err := h.oauth.Github.Exchange(c.Context(), c.Query("code"))
	if err != nil {
		return response.Unauthorized(c, "OAuth code exchange failed")
	}

	profile, err := fetchGithubProfile(c.Context(), h.oauth.Github, token)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch GitHub profile")
	}

	return h.finishOAuth(c, profile, model.AuthMethodGithub)
}

func getJSON(client *http.Client, url string, dest interface{}) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("provider returned %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, dest)
}

func fetchGoogleProfile(ctx context.Context, cfg *oauth2.Config, token *oauth2.Token) (*oauthProfile, error) {
	var info struct {
		Email      string `json:"email"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
		Picture    string `json:"picture"`
	}
	if err := getJSON(cfg.Client(ctx, token), "https://www.googleapis.com/oauth2/v2/userinfo", &info); err != nil {
		return nil, err
	}

	return &oauthProfile{
		Email:     info.Email,
		FirstName: info.GivenName,
		LastName:  info.FamilyName,
		Image:     info.Picture,
	}, nil
}

func fetchGithubProfile(ctx context.Context, cfg *oauth2.Config, token *oauth2.Token) (*oauthProfile, error) {
	client := cfg.Client(ctx, token)

	var info struct {
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := getJSON(client, "https://api.github.com/user", &info); err != nil {
		return nil, err
	}

	email := info.Email
	if email == "" {
		// GitHub hides the email on most profiles; the scoped endpoint
		// lists the verified addresses.
		var emails []struct {
			Email    string `json:"email"`
			Primary  bool   `json:"primary"`
			Verified bool   `json:"verified"`
		}
		if err := getJSON(client, "https://api.github.com/user/emails", &emails); err == nil {
			for _, e := range emails {
				if e.Primary && e.Verified {
					email = e.Email
					break
				}
			}
		}
	}

	first, last := splitName(info.Name, info.Login)
	return &oauthProfile{
		Email:     email,
		FirstName: first,
		LastName:  last,
		Image:     info.AvatarURL,
	}, nil
}

func splitName(full, fallback string) (string, string) {
	full = strings.TrimSpace(full)
	if full == "" {
		return fallback, ""
	}
	parts := strings.SplitN(full, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}
