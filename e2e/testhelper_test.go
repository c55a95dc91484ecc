package e2e

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"

	"github.com/aurify/api/internal/client"
	"github.com/aurify/api/internal/config"
	"github.com/aurify/api/internal/handler"
	"github.com/aurify/api/internal/middleware"
	"github.com/aurify/api/internal/service"
	"github.com/aurify/api/internal/store"
)

const testJWTSecret = "test-secret-for-e2e"

// testApp holds all components needed for testing
type testApp struct {
	app *fiber.App
}

// setupApp creates a Fiber app identical to main.go but with an unconfigured
// model client, so the generation service serves its mock response.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	// Redis (localhost — must be running)
	redisClient := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // use DB 15 for tests to avoid collision
	})
	t.Cleanup(func() { redisClient.Close() })

	validate := validator.New()

	// Unconfigured clients: no API keys, so nothing leaves the process
	openaiClient := client.NewOpenAIClient(&config.OpenAIConfig{})
	pushClient := client.NewPushClient(&config.PushConfig{})
	mailClient := client.NewMailClient(&config.AlertConfig{})

	themeStore := store.NewRedisThemeStore(redisClient)

	playlistService := service.NewPlaylistService(openaiClient,
		&config.PlaylistConfig{SongCount: 20, SchemaVersion: "v2"},
		&config.OpenAIConfig{})
	themeService := service.NewThemeService(themeStore, pushClient, mailClient,
		&config.PushConfig{Topic: "daily_theme"},
		&config.AlertConfig{LowWaterMark: 10})

	playlistHandler := handler.NewPlaylistHandler(playlistService, validate)
	themeHandler := handler.NewThemeHandler(themeService)

	authMiddleware := middleware.NewAuthMiddleware(testJWTSecret)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024,
	})

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"timestamp": 1234567890})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"services": fiber.Map{
				"openai": false,
				"push":   false,
				"mail":   false,
				"redis":  true,
				"auth":   true,
			},
		})
	})

	// Use very high rate limits so tests don't get blocked
	api := app.Group("/api")
	api.Post("/playlist/generate", rateLimiter.GenerateLimit(10000), playlistHandler.Generate)

	attested := api.Group("/app", authMiddleware.Authenticate())
	attested.Post("/playlist/generate", rateLimiter.GenerateLimit(10000), playlistHandler.Generate)

	jobs := app.Group("/jobs", authMiddleware.Authenticate())
	jobs.Post("/rotate-theme", themeHandler.Rotate)

	return &testApp{app: app}
}

// generateToken creates an HMAC JWT token for test requests.
func generateToken(t *testing.T) string {
	t.Helper()
	claims := middleware.AppClaims{
		UserID: "test-user-123",
		Email:  "test@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer: "aurify-api",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}
	return signed
}

// doRequest is a helper to perform HTTP requests against the test app.
func doRequest(app *fiber.App, method, path string, body string, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, path, bodyReader)
	if err != nil {
		return nil, err
	}

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return app.Test(req, -1)
}

// doAuthRequest performs an authenticated request.
func doAuthRequest(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, error) {
	t.Helper()
	token := generateToken(t)
	return doRequest(app, method, path, body, map[string]string{
		"Authorization": "Bearer " + token,
	})
}

// readBody reads and returns the response body as a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(b)
}

// parseJSON parses response body into a map.
func parseJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body := readBody(t, resp)
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, body)
	}
	return result
}

// assertStatus checks the HTTP status code.
func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}
