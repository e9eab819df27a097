package http

import (
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/tutorial-service/internal/api/http/handlers"
	"github.com/spec-kit/tutorial-service/internal/auth"
	"github.com/spec-kit/tutorial-service/internal/config"
	"github.com/spec-kit/tutorial-service/internal/events"
	"github.com/spec-kit/tutorial-service/internal/observability"
	"github.com/spec-kit/tutorial-service/internal/repository"
	"github.com/spec-kit/tutorial-service/internal/service"
	"github.com/spec-kit/tutorial-service/internal/validation"
)

type tutorialFixture struct {
	app    *fiber.App
	tokens *auth.TokenManager
}

func newTutorialFixture(t *testing.T) *tutorialFixture {
	t.Helper()
	ctx := context.Background()

	validator, err := validation.New()
	require.NoError(t, err)

	catalog := service.NewCatalogService(repository.NewMemoryCatalogRepository())
	require.NoError(t, catalog.Seed(ctx))

	accounts := repository.NewMemoryAccountRepository(repository.SeedAccounts()...)
	tokens := auth.NewTokenManager(config.DefaultJWTSecret, 30*time.Minute)
	authService := service.NewAuthService(accounts, tokens, events.NewInMemoryDispatcher(), bcrypt.MinCost, zap.NewNop())

	docs, err := handlers.NewDocsHandler("tutorial-service")
	require.NoError(t, err)
	pages, err := handlers.NewPagesHandler()
	require.NoError(t, err)

	metrics := observability.NewMetrics()
	app := NewApp("tutorial-service")
	cors := config.CORSConfig{AllowOrigins: []string{"http://localhost:8080"}, AllowCredentials: true}
	RegisterMiddlewares(app, zap.NewNop(), metrics, MiddlewareConfig{Timeout: 5 * time.Second, CORS: &cors})
	RegisterTutorialRoutes(app, TutorialRoutes{
		Health:    handlers.NewHealthHandler("tutorial-service", "test", nil, metrics),
		Users:     handlers.NewUsersHandler(authService, validator),
		Items:     handlers.NewItemsHandler(catalog, validator),
		Docs:      docs,
		Pages:     pages,
		Gate:      auth.NewGate(tokens, accounts),
		StaticDir: "../../../static",
	})
	return &tutorialFixture{app: app, tokens: tokens}
}

func (f *tutorialFixture) do(t *testing.T, method, target string, body io.Reader, headers map[string]string) (int, string, map[string][]string) {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	req.Header.Set(fiber.HeaderUserAgent, "")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(raw), resp.Header
}

func (f *tutorialFixture) login(t *testing.T, username, password, scope string) (int, string, map[string][]string) {
	form := url.Values{"username": {username}, "password": {password}}
	if scope != "" {
		form.Set("scope", scope)
	}
	return f.do(t, fiber.MethodPost, "/token", strings.NewReader(form.Encode()),
		map[string]string{fiber.HeaderContentType: fiber.MIMEApplicationForm})
}

func errorMessage(t *testing.T, body string) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &payload))
	return payload.Error.Message
}

func TestRootAndProcessTime(t *testing.T) {
	f := newTutorialFixture(t)
	status, body, headers := f.do(t, fiber.MethodGet, "/", nil, nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"Hello":"World"}`, body)
	assert.NotEmpty(t, headers[observability.HeaderProcessTime])
}

func TestTokenEndpoint(t *testing.T) {
	f := newTutorialFixture(t)

	t.Run("valid credentials", func(t *testing.T) {
		status, body, _ := f.login(t, "john_doe", "secret", "me items admin")
		require.Equal(t, fiber.StatusOK, status)

		var tok struct {
			AccessToken string `json:"access_token"`
			TokenType   string `json:"token_type"`
		}
		require.NoError(t, json.Unmarshal([]byte(body), &tok))
		assert.Equal(t, "bearer", tok.TokenType)

		claims, err := f.tokens.ParseToken(tok.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "john_doe", claims.Subject)
		assert.Equal(t, []string{"me", "items"}, claims.Scopes)
		assert.Equal(t, 30*time.Minute, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
	})

	for _, tc := range []struct{ name, username, password string }{
		{"wrong password", "john_doe", "wrong"},
		{"unknown user", "nobody", "secret"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			status, body, headers := f.login(t, tc.username, tc.password, "")
			assert.Equal(t, fiber.StatusUnauthorized, status)
			assert.Equal(t, []string{"Bearer"}, headers[textproto.CanonicalMIMEHeaderKey(fiber.HeaderWWWAuthenticate)])
			assert.Equal(t, "Incorrect username or password", errorMessage(t, body))
		})
	}

	t.Run("missing password", func(t *testing.T) {
		status, _, _ := f.login(t, "john_doe", "", "")
		assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	})
}

func TestProtectedRoutes(t *testing.T) {
	f := newTutorialFixture(t)

	mint := func(sub string, scopes ...string) string {
		tok, err := f.tokens.GenerateToken(sub, scopes)
		require.NoError(t, err)
		return tok.Value
	}
	past := auth.NewTokenManager(config.DefaultJWTSecret, time.Minute).WithClock(func() time.Time {
		return time.Now().Add(-2 * time.Minute)
	})
	expired, err := past.GenerateToken("john_doe", []string{"me"})
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "john_doe", "scopes": []string{"me"}, "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name          string
		path          string
		token         string
		wantStatus    int
		wantChallenge string
		wantBody      string
	}{
		{"me", "/users/me", mint("john_doe", "me"), fiber.StatusOK, "",
			`{"username":"john_doe","email":"johndoe@example.com","full_name":"John Doe","disabled":false}`},
		{"me without token", "/users/me", "", fiber.StatusUnauthorized, `Bearer scope="me"`, ""},
		{"me with expired token", "/users/me", expired.Value, fiber.StatusUnauthorized, `Bearer scope="me"`, ""},
		{"me with unsigned token", "/users/me", unsigned, fiber.StatusUnauthorized, `Bearer scope="me"`, ""},
		{"me when disabled", "/users/me", mint("alice", "me"), fiber.StatusBadRequest, "", ""},
		{"own items", "/users/me/items/", mint("john_doe", "me", "items"), fiber.StatusOK, "",
			`[{"item_id":"Foo","owner":"john_doe"}]`},
		{"own items lacking scope", "/users/me/items/", mint("john_doe", "me"), fiber.StatusUnauthorized, `Bearer scope="items"`, ""},
		{"status", "/status/", mint("john_doe"), fiber.StatusOK, "", `{"status":"ok"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.token != "" {
				headers[fiber.HeaderAuthorization] = "Bearer " + tt.token
			}
			status, body, respHeaders := f.do(t, fiber.MethodGet, tt.path, nil, headers)
			assert.Equal(t, tt.wantStatus, status)
			if tt.wantChallenge != "" {
				assert.Equal(t, []string{tt.wantChallenge}, respHeaders[textproto.CanonicalMIMEHeaderKey(fiber.HeaderWWWAuthenticate)])
			}
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, body)
			}
		})
	}
}

func TestUserRoutes(t *testing.T) {
	f := newTutorialFixture(t)

	status, body, _ := f.do(t, fiber.MethodGet, "/users/42", nil, nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"user_id":"42"}`, body)

	payload := `{"username":"bob","email":"bob@example.com","full_name":"Bob","password":"hunter2"}`
	status, body, _ = f.do(t, fiber.MethodPost, "/user/", strings.NewReader(payload),
		map[string]string{fiber.HeaderContentType: fiber.MIMEApplicationJSON})
	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"username":"bob","email":"bob@example.com","full_name":"Bob","disabled":null}`, body)
	assert.NotContains(t, body, "password")

	status, _, _ = f.do(t, fiber.MethodPost, "/user/", strings.NewReader(`{"username":"bob"}`),
		map[string]string{fiber.HeaderContentType: fiber.MIMEApplicationJSON})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
}

func TestItemRoutes(t *testing.T) {
	f := newTutorialFixture(t)
	jsonHeader := map[string]string{fiber.HeaderContentType: fiber.MIMEApplicationJSON}

	t.Run("read item with bounds", func(t *testing.T) {
		status, body, _ := f.do(t, fiber.MethodGet, "/items/5?limit=3", nil, nil)
		assert.Equal(t, fiber.StatusOK, status)
		assert.JSONEq(t, `{"item_id":5,"limit":3}`, body)

		status, body, _ = f.do(t, fiber.MethodGet, "/items/1000", nil, nil)
		assert.Equal(t, fiber.StatusOK, status)
		assert.JSONEq(t, `{"item_id":1000,"limit":null}`, body)

		for _, path := range []string{"/items/1001", "/items/-1", "/items/abc", "/items/5?limit=x"} {
			status, _, _ := f.do(t, fiber.MethodGet, path, nil, nil)
			assert.Equal(t, fiber.StatusUnprocessableEntity, status, path)
		}
	})

	t.Run("list items", func(t *testing.T) {
		status, body, _ := f.do(t, fiber.MethodGet, "/items/", nil, map[string]string{fiber.HeaderUserAgent: "tester/1.0"})
		assert.Equal(t, fiber.StatusOK, status)
		assert.JSONEq(t, `{"items":[{"item_id":"Foo"},{"item_id":"Bar"}],"User-Agent":"tester/1.0"}`, body)

		status, body, _ = f.do(t, fiber.MethodGet, "/items/?q=fixed_query", nil, map[string]string{fiber.HeaderUserAgent: "tester/1.0"})
		assert.Equal(t, fiber.StatusOK, status)
		assert.JSONEq(t, `{"items":[{"item_id":"Foo"},{"item_id":"Bar"}],"User-Agent":"tester/1.0","q":"fixed_query"}`, body)

		for _, q := range []string{"ab", "other_query", strings.Repeat("x", 51)} {
			status, _, _ := f.do(t, fiber.MethodGet, "/items/?q="+q, nil, nil)
			assert.Equal(t, fiber.StatusUnprocessableEntity, status, q)
		}
	})

	t.Run("create item", func(t *testing.T) {
		payload := `{"name":"Foo","price":35.4,"tags":["rock","metal","rock"]}`
		status, body, _ := f.do(t, fiber.MethodPost, "/items/", strings.NewReader(payload), jsonHeader)
		assert.Equal(t, fiber.StatusCreated, status)
		assert.JSONEq(t, `{"name":"Foo","description":null,"price":35.4,"tax":null,"tags":["rock","metal"],"images":null}`, body)

		status, _, _ = f.do(t, fiber.MethodPost, "/items/", strings.NewReader(`{"name":"Foo"}`), jsonHeader)
		assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	})

	t.Run("put then read through header route", func(t *testing.T) {
		status, body, _ := f.do(t, fiber.MethodGet, "/items-header/foo", nil, nil)
		assert.Equal(t, fiber.StatusOK, status)
		assert.JSONEq(t, `{"item":"The Foo Wrestlers"}`, body)

		payload := `{"name":"Bar","price":2,"images":[{"url":"https://example.com/bar.png","name":"bar"}]}`
		status, _, _ = f.do(t, fiber.MethodPut, "/items/bar", strings.NewReader(payload), jsonHeader)
		assert.Equal(t, fiber.StatusOK, status)

		status, body, _ = f.do(t, fiber.MethodGet, "/items-header/bar", nil, nil)
		assert.Equal(t, fiber.StatusOK, status)
		assert.JSONEq(t, `{"item":{"name":"Bar","description":null,"price":2,"tax":null,"tags":[],"images":[{"url":"https://example.com/bar.png","name":"bar"}]}}`, body)

		status, body, headers := f.do(t, fiber.MethodGet, "/items-header/missing", nil, nil)
		assert.Equal(t, fiber.StatusNotFound, status)
		assert.Equal(t, []string{"There goes my error"}, headers["X-Error"])
		assert.Equal(t, "Item not found", errorMessage(t, body))
	})

	t.Run("stored keys survive later requests", func(t *testing.T) {
		keys := []string{"key000", "key001", "key002", "key003", "key004"}
		for _, key := range keys {
			payload := fmt.Sprintf(`{"name":%q,"price":1}`, key)
			status, _, _ := f.do(t, fiber.MethodPut, "/items/"+key, strings.NewReader(payload), jsonHeader)
			require.Equal(t, fiber.StatusOK, status, key)

			status, _, _ = f.do(t, fiber.MethodGet, "/items-header/zzzzzzzzzzzzzz", nil, nil)
			require.Equal(t, fiber.StatusNotFound, status)
		}

		for _, key := range keys {
			status, body, _ := f.do(t, fiber.MethodGet, "/items-header/"+key, nil, nil)
			require.Equal(t, fiber.StatusOK, status, key)
			assert.JSONEq(t, fmt.Sprintf(`{"item":{"name":%q,"description":null,"price":1,"tax":null,"tags":[],"images":null}}`, key), body)
		}
	})

	t.Run("models and elements", func(t *testing.T) {
		status, body, _ := f.do(t, fiber.MethodGet, "/model/lenet", nil, nil)
		assert.Equal(t, fiber.StatusOK, status)
		assert.JSONEq(t, `{"model_name":"lenet","message":"LeCNN all the images"}`, body)

		status, _, _ = f.do(t, fiber.MethodGet, "/model/vgg", nil, nil)
		assert.Equal(t, fiber.StatusUnprocessableEntity, status)

		status, body, _ = f.do(t, fiber.MethodGet, "/elements/", nil, nil)
		assert.Equal(t, fiber.StatusOK, status)
		assert.JSONEq(t, `[{"item_id":"Foo"}]`, body)
	})
}

func TestDocsPagesAndStreaming(t *testing.T) {
	f := newTutorialFixture(t)

	status, body, _ := f.do(t, fiber.MethodGet, "/openapi.json", nil, nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, json.Valid([]byte(body)))
	assert.Contains(t, body, "some_specific_id_you_define")

	status, body, _ = f.do(t, fiber.MethodGet, "/docs", nil, nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, "swagger-ui")
	assert.Contains(t, body, "/openapi.json")

	status, body, _ = f.do(t, fiber.MethodGet, "/redoc", nil, nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, "<redoc")

	status, body, headers := f.do(t, fiber.MethodGet, "/pages/items/a&b", nil, nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, "Item ID: a&amp;b")
	assert.Contains(t, headers[fiber.HeaderContentType][0], "text/html")

	status, body, _ = f.do(t, fiber.MethodGet, "/static/styles.css", nil, nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, "color: green")

	status, body, headers = f.do(t, fiber.MethodGet, "/video", nil, nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, strings.Repeat("some fake video bytes", 10), body)
	assert.Equal(t, []string{"video/mp4"}, headers[fiber.HeaderContentType])
}

func TestCORSPreflight(t *testing.T) {
	f := newTutorialFixture(t)
	status, _, headers := f.do(t, fiber.MethodOptions, "/items/", nil, map[string]string{
		fiber.HeaderOrigin:                     "http://localhost:8080",
		fiber.HeaderAccessControlRequestMethod: fiber.MethodGet,
	})
	assert.Equal(t, fiber.StatusNoContent, status)
	assert.Equal(t, []string{"http://localhost:8080"}, headers[fiber.HeaderAccessControlAllowOrigin])
	assert.Equal(t, []string{"true"}, headers[fiber.HeaderAccessControlAllowCredentials])
}

func TestUnknownRouteRendersError(t *testing.T) {
	f := newTutorialFixture(t)
	status, body, _ := f.do(t, fiber.MethodGet, "/nope", nil, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Contains(t, body, `"code":"NOT_FOUND"`)
}
