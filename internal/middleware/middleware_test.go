package middleware

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var secret = []byte("test-secret")

func sign(t *testing.T, method jwt.SigningMethod, key any, claims Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func adminClaims(role string, exp time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "data-job",
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Role: role,
	}
}

func newAuthApp() *fiber.App {
	app := fiber.New()
	app.Get("/admin", Auth(secret), RequireRole("admin"), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals(LocalSubject).(string))
	})
	return app
}

func call(t *testing.T, app *fiber.App, header string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("GET", "/admin", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestAuthAcceptsAdmin(t *testing.T) {
	tok := sign(t, jwt.SigningMethodHS256, secret, adminClaims("admin", time.Now().Add(time.Hour)))

	status, body := call(t, newAuthApp(), "Bearer "+tok)
	if status != fiber.StatusOK || body != "data-job" {
		t.Fatalf("expected 200 data-job, got %d %s", status, body)
	}
}

func TestAuthRejects(t *testing.T) {
	app := newAuthApp()
	future := time.Now().Add(time.Hour)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", fiber.StatusUnauthorized},
		{"not bearer", "Basic abc", fiber.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", fiber.StatusUnauthorized},
		{"wrong secret", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte("other"), adminClaims("admin", future)), fiber.StatusUnauthorized},
		{"wrong algorithm", "Bearer " + sign(t, jwt.SigningMethodHS512, secret, adminClaims("admin", future)), fiber.StatusUnauthorized},
		{"expired", "Bearer " + sign(t, jwt.SigningMethodHS256, secret, adminClaims("admin", time.Now().Add(-time.Hour))), fiber.StatusUnauthorized},
		{"no subject", "Bearer " + sign(t, jwt.SigningMethodHS256, secret, Claims{Role: "admin"}), fiber.StatusUnauthorized},
		{"no role", "Bearer " + sign(t, jwt.SigningMethodHS256, secret, adminClaims("", future)), fiber.StatusForbidden},
		{"wrong role", "Bearer " + sign(t, jwt.SigningMethodHS256, secret, adminClaims("viewer", future)), fiber.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := call(t, app, tc.header)
			if status != tc.status {
				t.Fatalf("expected %d, got %d (%s)", tc.status, status, body)
			}
		})
	}
}

func TestRequestLogSetsID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestLog(zap.NewNop()))
	app.Get("/ok", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals(LocalRequestID).(string))
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusInternalServerError, "boom")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/ok", nil))
	if err != nil {
		t.Fatal(err)
	}
	id := resp.Header.Get(HeaderRequestID)
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("expected a generated UUID, got %q", id)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != id {
		t.Fatalf("locals and header disagree: %s vs %s", body, id)
	}

	given := uuid.NewString()
	req := httptest.NewRequest("GET", "/ok", nil)
	req.Header.Set(HeaderRequestID, given)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Header.Get(HeaderRequestID) != given {
		t.Fatal("expected the caller's request id to be reused")
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/boom", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
}
