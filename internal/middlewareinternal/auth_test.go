package middlewareinternal

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExtractToken(t *testing.T) {
	t.Run("from cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "jwt", Value: "cookie-token"})

		token, err := extractToken(r)
		if err != nil {
			t.Fatal(err)
		}
		if token != "cookie-token" {
			t.Fatalf("token=%q want=cookie-token", token)
		}
	})

	t.Run("from bearer header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer header-token")

		token, err := extractToken(r)
		if err != nil {
			t.Fatal(err)
		}
		if token != "header-token" {
			t.Fatalf("token=%q want=header-token", token)
		}
	})

	t.Run("missing", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)

		if _, err := extractToken(r); !errors.Is(err, errNoToken) {
			t.Fatalf("want errNoToken, got %v", err)
		}
	})

	t.Run("malformed header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Basic abc")

		if _, err := extractToken(r); !errors.Is(err, errNoToken) {
			t.Fatalf("want errNoToken, got %v", err)
		}
	})
}
