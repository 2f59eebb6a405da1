package controller

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"atmcore/internal/middlewareinternal"
	"atmcore/internal/repository"
	"atmcore/internal/service"
	"atmcore/internal/util/logger"
)

// setupServer wires the controllers against the in-memory store, mirroring
// the production router.
func setupServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger.Log = zap.NewNop()

	store := repository.NewMemoryStore()
	authService := service.NewAuthService(store, "test-secret", time.Minute)
	ledgerService := service.NewLedgerService(store, store, store, zap.NewNop())

	authController := NewAuthController(authService, time.Minute, zap.NewNop())
	balanceController := NewBalanceController(ledgerService)
	transactionController := NewTransactionController(ledgerService, zap.NewNop())

	r := chi.NewRouter()
	r.Post("/api/user/register", authController.Register)
	r.Post("/api/user/login", authController.Login)
	r.Group(func(gr chi.Router) {
		gr.Use(middlewareinternal.SessionAuthMiddleware(authService))
		gr.Post("/api/user/logout", authController.Logout)
		gr.Get("/api/user/balance", balanceController.GetBalance)
		gr.Post("/api/user/deposit", transactionController.Deposit)
		gr.Post("/api/user/withdraw", transactionController.Withdraw)
		gr.Get("/api/user/transactions", transactionController.GetTransactions)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func doRequest(t *testing.T, method, url, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatal(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, payload
}

// register creates the account and returns the session token issued via
// the jwt cookie.
func register(t *testing.T, srv *httptest.Server, login, password string) string {
	t.Helper()

	resp, _ := doRequest(t, http.MethodPost, srv.URL+"/api/user/register", "",
		map[string]string{"login": login, "password": password})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("register status=%d want=200", resp.StatusCode)
	}
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "jwt" && cookie.Value != "" {
			return cookie.Value
		}
	}
	t.Fatal("no jwt cookie set on register")
	return ""
}

func decodeBalance(t *testing.T, payload []byte) decimal.Decimal {
	t.Helper()
	var body struct {
		Balance decimal.Decimal `json:"balance"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		t.Fatalf("failed to decode balance response %q: %v", payload, err)
	}
	return body.Balance
}

func TestRegisterAndLoginFlow(t *testing.T) {
	srv := setupServer(t)

	register(t, srv, "alice", "correct")

	resp, _ := doRequest(t, http.MethodPost, srv.URL+"/api/user/register", "",
		map[string]string{"login": "alice", "password": "other"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate register status=%d want=409", resp.StatusCode)
	}

	resp, _ = doRequest(t, http.MethodPost, srv.URL+"/api/user/login", "",
		map[string]string{"login": "alice", "password": "correct"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status=%d want=200", resp.StatusCode)
	}

	// Wrong password and unknown user must look identical on the wire.
	resp, _ = doRequest(t, http.MethodPost, srv.URL+"/api/user/login", "",
		map[string]string{"login": "alice", "password": "wrong"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong password status=%d want=401", resp.StatusCode)
	}
	resp, _ = doRequest(t, http.MethodPost, srv.URL+"/api/user/login", "",
		map[string]string{"login": "bob", "password": "anything"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unknown user status=%d want=401", resp.StatusCode)
	}

	resp, _ = doRequest(t, http.MethodPost, srv.URL+"/api/user/register", "",
		map[string]string{"login": "", "password": "pw"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty login status=%d want=400", resp.StatusCode)
	}
}

func TestLedgerEndpoints(t *testing.T) {
	srv := setupServer(t)
	token := register(t, srv, "alice", "pw")

	resp, payload := doRequest(t, http.MethodGet, srv.URL+"/api/user/balance", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("balance status=%d want=200", resp.StatusCode)
	}
	if got := decodeBalance(t, payload); !got.Equal(decimal.RequireFromString("1000.00")) {
		t.Fatalf("balance=%s want=1000.00", got)
	}

	resp, payload = doRequest(t, http.MethodPost, srv.URL+"/api/user/deposit", token,
		map[string]string{"amount": "100"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("deposit status=%d want=200", resp.StatusCode)
	}
	if got := decodeBalance(t, payload); !got.Equal(decimal.RequireFromString("1100")) {
		t.Fatalf("balance after deposit=%s want=1100", got)
	}

	resp, payload = doRequest(t, http.MethodPost, srv.URL+"/api/user/withdraw", token,
		map[string]string{"amount": "30"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("withdraw status=%d want=200", resp.StatusCode)
	}
	if got := decodeBalance(t, payload); !got.Equal(decimal.RequireFromString("1070")) {
		t.Fatalf("balance after withdraw=%s want=1070", got)
	}

	resp, _ = doRequest(t, http.MethodPost, srv.URL+"/api/user/withdraw", token,
		map[string]string{"amount": "99999"})
	if resp.StatusCode != http.StatusPaymentRequired {
		t.Fatalf("overdraft status=%d want=402", resp.StatusCode)
	}

	resp, _ = doRequest(t, http.MethodPost, srv.URL+"/api/user/deposit", token,
		map[string]string{"amount": "0"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("zero deposit status=%d want=400", resp.StatusCode)
	}

	resp, payload = doRequest(t, http.MethodGet, srv.URL+"/api/user/transactions?limit=2", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("history status=%d want=200", resp.StatusCode)
	}
	var history []struct {
		Type   string          `json:"type"`
		Amount decimal.Decimal `json:"amount"`
	}
	if err := json.Unmarshal(payload, &history); err != nil {
		t.Fatalf("failed to decode history %q: %v", payload, err)
	}
	if len(history) != 2 {
		t.Fatalf("history len=%d want=2", len(history))
	}
	if history[0].Type != "Withdraw" || !history[0].Amount.Equal(decimal.RequireFromString("30")) {
		t.Fatalf("history[0]=%+v want Withdraw(30)", history[0])
	}
	if history[1].Type != "Deposit" || !history[1].Amount.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("history[1]=%+v want Deposit(100)", history[1])
	}

	resp, _ = doRequest(t, http.MethodGet, srv.URL+"/api/user/transactions?limit=abc", token, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad limit status=%d want=400", resp.StatusCode)
	}
}

func TestHistoryEmptyIsNoContent(t *testing.T) {
	srv := setupServer(t)
	token := register(t, srv, "alice", "pw")

	resp, _ := doRequest(t, http.MethodGet, srv.URL+"/api/user/transactions", token, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("empty history status=%d want=204", resp.StatusCode)
	}
}

func TestUnauthenticatedAccess(t *testing.T) {
	srv := setupServer(t)

	resp, _ := doRequest(t, http.MethodGet, srv.URL+"/api/user/balance", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no token status=%d want=401", resp.StatusCode)
	}

	resp, _ = doRequest(t, http.MethodGet, srv.URL+"/api/user/balance", "garbage", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("garbage token status=%d want=401", resp.StatusCode)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	srv := setupServer(t)
	token := register(t, srv, "alice", "pw")

	resp, _ := doRequest(t, http.MethodPost, srv.URL+"/api/user/logout", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout status=%d want=200", resp.StatusCode)
	}

	resp, _ = doRequest(t, http.MethodGet, srv.URL+"/api/user/balance", token, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("post-logout status=%d want=401", resp.StatusCode)
	}
}
