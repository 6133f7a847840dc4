package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/arta-bank/arta_bank/internal/config"
	"github.com/arta-bank/arta_bank/internal/logging"
)

func testApp(t *testing.T) *fiber.App {
	t.Helper()
	cfg := config.Config{
		AppName:         "ArtaBank",
		AppEnv:          "development",
		JWTSecret:       "test-secret",
		AccessTokenTTL:  10 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		LoginAttempts:   5,
	}
	app := fiber.New()
	if err := Setup(app, Deps{Cfg: cfg, Logger: logging.Discard()}); err != nil {
		t.Fatalf("setup routes: %v", err)
	}
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, payload any) (*http.Response, []byte) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	resp.Body.Close()
	return resp, raw
}

func register(t *testing.T, app *fiber.App, nationalID, name, email, phone string) string {
	t.Helper()
	resp, raw := doJSON(t, app, fiber.MethodPost, "/api/v1/register", "", fiber.Map{
		"national_id": nationalID,
		"name":        name,
		"email":       email,
		"phone":       phone,
		"password":    "secret123",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register returned %d: %s", resp.StatusCode, raw)
	}
	var out struct {
		AccountNumber string `json:"account_number"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	return out.AccountNumber
}

func login(t *testing.T, app *fiber.App, username string) (access, refresh string) {
	t.Helper()
	resp, raw := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/login", "", fiber.Map{
		"username": username,
		"password": "secret123",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login returned %d: %s", resp.StatusCode, raw)
	}
	var out struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return out.AccessToken, out.RefreshToken
}

func TestRegisterLoginAndOperate(t *testing.T) {
	app := testApp(t)

	acct := register(t, app, "3201010101010001", "apis", "apis@mail.com", "085855557777")
	other := register(t, app, "3201010101010002", "budi", "budi@mail.com", "081111111111")

	// duplicate national id is rejected
	resp, _ := doJSON(t, app, fiber.MethodPost, "/api/v1/register", "", fiber.Map{
		"national_id": "3201010101010001",
		"name":        "someone",
		"email":       "someone@mail.com",
		"phone":       "082222222222",
		"password":    "secret123",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("duplicate register returned %d", resp.StatusCode)
	}

	// mutating calls need a bearer token
	resp, _ = doJSON(t, app, fiber.MethodPost, "/api/v1/deposit", "", fiber.Map{
		"account_number": acct,
		"amount":         "100",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated deposit returned %d", resp.StatusCode)
	}

	token, refresh := login(t, app, "apis")

	resp, raw := doJSON(t, app, fiber.MethodPost, "/api/v1/deposit", token, fiber.Map{
		"account_number": acct,
		"amount":         "100",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("deposit returned %d: %s", resp.StatusCode, raw)
	}
	var balResp struct {
		Balance decimal.Decimal `json:"balance"`
	}
	if err := json.Unmarshal(raw, &balResp); err != nil {
		t.Fatalf("decode deposit response: %v", err)
	}
	if !balResp.Balance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected balance 100, got %s", balResp.Balance)
	}

	// overdraft rejected
	resp, _ = doJSON(t, app, fiber.MethodPost, "/api/v1/withdraw", token, fiber.Map{
		"account_number": acct,
		"amount":         "150",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("overdraft withdraw returned %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, fiber.MethodPost, "/api/v1/withdraw", token, fiber.Map{
		"account_number": acct,
		"amount":         "40",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("withdraw returned %d", resp.StatusCode)
	}

	resp, raw = doJSON(t, app, fiber.MethodPost, "/api/v1/transfer", token, fiber.Map{
		"from_account_number": acct,
		"to_account_number":   other,
		"amount":              "60",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("transfer returned %d: %s", resp.StatusCode, raw)
	}
	var transferResp struct {
		SenderBalance   decimal.Decimal `json:"sender_balance"`
		ReceiverBalance decimal.Decimal `json:"receiver_balance"`
	}
	if err := json.Unmarshal(raw, &transferResp); err != nil {
		t.Fatalf("decode transfer response: %v", err)
	}
	if !transferResp.SenderBalance.IsZero() || !transferResp.ReceiverBalance.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("unexpected transfer balances: %s / %s", transferResp.SenderBalance, transferResp.ReceiverBalance)
	}

	resp, raw = doJSON(t, app, fiber.MethodGet, fmt.Sprintf("/api/v1/balance?account_number=%s", other), token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("balance returned %d", resp.StatusCode)
	}
	if err := json.Unmarshal(raw, &balResp); err != nil {
		t.Fatalf("decode balance response: %v", err)
	}
	if !balResp.Balance.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("expected receiver balance 60, got %s", balResp.Balance)
	}

	resp, raw = doJSON(t, app, fiber.MethodGet, fmt.Sprintf("/api/v1/movements?account_number=%s", acct), token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("movements returned %d", resp.StatusCode)
	}
	var movResp struct {
		Movements []struct {
			Kind        string          `json:"kind"`
			Balance     decimal.Decimal `json:"balance"`
			Description string          `json:"description"`
		} `json:"movements"`
	}
	if err := json.Unmarshal(raw, &movResp); err != nil {
		t.Fatalf("decode movements response: %v", err)
	}
	if len(movResp.Movements) != 3 {
		t.Fatalf("expected 3 movements, got %d", len(movResp.Movements))
	}
	last := movResp.Movements[2]
	if last.Kind != "debit" || !last.Balance.IsZero() {
		t.Fatalf("unexpected final movement %+v", last)
	}

	// refresh produces a usable access token
	resp, raw = doJSON(t, app, fiber.MethodPost, "/api/v1/auth/refresh", "", fiber.Map{"refresh_token": refresh})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refresh returned %d: %s", resp.StatusCode, raw)
	}
	var refreshResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(raw, &refreshResp); err != nil {
		t.Fatalf("decode refresh response: %v", err)
	}
	resp, _ = doJSON(t, app, fiber.MethodGet, fmt.Sprintf("/api/v1/balance?account_number=%s", acct), refreshResp.AccessToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("balance with refreshed token returned %d", resp.StatusCode)
	}
}

func TestLoginFailures(t *testing.T) {
	app := testApp(t)
	register(t, app, "3201010101010001", "apis", "apis@mail.com", "085855557777")

	resp, _ := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/login", "", fiber.Map{
		"username": "apis",
		"password": "wrong",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong password returned %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, fiber.MethodPost, "/api/v1/auth/login", "", fiber.Map{
		"username": "nobody",
		"password": "secret123",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unknown user returned %d", resp.StatusCode)
	}
}

func TestBalanceUnknownAccountIs404(t *testing.T) {
	app := testApp(t)
	register(t, app, "3201010101010001", "apis", "apis@mail.com", "085855557777")
	token, _ := login(t, app, "apis")

	resp, _ := doJSON(t, app, fiber.MethodGet, "/api/v1/balance?account_number=11300000000", token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown account balance returned %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, fiber.MethodGet, "/api/v1/movements?account_number=11300000000", token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown account movements returned %d", resp.StatusCode)
	}
}
