package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"

	"github.com/engsiam/phone-email-auth/internal/core/domain"
	"github.com/engsiam/phone-email-auth/internal/infra/security"
	"github.com/engsiam/phone-email-auth/internal/repository"
	"github.com/engsiam/phone-email-auth/internal/usecase"
)

type memoryAccountRepository struct {
	mu       sync.Mutex
	accounts map[string]domain.Account
}

func newMemoryAccountRepository() *memoryAccountRepository {
	return &memoryAccountRepository{accounts: make(map[string]domain.Account)}
}

func (m *memoryAccountRepository) Create(_ context.Context, account domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *memoryAccountRepository) GetByID(_ context.Context, id string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &account, nil
}

func (m *memoryAccountRepository) GetByPhone(_ context.Context, phone string) (*domain.Account, error) {
	return m.find(func(a domain.Account) bool { return a.Phone == phone })
}

func (m *memoryAccountRepository) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	return m.find(func(a domain.Account) bool { return a.Email == email })
}

func (m *memoryAccountRepository) GetVerifiedByPhone(_ context.Context, phone string) (*domain.Account, error) {
	return m.find(func(a domain.Account) bool { return a.Phone == phone && a.PhoneVerified })
}

func (m *memoryAccountRepository) GetVerifiedByEmail(_ context.Context, email string) (*domain.Account, error) {
	return m.find(func(a domain.Account) bool { return a.Email == email && a.EmailVerified })
}

func (m *memoryAccountRepository) Update(_ context.Context, account domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[account.ID]; !ok {
		return repository.ErrNotFound
	}
	m.accounts[account.ID] = account
	return nil
}

func (m *memoryAccountRepository) find(match func(domain.Account) bool) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, account := range m.accounts {
		if match(account) {
			copied := account
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memoryAccountRepository) byPhone(t *testing.T, phone string) domain.Account {
	t.Helper()
	account, err := m.GetByPhone(context.Background(), phone)
	if err != nil {
		t.Fatalf("account %s not found in repository", phone)
	}
	return *account
}

type discardNotifier struct{}

func (discardNotifier) SendSMS(context.Context, string, string) error { return nil }

func (discardNotifier) SendEmail(context.Context, string, string) error { return nil }

func newTestEngine(t *testing.T, repo *memoryAccountRepository) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	issuer, err := security.NewTokenIssuer("test-signing-secret", "auth-test")
	if err != nil {
		t.Fatalf("NewTokenIssuer returned error: %v", err)
	}

	log := zaptest.NewLogger(t)
	notifier := discardNotifier{}

	return Register(Dependencies{
		Logger: log,
		Services: ServiceSet{
			Auth:         usecase.NewAuthService(nil, repo, issuer),
			Registration: usecase.NewRegistrationService(nil, repo, notifier, issuer, nil, log),
			Passwords:    usecase.NewPasswordService(nil, repo, notifier, nil, log),
			Accounts:     usecase.NewAccountService(repo),
		},
	})
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	engine := newTestEngine(t, newMemoryAccountRepository())

	rec := doJSON(t, engine, http.MethodGet, "/healthz", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRegistrationVerificationLoginFlow(t *testing.T) {
	repo := newMemoryAccountRepository()
	engine := newTestEngine(t, repo)

	const (
		phone    = "+15550100"
		email    = "jane@example.com"
		password = "Sup3r!SecurePass#7890"
	)

	rec := doJSON(t, engine, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"full_name": "Jane Roe",
		"phone":     phone,
		"email":     email,
		"password":  password,
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// Login before phone verification must be rejected.
	rec = doJSON(t, engine, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"phone": phone, "password": password,
	}, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("pre-verification login: expected 403, got %d: %s", rec.Code, rec.Body.String())
	}

	stored := repo.byPhone(t, phone)
	if stored.PhoneOTP == nil {
		t.Fatal("registration did not store a phone challenge")
	}

	rec = doJSON(t, engine, http.MethodPost, "/api/v1/auth/verify-phone", map[string]any{
		"phone": phone, "otp": *stored.PhoneOTP,
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("verify-phone: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	stored = repo.byPhone(t, phone)
	if stored.EmailVerificationToken == nil {
		t.Fatal("registration did not store an email challenge")
	}

	rec = doJSON(t, engine, http.MethodGet, "/api/v1/auth/verify-email/"+*stored.EmailVerificationToken, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("verify-email: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, engine, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"phone": phone, "password": password,
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var login struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &login); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if login.AccessToken == "" || login.TokenType != "Bearer" {
		t.Fatalf("unexpected login response: %s", rec.Body.String())
	}

	authHeader := map[string]string{"Authorization": fmt.Sprintf("Bearer %s", login.AccessToken)}

	rec = doJSON(t, engine, http.MethodGet, "/api/v1/account/me", nil, authHeader)
	if rec.Code != http.StatusOK {
		t.Fatalf("profile: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var profile struct {
		Phone         string `json:"phone"`
		PhoneVerified bool   `json:"phone_verified"`
		EmailVerified bool   `json:"email_verified"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &profile); err != nil {
		t.Fatalf("decode profile response: %v", err)
	}
	if profile.Phone != phone || !profile.PhoneVerified || !profile.EmailVerified {
		t.Fatalf("unexpected profile: %s", rec.Body.String())
	}
}

func TestPasswordResetFlow(t *testing.T) {
	repo := newMemoryAccountRepository()
	engine := newTestEngine(t, repo)

	const (
		phone       = "+15550100"
		password    = "Sup3r!SecurePass#7890"
		newPassword = "An0ther!Secure#Pass42"
	)

	rec := doJSON(t, engine, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"full_name": "Jane Roe",
		"phone":     phone,
		"email":     "jane@example.com",
		"password":  password,
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	stored := repo.byPhone(t, phone)
	rec = doJSON(t, engine, http.MethodPost, "/api/v1/auth/verify-phone", map[string]any{
		"phone": phone, "otp": *stored.PhoneOTP,
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("verify-phone: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, engine, http.MethodPost, "/api/v1/password/forgot", map[string]string{"phone": phone}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("forgot: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	stored = repo.byPhone(t, phone)
	if stored.PhoneOTP == nil {
		t.Fatal("forgot did not store a reset challenge")
	}

	rec = doJSON(t, engine, http.MethodPost, "/api/v1/password/reset", map[string]string{
		"phone": phone, "otp": *stored.PhoneOTP, "new_password": newPassword,
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("reset: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// Old password must no longer work; the new one must.
	rec = doJSON(t, engine, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"phone": phone, "password": password,
	}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("old password login: expected 401, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, engine, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"phone": phone, "password": newPassword,
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("new password login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	engine := newTestEngine(t, newMemoryAccountRepository())

	rec := doJSON(t, engine, http.MethodGet, "/api/v1/account/me", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, engine, http.MethodPost, "/api/v1/password/change", map[string]string{
		"old_password": "x", "new_password": "y",
	}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, engine, http.MethodGet, "/api/v1/account/me", nil, map[string]string{
		"Authorization": "Bearer not-a-token",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for invalid token, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRegisterConflictOnVerifiedPhone(t *testing.T) {
	repo := newMemoryAccountRepository()
	engine := newTestEngine(t, repo)

	seed := domain.Account{
		ID:            "acc-existing",
		FullName:      "First Holder",
		Phone:         "+15550100",
		PhoneVerified: true,
		Email:         "holder@example.com",
	}
	if err := repo.Create(context.Background(), seed); err != nil {
		t.Fatalf("seed account: %v", err)
	}

	rec := doJSON(t, engine, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"full_name": "Jane Roe",
		"phone":     "+15550100",
		"email":     "jane@example.com",
		"password":  "Sup3r!SecurePass#7890",
	}, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}
