package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/parking-pilot/internal/api/http"
	"github.com/spec-kit/parking-pilot/internal/api/http/handlers"
	"github.com/spec-kit/parking-pilot/internal/auth"
	"github.com/spec-kit/parking-pilot/internal/config"
	"github.com/spec-kit/parking-pilot/internal/domain"
	"github.com/spec-kit/parking-pilot/internal/kvstore"
	"github.com/spec-kit/parking-pilot/internal/observability"
	"github.com/spec-kit/parking-pilot/internal/persistence"
	"github.com/spec-kit/parking-pilot/internal/security"
	"github.com/spec-kit/parking-pilot/internal/service"
	"github.com/spec-kit/parking-pilot/internal/verification"
)

// ---- in-memory collaborators ----

type memoryAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
}

func newMemoryAccountRepo() *memoryAccountRepo {
	return &memoryAccountRepo{accounts: make(map[string]*domain.Account)}
}

func (r *memoryAccountRepo) Create(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account.ID = uuid.NewString()
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	clone := *account
	r.accounts[account.ID] = &clone
	return nil
}

func (r *memoryAccountRepo) Update(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[account.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *account
	r.accounts[account.ID] = &clone
	return nil
}

func (r *memoryAccountRepo) GetByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if account, ok := r.accounts[id]; ok {
		clone := *account
		return &clone, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *memoryAccountRepo) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, account := range r.accounts {
		if account.Email == email {
			clone := *account
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memoryAccountRepo) GetByEmailOrUsername(_ context.Context, email, username string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, account := range r.accounts {
		if account.Email == email || account.Username == username {
			clone := *account
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memoryAccountRepo) GetByResetToken(_ context.Context, token string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, account := range r.accounts {
		if account.ResetToken != nil && *account.ResetToken == token {
			clone := *account
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memoryAccountRepo) SetResetToken(_ context.Context, id, token string, expiry time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return pgx.ErrNoRows
	}
	account.ResetToken = &token
	account.ResetTokenExpiry = &expiry
	return nil
}

func (r *memoryAccountRepo) ClearResetToken(_ context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return pgx.ErrNoRows
	}
	account.PasswordHash = passwordHash
	account.ResetToken = nil
	account.ResetTokenExpiry = nil
	return nil
}

type memoryVehicleRepo struct {
	mu       sync.Mutex
	vehicles map[string]*domain.Vehicle
}

func newMemoryVehicleRepo() *memoryVehicleRepo {
	return &memoryVehicleRepo{vehicles: make(map[string]*domain.Vehicle)}
}

func (r *memoryVehicleRepo) Create(_ context.Context, vehicle *domain.Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	vehicle.ID = uuid.NewString()
	vehicle.CreatedAt = time.Now()
	vehicle.UpdatedAt = vehicle.CreatedAt
	clone := *vehicle
	r.vehicles[vehicle.ID] = &clone
	return nil
}

func (r *memoryVehicleRepo) Update(_ context.Context, vehicle *domain.Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.vehicles[vehicle.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *vehicle
	r.vehicles[vehicle.ID] = &clone
	return nil
}

func (r *memoryVehicleRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.vehicles[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.vehicles, id)
	return nil
}

func (r *memoryVehicleRepo) GetByID(_ context.Context, id string) (*domain.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if vehicle, ok := r.vehicles[id]; ok {
		clone := *vehicle
		return &clone, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *memoryVehicleRepo) GetByNumber(_ context.Context, number string) (*domain.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, vehicle := range r.vehicles {
		if vehicle.VehicleNumber == number {
			clone := *vehicle
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memoryVehicleRepo) ListByOwner(_ context.Context, ownerID string) ([]*domain.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Vehicle
	for _, vehicle := range r.vehicles {
		if vehicle.OwnerAccountID == ownerID {
			clone := *vehicle
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *memoryVehicleRepo) ListAll(_ context.Context) ([]*domain.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Vehicle
	for _, vehicle := range r.vehicles {
		clone := *vehicle
		out = append(out, &clone)
	}
	return out, nil
}

// captureSender records message bodies so tests can read dispatched codes.
type captureSender struct {
	mu     sync.Mutex
	bodies []string
}

func (s *captureSender) SendEmail(_ context.Context, _, _, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bodies = append(s.bodies, body)
	return nil
}

func (s *captureSender) SendSMS(_ context.Context, _, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bodies = append(s.bodies, body)
	return nil
}

func (s *captureSender) lastCode(t *testing.T) string {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.bodies)
	match := regexp.MustCompile(`\b\d{6}\b`).FindString(s.bodies[len(s.bodies)-1])
	require.NotEmpty(t, match, "no code in %q", s.bodies[len(s.bodies)-1])
	return match
}

// ---- app assembly ----

type testEnv struct {
	app      *fiber.App
	accounts *memoryAccountRepo
	sender   *captureSender
	authSvc  *service.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := config.Config{Auth: config.AuthConfig{
		JWTSecret:            "test-secret",
		SessionTokenTTLHours: 168,
		RememberTokenTTLDays: 30,
		ResetTokenTTLMinutes: 60,
		BcryptCost:           4,
	}}

	accounts := newMemoryAccountRepo()
	sender := &captureSender{}

	authSvc := service.NewAuthService(cfg, service.AuthDependencies{
		AccountRepo: accounts,
		Sender:      sender,
		Logger:      zap.NewNop(),
	})
	vehicleSvc := service.NewVehicleService(newMemoryVehicleRepo(), nil)
	otpSvc := verification.NewOTPService(kvstore.NewMemoryStore(), sender, zap.NewNop(), 10*time.Minute)
	csrfSvc := security.NewCSRFService(kvstore.NewMemoryStore())

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler("test", "test", &persistence.Postgres{}, nil),
		Auth:           handlers.NewAuthHandler(authSvc, otpSvc),
		CSRF:           handlers.NewCSRFHandler(csrfSvc),
		Vehicles:       handlers.NewVehiclesHandler(vehicleSvc),
		AuthMiddleware: auth.NewAuthMiddleware(authSvc.TokenManager()),
		CSRFService:    csrfSvc,
		AuthLimiter:    security.NewRateLimiter(1000, time.Minute),
		GeneralLimiter: security.NewRateLimiter(1000, time.Minute),
	})

	return &testEnv{app: app, accounts: accounts, sender: sender, authSvc: authSvc}
}

func (e *testEnv) request(t *testing.T, method, path string, payload any, headers map[string]string) (int, []byte) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func extractToken(t *testing.T, body []byte) string {
	t.Helper()
	var parsed struct {
		Data struct {
			Auth struct {
				Token string `json:"token"`
			} `json:"auth"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &parsed))
	require.NotEmpty(t, parsed.Data.Auth.Token)
	return parsed.Data.Auth.Token
}

// ---- tests ----

func TestRegisterLoginEndToEnd(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.request(t, "POST", "/auth/register", map[string]any{
		"username": "alice", "email": "a@x.com", "password": "secret1",
	}, nil)
	require.Equal(t, 201, status, string(body))
	t1 := extractToken(t, body)

	status, body = env.request(t, "POST", "/auth/login", map[string]any{
		"email": "a@x.com", "password": "secret1",
	}, nil)
	require.Equal(t, 200, status, string(body))
	t2 := extractToken(t, body)

	c1, err := env.authSvc.TokenManager().Parse(t1)
	require.NoError(t, err)
	c2, err := env.authSvc.TokenManager().Parse(t2)
	require.NoError(t, err)
	require.Equal(t, c1.ID, c2.ID)
	require.Equal(t, c1.Email, c2.Email)

	status, body = env.request(t, "POST", "/auth/login", map[string]any{
		"email": "a@x.com", "password": "wrong",
	}, nil)
	require.Equal(t, 401, status)
	require.Contains(t, string(body), "INVALID_CREDENTIALS")
}

func TestForgotPasswordResponseDoesNotLeakExistence(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.request(t, "POST", "/auth/register", map[string]any{
		"username": "alice", "email": "a@x.com", "password": "secret1",
	}, nil)
	require.Equal(t, 201, status)

	statusKnown, bodyKnown := env.request(t, "POST", "/auth/forgot-password",
		map[string]any{"email": "a@x.com"}, nil)
	statusUnknown, bodyUnknown := env.request(t, "POST", "/auth/forgot-password",
		map[string]any{"email": "nobody@x.com"}, nil)

	require.Equal(t, 200, statusKnown)
	require.Equal(t, statusKnown, statusUnknown)
	require.Equal(t, bodyKnown, bodyUnknown, "responses must be byte-identical")
}

func TestProfileRequiresValidToken(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.request(t, "POST", "/auth/register", map[string]any{
		"username": "alice", "email": "a@x.com", "password": "secret1",
	}, nil)
	require.Equal(t, 201, status)
	token := extractToken(t, body)

	status, body = env.request(t, "GET", "/auth/profile", nil, bearer(token))
	require.Equal(t, 200, status)
	require.Contains(t, string(body), "a@x.com")
	require.NotContains(t, string(body), "password")

	status, _ = env.request(t, "GET", "/auth/profile", nil, nil)
	require.Equal(t, 401, status)

	status, body = env.request(t, "GET", "/auth/profile", nil, bearer("garbage"))
	require.Equal(t, 403, status)
	require.Contains(t, string(body), "TOKEN_MALFORMED")
}

func TestEmailOTPFlow(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.request(t, "POST", "/auth/send-email-verification",
		map[string]any{"email": "a@x.com"}, nil)
	require.Equal(t, 200, status)
	code := env.sender.lastCode(t)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	status, body := env.request(t, "POST", "/auth/verify-email-otp",
		map[string]any{"email": "a@x.com", "otp": wrong}, nil)
	require.Equal(t, 400, status)
	require.Contains(t, string(body), "OTP_MISMATCH")

	status, _ = env.request(t, "POST", "/auth/verify-email-otp",
		map[string]any{"email": "a@x.com", "otp": code}, nil)
	require.Equal(t, 200, status)

	// Codes are single use.
	status, body = env.request(t, "POST", "/auth/verify-email-otp",
		map[string]any{"email": "a@x.com", "otp": code}, nil)
	require.Equal(t, 400, status)
	require.Contains(t, string(body), "OTP_NOT_FOUND")
}

func TestVehicleCRUDGatedByAuthAndCSRF(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.request(t, "POST", "/auth/register", map[string]any{
		"username": "alice", "email": "a@x.com", "password": "secret1",
	}, nil)
	require.Equal(t, 201, status)
	token := extractToken(t, body)

	vehicle := map[string]any{
		"vehicle_type":   "4-wheeler",
		"vehicle_number": "ts 09 ab 1234",
		"owner_name":     "Alice",
		"email":          "a@x.com",
	}

	// No token: rejected before CSRF is even considered relevant.
	status, _ = env.request(t, "GET", "/vehicles/", nil, nil)
	require.Equal(t, 401, status)

	// Token but no CSRF token on a state-changing request.
	status, _ = env.request(t, "POST", "/vehicles/", vehicle, bearer(token))
	require.Equal(t, 403, status)

	status, body = env.request(t, "GET", "/csrf-token", nil, bearer(token))
	require.Equal(t, 200, status)
	var csrfResp struct {
		CSRFToken string `json:"csrf_token"`
	}
	require.NoError(t, json.Unmarshal(body, &csrfResp))

	headers := bearer(token)
	headers[security.CSRFHeader] = csrfResp.CSRFToken
	status, body = env.request(t, "POST", "/vehicles/", vehicle, headers)
	require.Equal(t, 201, status, string(body))
	require.Contains(t, string(body), "TS09AB1234")

	status, body = env.request(t, "GET", "/vehicles/", nil, bearer(token))
	require.Equal(t, 200, status)
	require.Contains(t, string(body), "TS09AB1234")

	// Regular users cannot delete registrations.
	var list struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list.Data, 1)

	status, _ = env.request(t, "DELETE", "/vehicles/"+list.Data[0].ID, nil, headers)
	require.Equal(t, 403, status)
}
