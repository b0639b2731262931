package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/agrovia/farmstead/internal/domain"
	"github.com/agrovia/farmstead/internal/password"
	"github.com/agrovia/farmstead/pkg/config"
	"github.com/jackc/pgx/v5"
)

// ---------- Mocks ----------

type mockSessionRepo struct {
	sessions map[string]*domain.Session
	findErr  error
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: make(map[string]*domain.Session)}
}

func (m *mockSessionRepo) Create(_ context.Context, sid string, payload domain.SessionPayload, expiresAt time.Time) error {
	m.sessions[sid] = &domain.Session{SID: sid, Payload: payload, ExpiresAt: expiresAt}
	return nil
}

func (m *mockSessionRepo) Find(_ context.Context, sid string) (*domain.Session, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	s, ok := m.sessions[sid]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *mockSessionRepo) Delete(_ context.Context, sid string) error {
	delete(m.sessions, sid)
	return nil
}

func (m *mockSessionRepo) DeleteExpired(_ context.Context) (int64, error) {
	var n int64
	now := time.Now()
	for sid, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, sid)
			n++
		}
	}
	return n, nil
}

type mockUserRepo struct {
	nextID   int64
	users    map[int64]*domain.User
	sessions *mockSessionRepo
}

func newMockUserRepo(sessions *mockSessionRepo) *mockUserRepo {
	return &mockUserRepo{nextID: 1, users: make(map[int64]*domain.User), sessions: sessions}
}

func (m *mockUserRepo) Create(_ context.Context, req *domain.RegisterRequest, passwordHash string) (*domain.User, error) {
	u := &domain.User{
		ID:           m.nextID,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Name:         req.Name,
		Phone:        req.Phone,
		BusinessName: req.BusinessName,
		Locale:       req.Locale,
		AccountType:  domain.AccountTypeProducer,
		SubTypes:     req.SubTypes,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	m.users[u.ID] = u
	m.nextID++
	return u, nil
}

func (m *mockUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) ExistsByEmailOrPhone(_ context.Context, email, phone string) (bool, error) {
	for _, u := range m.users {
		if u.Email == email || u.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) UpdateProfile(_ context.Context, id int64, req *domain.UpdateProfileRequest) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Phone != nil {
		u.Phone = *req.Phone
	}
	if req.BusinessName != nil {
		u.BusinessName = *req.BusinessName
	}
	if req.Locale != nil {
		u.Locale = *req.Locale
	}
	if req.SubTypes != nil {
		u.SubTypes = req.SubTypes
	}
	u.UpdatedAt = time.Now()
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	u, ok := m.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.PasswordHash = passwordHash
	return nil
}

func (m *mockUserRepo) DeleteWithSession(_ context.Context, userID int64, sid string) error {
	if _, ok := m.users[userID]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.users, userID)
	delete(m.sessions.sessions, sid)
	return nil
}

func (m *mockUserRepo) List(_ context.Context, limit, offset int) ([]domain.User, error) {
	var out []domain.User
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

type mockAdminRepo struct {
	admins map[string]*domain.Admin
}

func newMockAdminRepo() *mockAdminRepo {
	return &mockAdminRepo{admins: make(map[string]*domain.Admin)}
}

func (m *mockAdminRepo) FindByEmail(_ context.Context, email string) (*domain.Admin, error) {
	a, ok := m.admins[email]
	if !ok {
		return nil, nil
	}
	return a, nil
}

type mockResetRepo struct {
	records map[string]*domain.PasswordReset
}

func newMockResetRepo() *mockResetRepo {
	return &mockResetRepo{records: make(map[string]*domain.PasswordReset)}
}

func (m *mockResetRepo) Upsert(_ context.Context, email, tokenHash string, expiresAt time.Time) error {
	m.records[email] = &domain.PasswordReset{Email: email, TokenHash: tokenHash, ExpiresAt: expiresAt}
	return nil
}

func (m *mockResetRepo) Find(_ context.Context, email string) (*domain.PasswordReset, error) {
	r, ok := m.records[email]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m *mockResetRepo) Delete(_ context.Context, email string) error {
	delete(m.records, email)
	return nil
}

func (m *mockResetRepo) DeleteExpired(_ context.Context) (int64, error) {
	var n int64
	now := time.Now()
	for email, r := range m.records {
		if r.Expired(now) {
			delete(m.records, email)
			n++
		}
	}
	return n, nil
}

type mockMailer struct {
	resetTo   string
	resetURL  string
	otpTo     string
	otpCode   string
	otpSends  int
	sendErr   error
}

func (m *mockMailer) SendPasswordResetEmail(toEmail, toName, resetURL string) error {
	m.resetTo = toEmail
	m.resetURL = resetURL
	return m.sendErr
}

func (m *mockMailer) SendOTPEmail(toEmail, code string) error {
	m.otpTo = toEmail
	m.otpCode = code
	m.otpSends++
	return m.sendErr
}

// ---------- Shared setup ----------

func mustHash(t *testing.T, plaintext string) string {
	t.Helper()
	hash, err := password.Hash(plaintext)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return hash
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Auth: config.AuthConfig{
			JWTSecret:     "test-secret",
			SessionTTL:    3 * 24 * time.Hour,
			AdminTokenTTL: 3 * 24 * time.Hour,
			ResetTokenTTL: time.Hour,
			OTPTTL:        10 * time.Minute,
		},
		Frontend: config.FrontendConfig{Origin: "http://localhost:5173"},
	}
}
