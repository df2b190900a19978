package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freshfold/laundry-backend/internal/users"
	pkgAuth "github.com/freshfold/laundry-backend/pkg/auth"
	"github.com/freshfold/laundry-backend/pkg/auth/session"
	"github.com/freshfold/laundry-backend/pkg/config"
	"github.com/freshfold/laundry-backend/pkg/db/models"
	"github.com/freshfold/laundry-backend/pkg/enums"
	pkgerrors "github.com/freshfold/laundry-backend/pkg/errors"
	"github.com/freshfold/laundry-backend/pkg/security"
	"github.com/freshfold/laundry-backend/pkg/types"
)

var testJWT = config.JWTConfig{
	Secret:            "secret",
	Issuer:            "freshfold",
	ExpirationMinutes: 30,
}

func TestServiceRegisterIssuesTokens(t *testing.T) {
	svc, repo, sessions := buildTestService(t, "")

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Jamie Rivers",
		Email:    "  Jamie@Example.com ",
		Password: "hunter22",
		Phone:    "0400 000 000",
		Suburb:   "Geelong",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.User == nil || resp.User.Email != "jamie@example.com" {
		t.Fatalf("expected normalized email, got %+v", resp.User)
	}
	if resp.User.Role != enums.RoleCustomer {
		t.Fatalf("expected customer role, got %s", resp.User.Role)
	}
	if len(repo.byID) != 1 {
		t.Fatalf("expected one stored user, got %d", len(repo.byID))
	}
	if sessions.generated[resp.SessionID] != resp.RefreshToken {
		t.Fatalf("refresh token not stored for session %s", resp.SessionID)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWT, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != resp.User.ID || claims.Name != "Jamie Rivers" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.ID != resp.SessionID {
		t.Fatalf("expected jti %s, got %s", resp.SessionID, claims.ID)
	}
}

func TestServiceRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, repo, _ := buildTestService(t, "")
	repo.add(t, "taken@example.com", "password1", enums.RoleCustomer)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Other",
		Email:    "TAKEN@example.com",
		Password: "password1",
	})
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Reason() != pkgerrors.ReasonEmailTaken {
		t.Fatalf("expected email taken, got %v", err)
	}
}

func TestServiceRegisterRejectsShortPassword(t *testing.T) {
	svc, _, _ := buildTestService(t, "")

	_, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Short",
		Email:    "short@example.com",
		Password: "abc",
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceLogin(t *testing.T) {
	svc, repo, _ := buildTestService(t, "")
	user := repo.add(t, "login@example.com", "correct-horse", enums.RoleAdmin)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "login@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := pkgAuth.ParseAccessToken(testJWT, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Role != enums.RoleAdmin {
		t.Fatalf("expected admin role claim, got %s", claims.Role)
	}
	if repo.lastLogin[user.ID].IsZero() {
		t.Fatalf("expected last login to be recorded")
	}
	if resp.User.LastLoginAt == nil {
		t.Fatalf("expected last login on response")
	}
}

func TestServiceLoginUpgradesWeakHash(t *testing.T) {
	svc, repo, _ := buildTestService(t, "")
	weak := testPasswordConfig()
	weak.ArgonMemoryKB = 512
	legacy, err := security.NewHasher(weak).Hash("old-cost-pass")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user := repo.add(t, "legacy@example.com", "unused", enums.RoleCustomer)
	user.PasswordHash = legacy

	if _, err := svc.Login(context.Background(), LoginRequest{Email: "legacy@example.com", Password: "old-cost-pass"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if repo.rehashed != 1 {
		t.Fatalf("expected one rehash, got %d", repo.rehashed)
	}
	if repo.byID[user.ID].PasswordHash == legacy {
		t.Fatalf("stored hash was not replaced")
	}

	if _, err := svc.Login(context.Background(), LoginRequest{Email: "legacy@example.com", Password: "old-cost-pass"}); err != nil {
		t.Fatalf("second login: %v", err)
	}
	if repo.rehashed != 1 {
		t.Fatalf("current hash should not be rehashed again")
	}
}

func TestServiceLoginInvalidCredentials(t *testing.T) {
	svc, repo, _ := buildTestService(t, "")
	repo.add(t, "login@example.com", "correct-horse", enums.RoleCustomer)

	cases := []LoginRequest{
		{Email: "login@example.com", Password: "wrong"},
		{Email: "missing@example.com", Password: "correct-horse"},
		{Email: "", Password: "correct-horse"},
	}
	for _, req := range cases {
		_, err := svc.Login(context.Background(), req)
		if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
			t.Fatalf("expected unauthorized for %q, got %v", req.Email, err)
		}
	}
}

func TestServiceRefreshRotatesSession(t *testing.T) {
	svc, repo, sessions := buildTestService(t, "")
	user := repo.add(t, "refresh@example.com", "password1", enums.RoleCustomer)
	sessions.rotation = session.Rotation{AccessID: "new-access", RefreshToken: "new-refresh", UserID: user.ID}

	resp, err := svc.Refresh(context.Background(), RefreshRequest{SessionID: "old-access", RefreshToken: "old-refresh"})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if resp.SessionID != "new-access" || resp.RefreshToken != "new-refresh" {
		t.Fatalf("unexpected rotation result %+v", resp)
	}
	if sessions.rotatedFrom != "old-access" {
		t.Fatalf("expected rotation from old-access, got %q", sessions.rotatedFrom)
	}
}

func TestServiceRefreshInvalidToken(t *testing.T) {
	svc, _, sessions := buildTestService(t, "")
	sessions.rotateErr = session.ErrInvalidRefreshToken

	_, err := svc.Refresh(context.Background(), RefreshRequest{SessionID: "a", RefreshToken: "b"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestServiceLogoutRevokes(t *testing.T) {
	svc, _, sessions := buildTestService(t, "")

	if err := svc.Logout(context.Background(), "access-1"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "access-1" {
		t.Fatalf("expected access-1 revoked, got %v", sessions.revoked)
	}
	if err := svc.Logout(context.Background(), " "); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for blank session, got %v", err)
	}
}

func TestServiceMe(t *testing.T) {
	svc, repo, _ := buildTestService(t, "")
	user := repo.add(t, "me@example.com", "password1", enums.RoleCustomer)

	dto, err := svc.Me(context.Background(), types.Actor{UserID: user.ID, Role: user.Role})
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if dto.Email != "me@example.com" {
		t.Fatalf("unexpected user %+v", dto)
	}
	if _, err := svc.Me(context.Background(), types.Actor{}); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for guest, got %v", err)
	}
}

func TestServiceMakeAdmin(t *testing.T) {
	svc, repo, _ := buildTestService(t, "s3cret")
	user := repo.add(t, "promote@example.com", "password1", enums.RoleCustomer)

	if _, err := svc.MakeAdmin(context.Background(), MakeAdminRequest{Email: user.Email, Secret: "nope"}); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden for wrong secret, got %v", err)
	}
	if _, err := svc.MakeAdmin(context.Background(), MakeAdminRequest{Email: "ghost@example.com", Secret: "s3cret"}); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	dto, err := svc.MakeAdmin(context.Background(), MakeAdminRequest{Email: user.Email, Secret: "s3cret"})
	if err != nil {
		t.Fatalf("make admin: %v", err)
	}
	if dto.Role != enums.RoleAdmin || repo.byID[user.ID].Role != enums.RoleAdmin {
		t.Fatalf("expected admin role, got %s", dto.Role)
	}
}

func TestServiceMakeAdminWithoutSecretConfigured(t *testing.T) {
	svc, repo, _ := buildTestService(t, "")
	user := repo.add(t, "promote@example.com", "password1", enums.RoleCustomer)

	if _, err := svc.MakeAdmin(context.Background(), MakeAdminRequest{Email: user.Email, Secret: ""}); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func buildTestService(t *testing.T, adminSecret string) (Service, *stubUserRepo, *stubSessionManager) {
	t.Helper()
	repo := newStubUserRepo()
	sessions := &stubSessionManager{generated: map[string]string{}}
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWT,
		PasswordConfig: testPasswordConfig(),
		AdminSecret:    adminSecret,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, repo, sessions
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hashed, err := security.NewHasher(testPasswordConfig()).Hash(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hashed
}

type stubUserRepo struct {
	byID      map[uuid.UUID]*models.User
	lastLogin map[uuid.UUID]time.Time
	rehashed  int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		byID:      map[uuid.UUID]*models.User{},
		lastLogin: map[uuid.UUID]time.Time{},
	}
}

func (r *stubUserRepo) add(t *testing.T, email, password string, role enums.Role) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Name:         strings.Split(email, "@")[0],
		Email:        email,
		PasswordHash: mustHashPassword(t, password),
		Role:         role,
	}
	r.byID[user.ID] = user
	return user
}

func (r *stubUserRepo) Create(_ context.Context, dto users.CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	r.byID[user.ID] = user
	return user, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	normalized := users.NormalizeEmail(email)
	for _, u := range r.byID {
		if u.Email == normalized {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *stubUserRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	r.lastLogin[id] = at
	return nil
}

func (r *stubUserRepo) UpdatePasswordHash(_ context.Context, id uuid.UUID, hash string) error {
	u, ok := r.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.PasswordHash = hash
	r.rehashed++
	return nil
}

func (r *stubUserRepo) UpdateRole(_ context.Context, id uuid.UUID, role enums.Role) error {
	u, ok := r.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Role = role
	return nil
}

type stubSessionManager struct {
	generated   map[string]string
	revoked     []string
	rotation    session.Rotation
	rotateErr   error
	rotatedFrom string
}

func (s *stubSessionManager) Generate(_ context.Context, accessID string, _ uuid.UUID) (string, error) {
	token := "refresh-" + accessID
	s.generated[accessID] = token
	return token, nil
}

func (s *stubSessionManager) Rotate(_ context.Context, oldAccessID, _ string) (session.Rotation, error) {
	s.rotatedFrom = oldAccessID
	if s.rotateErr != nil {
		return session.Rotation{}, s.rotateErr
	}
	return s.rotation, nil
}

func (s *stubSessionManager) Revoke(_ context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}
