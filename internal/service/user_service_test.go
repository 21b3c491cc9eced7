package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"motoboy/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type memoryUsers struct {
	rows map[string]model.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{rows: map[string]model.User{}}
}

func (m *memoryUsers) Create(_ context.Context, u *model.User) error {
	u.ID = uuid.New()
	m.rows[u.ID.String()] = *u
	return nil
}

func (m *memoryUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := m.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (m *memoryUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.rows {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memoryUsers) List(context.Context, int, int) ([]model.User, int64, error) {
	var out []model.User
	for _, u := range m.rows {
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (m *memoryUsers) Update(_ context.Context, u *model.User) error {
	m.rows[u.ID.String()] = *u
	return nil
}

func (m *memoryUsers) Delete(_ context.Context, id string) error {
	delete(m.rows, id)
	return nil
}

func TestLoginIssuesToken(t *testing.T) {
	repo := newMemoryUsers()
	svc := NewUserService(repo, "test-secret", time.Hour, nil)

	created, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Username: "carlos", Password: "segredo1", Role: model.RoleSupervisor, SupervisorCodigo: "1234",
	})
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if repo.rows[created.ID.String()].Password == "segredo1" {
		t.Fatal("password stored in clear text")
	}

	res, err := svc.Login(context.Background(), LoginUserRequest{Username: "carlos", Password: "segredo1"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	token, err := jwt.Parse(res.Token, func(*jwt.Token) (interface{}, error) { return []byte("test-secret"), nil })
	if err != nil || !token.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	claims := token.Claims.(jwt.MapClaims)
	if claims["sub"] != created.ID.String() || claims["role"] != model.RoleSupervisor {
		t.Errorf("claims = %v", claims)
	}

	if _, err := svc.Login(context.Background(), LoginUserRequest{Username: "carlos", Password: "errada"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v", err)
	}
	if _, err := svc.Login(context.Background(), LoginUserRequest{Username: "ninguem", Password: "x"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user: got %v", err)
	}
}

func TestCreateUserValidation(t *testing.T) {
	svc := NewUserService(newMemoryUsers(), "s", time.Hour, nil)
	if _, err := svc.CreateUser(context.Background(), CreateUserRequest{Username: "a", Password: "123456", Role: "root"}); !errors.Is(err, ErrValidation) {
		t.Errorf("bad role: got %v", err)
	}
	if _, err := svc.CreateUser(context.Background(), CreateUserRequest{Username: "a", Password: "123456", Role: model.RoleOperator}); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if _, err := svc.CreateUser(context.Background(), CreateUserRequest{Username: "a", Password: "123456", Role: model.RoleOperator}); !errors.Is(err, ErrValidation) {
		t.Errorf("duplicate username: got %v", err)
	}
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	repo := newMemoryUsers()
	svc := NewUserService(repo, "s", time.Hour, nil)

	for i := 0; i < 2; i++ {
		if err := svc.EnsureAdmin(context.Background(), "admin", "admin123"); err != nil {
			t.Fatalf("EnsureAdmin() error = %v", err)
		}
	}
	if len(repo.rows) != 1 {
		t.Fatalf("users = %d, want 1", len(repo.rows))
	}
	for _, u := range repo.rows {
		if u.Role != model.RoleAdmin {
			t.Errorf("role = %q", u.Role)
		}
	}

	if err := svc.EnsureAdmin(context.Background(), "", ""); err != nil {
		t.Errorf("empty bootstrap credentials: %v", err)
	}
}
