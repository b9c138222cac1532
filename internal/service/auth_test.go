package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/inhabitapp/inhabit/internal/models"
)

type mockAuthRepo struct {
	CreateUserFunc       func(ctx context.Context, user *models.User) error
	GetUserByEmailFunc   func(ctx context.Context, email string) (*models.User, error)
	GetUserByIDFunc      func(ctx context.Context, id string) (*models.User, error)
	SaveTokenFunc        func(ctx context.Context, token, userID string, expiresAt time.Time) error
	GetUserIDByTokenFunc func(ctx context.Context, token string) (string, error)
	DeleteTokenFunc      func(ctx context.Context, token string) error
}

func (m *mockAuthRepo) CreateUser(ctx context.Context, user *models.User) error {
	return m.CreateUserFunc(ctx, user)
}
func (m *mockAuthRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.GetUserByEmailFunc(ctx, email)
}
func (m *mockAuthRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return m.GetUserByIDFunc(ctx, id)
}
func (m *mockAuthRepo) SaveToken(ctx context.Context, token, userID string, expiresAt time.Time) error {
	return m.SaveTokenFunc(ctx, token, userID, expiresAt)
}
func (m *mockAuthRepo) GetUserIDByToken(ctx context.Context, token string) (string, error) {
	return m.GetUserIDByTokenFunc(ctx, token)
}
func (m *mockAuthRepo) DeleteToken(ctx context.Context, token string) error {
	return m.DeleteTokenFunc(ctx, token)
}

func TestRegister_Success(t *testing.T) {
	var created *models.User
	repo := &mockAuthRepo{
		GetUserByEmailFunc: func(context.Context, string) (*models.User, error) {
			return nil, sql.ErrNoRows
		},
		CreateUserFunc: func(ctx context.Context, user *models.User) error {
			created = user
			return nil
		},
		SaveTokenFunc: func(context.Context, string, string, time.Time) error {
			return nil
		},
	}
	svc := NewAuthService(repo)

	user, token, err := svc.Register(context.Background(), "Ann", "ann@example.com", "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" {
		t.Error("expected a token")
	}
	if created == nil || created.ID != user.ID {
		t.Error("expected the user to be persisted")
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte("secret")); err != nil {
		t.Error("stored hash does not match the password")
	}
}

func TestRegister_EmailTaken(t *testing.T) {
	repo := &mockAuthRepo{
		GetUserByEmailFunc: func(context.Context, string) (*models.User, error) {
			return &models.User{ID: "u1"}, nil
		},
	}
	svc := NewAuthService(repo)

	_, _, err := svc.Register(context.Background(), "Ann", "ann@example.com", "secret")
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("Register error = %v; want ErrEmailTaken", err)
	}
}

func TestRegister_EmptyFields(t *testing.T) {
	svc := NewAuthService(&mockAuthRepo{})
	if _, _, err := svc.Register(context.Background(), "Ann", "", "pw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("Register error = %v; want ErrInvalidCredentials", err)
	}
	if _, _, err := svc.Register(context.Background(), "Ann", "a@b.c", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("Register error = %v; want ErrInvalidCredentials", err)
	}
}

func TestLogin(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	stored := &models.User{ID: "u1", Email: "ann@example.com", PasswordHash: hash}

	repo := &mockAuthRepo{
		GetUserByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			if email != stored.Email {
				return nil, sql.ErrNoRows
			}
			return stored, nil
		},
		SaveTokenFunc: func(context.Context, string, string, time.Time) error {
			return nil
		},
	}
	svc := NewAuthService(repo)

	user, token, err := svc.Login(context.Background(), "ann@example.com", "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != "u1" || token == "" {
		t.Errorf("unexpected login result: %+v, %q", user, token)
	}

	if _, _, err := svc.Login(context.Background(), "ann@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v; want ErrInvalidCredentials", err)
	}
	if _, _, err := svc.Login(context.Background(), "nobody@example.com", "secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email error = %v; want ErrInvalidCredentials", err)
	}
}

func TestUserByToken(t *testing.T) {
	repo := &mockAuthRepo{
		GetUserIDByTokenFunc: func(ctx context.Context, token string) (string, error) {
			if token == "valid" {
				return "u1", nil
			}
			return "", sql.ErrNoRows
		},
		GetUserByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return &models.User{ID: id, Name: "Ann"}, nil
		},
	}
	svc := NewAuthService(repo)

	user, err := svc.UserByToken(context.Background(), "valid")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != "u1" {
		t.Errorf("user = %+v; want u1", user)
	}

	if _, err := svc.UserByToken(context.Background(), "expired"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expired token error = %v; want ErrUnauthorized", err)
	}
}

func TestLogout(t *testing.T) {
	deleted := ""
	repo := &mockAuthRepo{
		DeleteTokenFunc: func(ctx context.Context, token string) error {
			deleted = token
			return nil
		},
	}
	svc := NewAuthService(repo)
	if err := svc.Logout(context.Background(), "tok"); err != nil {
		t.Fatalf("Logout error: %v", err)
	}
	if deleted != "tok" {
		t.Errorf("deleted token = %q; want tok", deleted)
	}
}
