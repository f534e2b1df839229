package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/brightkube/authhub/internal/domain/user"
	"github.com/brightkube/authhub/internal/security"
)

// Business-rule failures. These carry the exact user-facing message and are
// the only errors the transport layer maps to a client-error status;
// anything else that comes out of the workflow is an infrastructure fault.
var (
	ErrEmailTaken         = errors.New("Email is already registered. Try a different one")
	ErrInvalidCredentials = errors.New("Invalid email or password")
)

// Small consumer-side interfaces so tests can fake the collaborators easily.

type UserStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, u user.User) (user.User, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) security.VerifyResult
}

type TokenIssuer interface {
	Issue(u user.User) (string, error)
}

type RegisterRequest struct {
	Name     string
	Email    string
	Password string
}

type LoginRequest struct {
	Email    string
	Password string
}

// RegisterResponse deliberately echoes only the display name; it never
// carries the id, email or hash back to the caller.
type RegisterResponse struct {
	Name string `json:"name"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type AuthService struct {
	store  UserStore
	hasher PasswordHasher
	issuer TokenIssuer
	log    *slog.Logger
}

func NewAuthService(store UserStore, hasher PasswordHasher, issuer TokenIssuer, log *slog.Logger) *AuthService {
	if log == nil {
		log = slog.Default()
	}

	return &AuthService{
		store:  store,
		hasher: hasher,
		issuer: issuer,
		log:    log,
	}
}

// Register creates a new user with a hashed password and the default role.
//
// The lookup is an advisory pre-check only: two concurrent registrations
// for the same email can both pass it, so the store's unique constraint is
// the real uniqueness authority. A conflict from the insert surfaces as the
// same ErrEmailTaken as a failed pre-check.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (RegisterResponse, error) {
	email := strings.TrimSpace(req.Email)

	_, err := s.store.GetByEmail(ctx, email)

	if err == nil {
		return RegisterResponse{}, ErrEmailTaken
	}

	if !errors.Is(err, user.ErrNotFound) {
		return RegisterResponse{}, fmt.Errorf("register: lookup user: %w", err)
	}

	hash, err := s.hasher.Hash(req.Password)

	if err != nil {
		return RegisterResponse{}, fmt.Errorf("register: hash password: %w", err)
	}

	today := user.Today()

	u := user.User{
		Email:        email,
		PasswordHash: hash,
		Name:         req.Name,
		Role:         user.DefaultRole,
		CreatedAt:    today,
		UpdatedAt:    today,
	}

	created, err := s.store.Create(ctx, u)

	if err != nil {
		// lost the race between pre-check and insert
		if errors.Is(err, user.ErrDuplicateEmail) {
			return RegisterResponse{}, ErrEmailTaken
		}

		return RegisterResponse{}, fmt.Errorf("register: insert user: %w", err)
	}

	return RegisterResponse{Name: created.Name}, nil
}

// Login verifies credentials and issues an access token.
//
// Unknown email and wrong password both return ErrInvalidCredentials so the
// endpoint cannot be used as a user-existence oracle.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	u, err := s.store.GetByEmail(ctx, strings.TrimSpace(req.Email))

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return LoginResponse{}, ErrInvalidCredentials
		}

		return LoginResponse{}, fmt.Errorf("login: lookup user: %w", err)
	}

	switch s.hasher.Verify(u.PasswordHash, req.Password) {
	case security.VerifyFailed:
		return LoginResponse{}, ErrInvalidCredentials

	case security.VerifySuccessRehash:
		// Accepted. The hash is not rewritten here yet.
		// TODO: persist a rehash once the store grows an UpdatePasswordHash.
		s.log.InfoContext(ctx, "stored password hash uses outdated parameters", "user_id", u.ID)
	}

	token, err := s.issuer.Issue(u)

	if err != nil {
		return LoginResponse{}, fmt.Errorf("login: issue token: %w", err)
	}

	return LoginResponse{Token: token}, nil
}
