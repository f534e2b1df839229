package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/brightkube/authhub/internal/domain/user"
	"github.com/brightkube/authhub/internal/security"
	"github.com/brightkube/authhub/internal/service"
)

// Fake collaborators for the workflow's consumer-side interfaces.

type fakeStore struct {
	getFn    func(ctx context.Context, email string) (user.User, error)
	createFn func(ctx context.Context, u user.User) (user.User, error)

	created []user.User
}

func (f *fakeStore) GetByEmail(ctx context.Context, email string) (user.User, error) {
	if f.getFn != nil {
		return f.getFn(ctx, email)
	}

	return user.User{}, user.ErrNotFound
}

func (f *fakeStore) Create(ctx context.Context, u user.User) (user.User, error) {
	f.created = append(f.created, u)

	if f.createFn != nil {
		return f.createFn(ctx, u)
	}

	u.ID = "generated-id"
	return u, nil
}

type fakeHasher struct {
	hashFn   func(plain string) (string, error)
	verifyFn func(hash, plain string) security.VerifyResult
}

func (f *fakeHasher) Hash(plain string) (string, error) {
	if f.hashFn != nil {
		return f.hashFn(plain)
	}

	return "hashed_password", nil
}

func (f *fakeHasher) Verify(hash, plain string) security.VerifyResult {
	if f.verifyFn != nil {
		return f.verifyFn(hash, plain)
	}

	return security.VerifyFailed
}

type fakeIssuer struct {
	issueFn func(u user.User) (string, error)
	calls   int
}

func (f *fakeIssuer) Issue(u user.User) (string, error) {
	f.calls++

	if f.issueFn != nil {
		return f.issueFn(u)
	}

	return "token", nil
}

func newService(store *fakeStore, hasher *fakeHasher, issuer *fakeIssuer) *service.AuthService {
	return service.NewAuthService(store, hasher, issuer, nil)
}

// Register

func TestRegisterSuccess(t *testing.T) {
	store := &fakeStore{}
	hasher := &fakeHasher{}
	issuer := &fakeIssuer{}

	svc := newService(store, hasher, issuer)

	resp, err := svc.Register(context.Background(), service.RegisterRequest{
		Name:     "John Doe",
		Email:    "john@example.com",
		Password: "Password123!",
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Name != "John Doe" {
		t.Fatalf("got name %q, want %q", resp.Name, "John Doe")
	}

	if len(store.created) != 1 {
		t.Fatalf("got %d inserts, want 1", len(store.created))
	}

	saved := store.created[0]

	if saved.Role != user.DefaultRole {
		t.Fatalf("got role %q, want default %q", saved.Role, user.DefaultRole)
	}

	if saved.PasswordHash != "hashed_password" {
		t.Fatalf("got hash %q, want %q", saved.PasswordHash, "hashed_password")
	}

	if saved.PasswordHash == "Password123!" {
		t.Fatal("raw password was persisted")
	}

	if !saved.CreatedAt.Equal(saved.UpdatedAt) {
		t.Fatalf("createdAt %v != updatedAt %v", saved.CreatedAt, saved.UpdatedAt)
	}
}

func TestRegisterDuplicateEmailPrecheck(t *testing.T) {
	store := &fakeStore{
		getFn: func(ctx context.Context, email string) (user.User, error) {
			return user.User{ID: "u1", Email: email}, nil
		},
	}

	svc := newService(store, &fakeHasher{}, &fakeIssuer{})

	_, err := svc.Register(context.Background(), service.RegisterRequest{
		Name:     "New User",
		Email:    "existing@example.com",
		Password: "Password123!",
	})

	if !errors.Is(err, service.ErrEmailTaken) {
		t.Fatalf("got %v, want ErrEmailTaken", err)
	}

	if err.Error() != "Email is already registered. Try a different one" {
		t.Fatalf("unexpected failure message %q", err.Error())
	}

	// the pre-check failure must have no side effects
	if len(store.created) != 0 {
		t.Fatalf("got %d inserts, want 0", len(store.created))
	}
}

func TestRegisterInsertConflict(t *testing.T) {
	// both registrations pass the pre-check; the store rejects the second
	store := &fakeStore{
		createFn: func(ctx context.Context, u user.User) (user.User, error) {
			return user.User{}, user.ErrDuplicateEmail
		},
	}

	svc := newService(store, &fakeHasher{}, &fakeIssuer{})

	_, err := svc.Register(context.Background(), service.RegisterRequest{
		Name:     "Racer",
		Email:    "race@example.com",
		Password: "Password123!",
	})

	if !errors.Is(err, service.ErrEmailTaken) {
		t.Fatalf("got %v, want ErrEmailTaken", err)
	}
}

func TestRegisterStoreFaultPropagates(t *testing.T) {
	boom := errors.New("connection refused")

	store := &fakeStore{
		getFn: func(ctx context.Context, email string) (user.User, error) {
			return user.User{}, boom
		},
	}

	svc := newService(store, &fakeHasher{}, &fakeIssuer{})

	_, err := svc.Register(context.Background(), service.RegisterRequest{
		Name:     "X",
		Email:    "x@example.com",
		Password: "Password123!",
	})

	if errors.Is(err, service.ErrEmailTaken) || errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("infrastructure fault was masked as a business failure: %v", err)
	}

	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want wrapped %v", err, boom)
	}
}

func TestRegisterCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := &fakeStore{
		getFn: func(ctx context.Context, email string) (user.User, error) {
			return user.User{}, ctx.Err()
		},
	}

	svc := newService(store, &fakeHasher{}, &fakeIssuer{})

	_, err := svc.Register(ctx, service.RegisterRequest{
		Name:     "X",
		Email:    "x@example.com",
		Password: "Password123!",
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}

// Login

func TestLoginUnknownEmail(t *testing.T) {
	issuer := &fakeIssuer{}

	svc := newService(&fakeStore{}, &fakeHasher{}, issuer)

	_, err := svc.Login(context.Background(), service.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})

	if !errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("got %v, want ErrInvalidCredentials", err)
	}

	if issuer.calls != 0 {
		t.Fatalf("issuer called %d times on failed login, want 0", issuer.calls)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	store := &fakeStore{
		getFn: func(ctx context.Context, email string) (user.User, error) {
			return user.User{ID: "u1", Email: email, PasswordHash: "stored"}, nil
		},
	}
	issuer := &fakeIssuer{}

	svc := newService(store, &fakeHasher{}, issuer)

	_, err := svc.Login(context.Background(), service.LoginRequest{
		Email:    "john@example.com",
		Password: "wrong",
	})

	if !errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("got %v, want ErrInvalidCredentials", err)
	}

	if issuer.calls != 0 {
		t.Fatalf("issuer called %d times on failed login, want 0", issuer.calls)
	}
}

// Unknown email and wrong password must be indistinguishable to the caller.
func TestLoginNoCredentialOracle(t *testing.T) {
	svcUnknown := newService(&fakeStore{}, &fakeHasher{}, &fakeIssuer{})

	_, errUnknown := svcUnknown.Login(context.Background(), service.LoginRequest{
		Email:    "nobody@example.com",
		Password: "pw",
	})

	store := &fakeStore{
		getFn: func(ctx context.Context, email string) (user.User, error) {
			return user.User{ID: "u1", Email: email, PasswordHash: "stored"}, nil
		},
	}
	svcWrongPw := newService(store, &fakeHasher{}, &fakeIssuer{})

	_, errWrongPw := svcWrongPw.Login(context.Background(), service.LoginRequest{
		Email:    "john@example.com",
		Password: "wrong",
	})

	if errUnknown == nil || errWrongPw == nil {
		t.Fatal("expected both logins to fail")
	}

	if errUnknown.Error() != errWrongPw.Error() {
		t.Fatalf("messages differ: %q vs %q", errUnknown.Error(), errWrongPw.Error())
	}
}

func TestLoginSuccess(t *testing.T) {
	store := &fakeStore{
		getFn: func(ctx context.Context, email string) (user.User, error) {
			return user.User{ID: "u1", Email: email, Role: user.DefaultRole, PasswordHash: "stored"}, nil
		},
	}
	hasher := &fakeHasher{
		verifyFn: func(hash, plain string) security.VerifyResult {
			return security.VerifySuccess
		},
	}
	issuer := &fakeIssuer{
		issueFn: func(u user.User) (string, error) {
			return "tok", nil
		},
	}

	svc := newService(store, hasher, issuer)

	resp, err := svc.Login(context.Background(), service.LoginRequest{
		Email:    "john@example.com",
		Password: "Password123!",
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Token != "tok" {
		t.Fatalf("got token %q, want %q", resp.Token, "tok")
	}

	if issuer.calls != 1 {
		t.Fatalf("issuer called %d times, want exactly 1", issuer.calls)
	}
}

func TestLoginRehashNeededStillSucceeds(t *testing.T) {
	store := &fakeStore{
		getFn: func(ctx context.Context, email string) (user.User, error) {
			return user.User{ID: "u1", Email: email, PasswordHash: "old-params"}, nil
		},
	}
	hasher := &fakeHasher{
		verifyFn: func(hash, plain string) security.VerifyResult {
			return security.VerifySuccessRehash
		},
	}
	issuer := &fakeIssuer{
		issueFn: func(u user.User) (string, error) {
			return "tok", nil
		},
	}

	svc := newService(store, hasher, issuer)

	resp, err := svc.Login(context.Background(), service.LoginRequest{
		Email:    "john@example.com",
		Password: "Password123!",
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Token != "tok" {
		t.Fatalf("got token %q, want %q", resp.Token, "tok")
	}
}

func TestLoginIssuerFaultPropagates(t *testing.T) {
	store := &fakeStore{
		getFn: func(ctx context.Context, email string) (user.User, error) {
			return user.User{ID: "u1", Email: email, PasswordHash: "stored"}, nil
		},
	}
	hasher := &fakeHasher{
		verifyFn: func(hash, plain string) security.VerifyResult {
			return security.VerifySuccess
		},
	}
	issuer := &fakeIssuer{
		issueFn: func(u user.User) (string, error) {
			return "", errors.New("signing key unavailable")
		},
	}

	svc := newService(store, hasher, issuer)

	_, err := svc.Login(context.Background(), service.LoginRequest{
		Email:    "john@example.com",
		Password: "Password123!",
	})

	if err == nil || errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("got %v, want a distinct infrastructure error", err)
	}
}
