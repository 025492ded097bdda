package application

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/oksasatya/go-ddd-task-manager/internal/domain/entity"
	"github.com/oksasatya/go-ddd-task-manager/pkg/helpers"
	"github.com/oksasatya/go-ddd-task-manager/pkg/mailer"
	tpl "github.com/oksasatya/go-ddd-task-manager/pkg/mailer/templates"
	"github.com/oksasatya/go-ddd-task-manager/pkg/validation"
)

var alice = RegisterInput{Username: "alice", Email: "alice@example.com", Password: "Secret1!"}

func TestRegisterLoginAuthenticate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := newAuthService()

	reg, err := svc.Register(ctx, RegisterInput{Username: "  alice ", Email: " Alice@Example.COM ", Password: alice.Password})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if reg.Token == "" || reg.User.ID == "" {
		t.Fatalf("Register() = %+v", reg)
	}
	if reg.User.Password != "" {
		t.Error("Register() leaked the password hash")
	}
	if reg.User.Username != "alice" || reg.User.Email != "alice@example.com" {
		t.Errorf("identity not normalized: %+v", reg.User)
	}
	if !reg.ExpiresAt.After(time.Now()) {
		t.Errorf("ExpiresAt = %v", reg.ExpiresAt)
	}

	login, err := svc.Login(ctx, "ALICE@example.com", alice.Password)
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if login.User.ID != reg.User.ID {
		t.Errorf("Login() user = %s, want %s", login.User.ID, reg.User.ID)
	}

	for _, token := range []string{reg.Token, login.Token} {
		u, err := svc.Authenticate(ctx, token)
		if err != nil {
			t.Fatalf("Authenticate() error = %v", err)
		}
		if u.ID != reg.User.ID || u.Password != "" {
			t.Errorf("Authenticate() = %+v", u)
		}
	}
}

func TestRegisterDuplicates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, store := newAuthService()
	if _, err := svc.Register(ctx, alice); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	tests := []struct {
		name string
		in   RegisterInput
	}{
		{name: "same email", in: RegisterInput{Username: "alice2", Email: "ALICE@example.com", Password: alice.Password}},
		{name: "same username", in: RegisterInput{Username: "alice", Email: "other@example.com", Password: alice.Password}},
	}
	for _, tt := range tests {
		tt := tt
		if _, err := svc.Register(ctx, tt.in); !errors.Is(err, ErrDuplicateIdentity) {
			t.Errorf("%s: Register() error = %v, want ErrDuplicateIdentity", tt.name, err)
		}
	}
	if exists, _ := store.ExistsByUsernameOrEmail(ctx, "alice2", "other@example.com"); exists {
		t.Error("a duplicate registration created a record")
	}
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	svc, _ := newAuthService()
	_, err := svc.Register(context.Background(), RegisterInput{Username: " al ", Email: "nope", Password: "secret"})

	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("Register() error = %v, want validation.Errors", err)
	}
	want := validation.Errors{
		"username must be at least 3 characters",
		"email must be a valid email",
		"password must contain at least one uppercase letter",
	}
	if !reflect.DeepEqual(verrs, want) {
		t.Errorf("errors = %#v, want %#v", verrs, want)
	}
}

func TestRegisterPasswordByteLimit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := newAuthService()

	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "Aa!" + strings.Repeat("x", 77)})
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("Register() error = %v, want validation.Errors", err)
	}
	if want := (validation.Errors{"password cannot exceed 72 bytes"}); !reflect.DeepEqual(verrs, want) {
		t.Errorf("errors = %#v, want %#v", verrs, want)
	}

	longest := "Aa!" + strings.Repeat("x", 69)
	if _, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: longest}); err != nil {
		t.Fatalf("Register() with 72 bytes error = %v", err)
	}
	if _, err := svc.Login(ctx, "alice@example.com", longest); err != nil {
		t.Errorf("Login() error = %v", err)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := newAuthService()
	if _, err := svc.Register(ctx, alice); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	for _, tc := range []struct{ email, password string }{
		{"alice@example.com", "Wrong1!"},
		{"nobody@example.com", alice.Password},
	} {
		if _, err := svc.Login(ctx, tc.email, tc.password); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Login(%q) error = %v, want ErrInvalidCredentials", tc.email, err)
		}
	}
}

func TestAuthenticateRejects(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := newAuthService()
	reg, err := svc.Register(ctx, alice)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	expired := helpers.NewJWTManager("test-secret", time.Minute)
	expired.Now = func() time.Time { return time.Now().Add(-time.Hour) }
	oldToken, _, err := expired.Issue(reg.User.ID)
	if err != nil {
		t.Fatal(err)
	}
	ghostToken, _, err := svc.JWT.Issue("4f8e1a8e-5a55-4a4b-9d1c-2b7e1c0f0a11")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not.a.jwt"},
		{name: "expired", token: oldToken},
		{name: "deleted user", token: ghostToken},
	}
	for _, tt := range tests {
		tt := tt
		if _, err := svc.Authenticate(ctx, tt.token); !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("%s: Authenticate() error = %v, want ErrUnauthenticated", tt.name, err)
		}
	}
}

func TestTokenForOneUserNeverResolvesToAnother(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := newAuthService()
	a, err := svc.Register(ctx, alice)
	if err != nil {
		t.Fatal(err)
	}
	b, err := svc.Register(ctx, RegisterInput{Username: "bob", Email: "bob@example.com", Password: "Secret2@"})
	if err != nil {
		t.Fatal(err)
	}

	ua, _ := svc.Authenticate(ctx, a.Token)
	ub, _ := svc.Authenticate(ctx, b.Token)
	if ua == nil || ub == nil || ua.ID != a.User.ID || ub.ID != b.User.ID || ua.ID == ub.ID {
		t.Errorf("tokens resolved to %v and %v", ua, ub)
	}
}

func TestAuthenticateUsesCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := newAuthService()
	cache := &fakeCache{}
	svc.Cache = cache

	reg, err := svc.Register(ctx, alice)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Authenticate(ctx, reg.Token); err != nil {
		t.Fatal(err)
	}
	cached, ok := cache.users[reg.User.ID]
	if !ok {
		t.Fatal("user was not cached")
	}
	if cached.Password != "" {
		t.Error("cached user carries the password hash")
	}

	// a cached entry answers without the store
	cache.users[reg.User.ID] = entity.User{ID: reg.User.ID, Username: "from-cache"}
	u, err := svc.Authenticate(ctx, reg.Token)
	if err != nil {
		t.Fatal(err)
	}
	if u.Username != "from-cache" {
		t.Errorf("Authenticate() username = %q, want cached value", u.Username)
	}
}

func TestRegisterEnqueuesWelcomeEmail(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := newAuthService()
	pub := &fakePublisher{}
	svc.Mail = pub
	svc.Brand = tpl.Brand{AppName: "Tasks"}

	if _, err := svc.Register(ctx, alice); err != nil {
		t.Fatal(err)
	}
	if len(pub.jobs) != 1 {
		t.Fatalf("published %d jobs, want 1", len(pub.jobs))
	}
	job, ok := pub.jobs[0].(mailer.EmailJob)
	if !ok {
		t.Fatalf("job type %T", pub.jobs[0])
	}
	if job.To != alice.Email || job.Template != tpl.Welcome || job.Data["Name"] != "alice" {
		t.Errorf("job = %+v", job)
	}

	// a broken queue never fails registration
	pub.err = errors.New("queue down")
	if _, err := svc.Register(ctx, RegisterInput{Username: "bob", Email: "bob@example.com", Password: "Secret2@"}); err != nil {
		t.Errorf("Register() error = %v with broken publisher", err)
	}
}
