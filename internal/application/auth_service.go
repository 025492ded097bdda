package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-task-manager/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-task-manager/internal/domain/repository"
	"github.com/oksasatya/go-ddd-task-manager/pkg/helpers"
	"github.com/oksasatya/go-ddd-task-manager/pkg/mailer"
	tpl "github.com/oksasatya/go-ddd-task-manager/pkg/mailer/templates"
	"github.com/oksasatya/go-ddd-task-manager/pkg/validation"
)

// AuthService registers users, checks credentials and resolves bearer tokens.
// Cache and Mail are optional.
type AuthService struct {
	Users      repo.UserRepository
	JWT        *helpers.JWTManager
	Cache      UserCache
	Mail       EmailPublisher
	Brand      tpl.Brand
	BcryptCost int
	Logger     *logrus.Logger
}

func NewAuthService(users repo.UserRepository, jwt *helpers.JWTManager, bcryptCost int, logger *logrus.Logger) *AuthService {
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	return &AuthService{Users: users, JWT: jwt, BcryptCost: bcryptCost, Logger: logger}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// AuthResult is returned by Register and Login. User never carries the hash.
type AuthResult struct {
	User      entity.User
	Token     string
	ExpiresAt time.Time
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (in RegisterInput) normalize() (RegisterInput, error) {
	out := RegisterInput{
		Username: strings.TrimSpace(in.Username),
		Email:    normalizeEmail(in.Email),
		Password: in.Password,
	}
	var errs validation.Errors
	errs = append(errs, validation.Var("username", out.Username, "required,min=3")...)
	errs = append(errs, validation.Var("email", out.Email, "required,email")...)
	errs = append(errs, validation.Var("password", out.Password, "required,strongpwd")...)
	if len(errs) > 0 {
		return out, errs
	}
	return out, nil
}

// Register creates a user with a unique username and email and signs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	exists, err := s.Users.ExistsByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return nil, fmt.Errorf("check identity: %w", err)
	}
	if exists {
		return nil, ErrDuplicateIdentity
	}

	hash, err := helpers.HashPassword(in.Password, s.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &entity.User{Username: in.Username, Email: in.Email, Password: hash}
	if err := s.Users.Create(ctx, u); err != nil {
		// a concurrent registration won the unique index
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	res, err := s.issue(u)
	if err != nil {
		return nil, err
	}
	metricUsersRegistered.Add(1)
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "username": u.Username}).Info("user registered")
	s.enqueueWelcome(ctx, u)
	return res, nil
}

// Login checks email and password. An unknown email and a wrong password are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.Users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repo.ErrNotFound) {
		metricAuthFailures.Add(1)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		metricAuthFailures.Add(1)
		return nil, ErrInvalidCredentials
	}

	res, err := s.issue(u)
	if err != nil {
		return nil, err
	}
	metricLogins.Add(1)
	return res, nil
}

// Authenticate resolves a bearer token to the user it was issued for.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*entity.User, error) {
	uid, err := s.JWT.Verify(token)
	if err != nil {
		metricAuthFailures.Add(1)
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	// Users are never deleted, so a cached entry can only be stale for
	// USER_CACHE_TTL; a deletion feature must evict here.
	if s.Cache != nil {
		u, ok, cerr := s.Cache.Get(ctx, uid)
		if cerr != nil {
			s.Logger.WithError(cerr).WithField("user_id", uid).Warn("user cache get failed")
		}
		if ok {
			pub := u.Public()
			return &pub, nil
		}
	}

	u, err := s.Users.GetByID(ctx, uid)
	if errors.Is(err, repo.ErrNotFound) || errors.Is(err, repo.ErrMalformedID) {
		metricAuthFailures.Add(1)
		return nil, fmt.Errorf("%w: user %s no longer exists", ErrUnauthenticated, uid)
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	pub := u.Public()
	if s.Cache != nil {
		if cerr := s.Cache.Set(ctx, &pub); cerr != nil {
			s.Logger.WithError(cerr).WithField("user_id", uid).Warn("user cache set failed")
		}
	}
	return &pub, nil
}

func (s *AuthService) issue(u *entity.User) (*AuthResult, error) {
	token, exp, err := s.JWT.Issue(u.ID)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("issue token failed")
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{User: u.Public(), Token: token, ExpiresAt: exp}, nil
}

func (s *AuthService) enqueueWelcome(ctx context.Context, u *entity.User) {
	if s.Mail == nil {
		return
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: tpl.Welcome,
		Data:     tpl.NewWelcomeData(s.Brand, u.Username, u.Email, tpl.WithTime(u.CreatedAt)),
	}
	c, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := s.Mail.PublishJSON(c, job); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("enqueue welcome email failed")
	}
}
