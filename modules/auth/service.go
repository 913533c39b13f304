package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/salmankhan-prs/multi-tenant-payment-platform/core"
	"github.com/salmankhan-prs/multi-tenant-payment-platform/pkg/jwt"
	"github.com/salmankhan-prs/multi-tenant-payment-platform/pkg/scoped"
	"github.com/salmankhan-prs/multi-tenant-payment-platform/pkg/tenant"
)

const bcryptCost = 10

// UserStore is the slice of the scoped collection the auth service
// needs. *scoped.Collection satisfies it.
type UserStore interface {
	CountDocuments(ctx context.Context, filter any, opts ...scoped.Option) (int64, error)
	InsertOne(ctx context.Context, doc any) (*mongo.InsertOneResult, error)
	FindOne(ctx context.Context, filter any, result any, opts ...scoped.Option) error
}

// Service handles tenant-scoped registration and login.
type Service struct {
	users  UserStore
	tokens *jwt.Service
	log    *slog.Logger
}

// NewService creates the auth service.
func NewService(users UserStore, tokens *jwt.Service, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{users: users, tokens: tokens, log: log}
}

// RegisterParams are the inputs for user registration.
type RegisterParams struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// AuthResult is returned from register and login.
type AuthResult struct {
	User        *User  `json:"user,omitempty"`
	AccessToken string `json:"accessToken"`
}

// Register creates a user under the bound tenant, enforcing the tier's
// maxUsers ceiling. The count runs through the scoped collection, so it
// only ever sees the current tenant's users.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*AuthResult, error) {
	t, err := tenant.Current(ctx)
	if err != nil {
		return nil, err
	}

	if params.Email == "" || params.Password == "" {
		return nil, core.ErrBadRequest.WithMessage("email and password are required")
	}

	if t.Settings.MaxUsers != tenant.Unlimited {
		count, err := s.users.CountDocuments(ctx, bson.D{})
		if err != nil {
			return nil, fmt.Errorf("auth: count users: %w", err)
		}
		if count >= t.Settings.MaxUsers {
			return nil, core.ErrUserLimitReached.WithMessage(fmt.Sprintf(
				"Maximum users (%d) reached for %s tier", t.Settings.MaxUsers, t.Tier))
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &User{
		Email:        strings.ToLower(params.Email),
		Name:         params.Name,
		PasswordHash: hash,
		Role:         RoleMember,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	res, err := s.users.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, core.ErrConflict.WithMessage("Email already registered for this tenant")
		}
		return nil, fmt.Errorf("auth: insert user: %w", err)
	}
	if id, ok := res.InsertedID.(bson.ObjectID); ok {
		user.ID = id
	}
	user.TenantID = t.ID

	token, err := s.issueToken(user, t)
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "user registered", slog.String("user_id", user.ID.Hex()))
	return &AuthResult{User: user, AccessToken: token}, nil
}

// LoginParams are the inputs for login.
type LoginParams struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials within the bound tenant and issues a token.
// The same email under another tenant is a different account; the scoped
// lookup guarantees credentials never cross tenants.
func (s *Service) Login(ctx context.Context, params LoginParams) (*AuthResult, error) {
	t, err := tenant.Current(ctx)
	if err != nil {
		return nil, err
	}

	var user User
	err = s.users.FindOne(ctx, bson.D{{Key: "email", Value: strings.ToLower(params.Email)}}, &user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, core.ErrUnauthorized
		}
		return nil, fmt.Errorf("auth: find user: %w", err)
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(params.Password)) != nil {
		return nil, core.ErrUnauthorized
	}

	token, err := s.issueToken(&user, t)
	if err != nil {
		return nil, err
	}
	return &AuthResult{AccessToken: token}, nil
}

func (s *Service) issueToken(user *User, t *tenant.Tenant) (string, error) {
	token, err := s.tokens.Issue(jwt.AccessClaims{
		Subject:    user.ID.Hex(),
		TenantID:   t.ID.Hex(),
		TenantSlug: t.Slug,
		Role:       user.Role,
	})
	if err != nil {
		return "", fmt.Errorf("auth: issue token: %w", err)
	}
	return token, nil
}
