package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"league-backend/internal/models"
	"league-backend/internal/store"
)

// ErrInvalidCredentials covers both an unknown email and a wrong
// password, so login responses don't reveal which accounts exist.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Accounts manages local password accounts and their league memberships.
type Accounts struct {
	store  store.UserStore
	secret string
}

func NewAccounts(s store.UserStore, secret string) *Accounts {
	return &Accounts{store: s, secret: secret}
}

// Register creates a local account and a member-role membership keyed by
// the account email.
func (a *Accounts) Register(ctx context.Context, email, name, password string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("invalid email address")
	}
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()
	if err := a.store.CreateLocalUser(ctx, &models.LocalUser{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    now,
	}); err != nil {
		return err
	}

	return a.store.SaveMembership(ctx, &models.Membership{
		UID:      email,
		Role:     RoleMember,
		JoinedAt: now,
	})
}

// Login verifies the password and issues a signed token carrying the
// membership's role and roster link.
func (a *Accounts) Login(ctx context.Context, email, password string) (string, *UserClaims, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	u, err := a.store.GetLocalUser(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	claims := &UserClaims{Email: u.Email, Name: u.Name, Role: RoleMember}
	if mem, err := a.store.GetMembership(ctx, email); err == nil {
		claims.Role = mem.Role
		claims.PlayerID = mem.PlayerID
	} else if !errors.Is(err, store.ErrNotFound) {
		return "", nil, err
	}

	token, err := GenerateToken(claims, a.secret)
	if err != nil {
		return "", nil, fmt.Errorf("issuing token: %w", err)
	}
	return token, claims, nil
}

// LinkPlayer ties an account to a roster player and optionally promotes
// its role. Empty role leaves the current role unchanged.
func (a *Accounts) LinkPlayer(ctx context.Context, email, playerID, role string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	mem, err := a.store.GetMembership(ctx, email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		mem = &models.Membership{UID: email, Role: RoleMember, JoinedAt: time.Now()}
	}
	mem.PlayerID = playerID
	if role != "" {
		if role != RoleMember && role != RoleCommissioner {
			return fmt.Errorf("unknown role %q", role)
		}
		mem.Role = role
	}
	return a.store.SaveMembership(ctx, mem)
}
