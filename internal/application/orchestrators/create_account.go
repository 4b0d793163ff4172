package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"parish/internal/domain/account"
	"parish/internal/domain/actor"
)

// AccountStoreForCreate defines the store interface needed by Signup.
type AccountStoreForCreate interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
	Count(ctx context.Context) (int, error)
}

// SignupInput carries input for the signup orchestrator.
type SignupInput struct {
	Email           string
	Password        string
	ConfirmPassword string
	FirstName       string
	MiddleName      string
	LastName        string
	Gender          string
	Mobile          string
	Birthday        string // YYYY-MM-DD
}

// SignupDeps holds dependencies for Signup.
type SignupDeps struct {
	AccountStore AccountStoreForCreate
	RecordStore  RecordStoreForSave
	GenerateID   func() string
	Now          func() time.Time
}

var (
	ErrEmailAlreadyExists = errors.New("an account with this email already exists")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrMissingName        = errors.New("first and last name are required")
)

// ExecuteSignup registers a parishioner: a profile row in user_tbl and
// a member account linked to it.
// PRE: Valid email, matching passwords >= 12 chars, first and last name set
// POST: Profile and account created; account holds the profile id
// INVARIANT: Email must be unique
func ExecuteSignup(ctx context.Context, input SignupInput, deps SignupDeps) (string, error) {
	if input.Email == "" {
		return "", account.ErrEmptyEmail
	}
	if input.Password == "" {
		return "", account.ErrEmptyPassword
	}
	if input.Password != input.ConfirmPassword {
		return "", ErrPasswordMismatch
	}
	if input.FirstName == "" || input.LastName == "" {
		return "", ErrMissingName
	}

	// Check if email already exists
	if _, err := deps.AccountStore.GetByEmail(ctx, input.Email); err == nil {
		return "", ErrEmailAlreadyExists
	}

	profileID := deps.GenerateID()
	profile := map[string]any{
		"id":             profileID,
		"user_firstname": input.FirstName,
		"user_middle":    input.MiddleName,
		"user_lastname":  input.LastName,
		"user_gender":    input.Gender,
		"user_email":     input.Email,
		"user_mobile":    input.Mobile,
		"user_bday":      input.Birthday,
	}
	if _, err := deps.RecordStore.Insert(ctx, "user_tbl", profile); err != nil {
		return "", err
	}

	acct := account.Account{
		ID:        deps.GenerateID(),
		Email:     input.Email,
		Role:      account.RoleMember,
		ProfileID: profileID,
		CreatedAt: deps.Now(),
	}

	// Validate domain rules
	if err := acct.Validate(); err != nil {
		return "", err
	}

	// Set password (handles hashing and length validation)
	if err := acct.SetPassword(input.Password); err != nil {
		return "", err
	}

	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return "", err
	}

	slog.Info("auth_event", "event", "account_created", "email", input.Email, "role", acct.Role)

	return acct.ID, nil
}

// SeedAdminDeps holds dependencies for SeedAdmin.
type SeedAdminDeps struct {
	AccountStore AccountStoreForCreate
	RecordStore  RecordStoreForSave
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteSeedAdmin creates a default admin account if no accounts exist.
// PRE: Database is initialized
// POST: Admin account and admin_tbl profile created if count == 0
func ExecuteSeedAdmin(ctx context.Context, deps SeedAdminDeps, email, password string) error {
	count, err := deps.AccountStore.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil // Accounts already exist, skip seeding
	}

	profileID := deps.GenerateID()
	profile := map[string]any{
		"id":              profileID,
		"admin_firstname": "Parish",
		"admin_lastname":  "Administrator",
		"admin_email":     email,
	}
	if _, err := deps.RecordStore.Insert(ctx, "admin_tbl", profile); err != nil {
		return err
	}

	acct := account.Account{
		ID:        deps.GenerateID(),
		Email:     email,
		Role:      account.RoleAdmin,
		ProfileID: profileID,
		CreatedAt: deps.Now(),
	}
	if err := acct.Validate(); err != nil {
		return err
	}
	if err := acct.SetPassword(password); err != nil {
		return err
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return err
	}

	slog.Info("auth_event", "event", "admin_seeded", "email", email)
	return nil
}

// SystemActor is the identity recorded for writes not triggered by a
// signed-in administrator.
var SystemActor = actor.Actor{Name: "Unknown", Email: "system@parish.local"}
