package orchestrators

import (
	"context"
	"log/slog"
	"math/rand/v2"

	"activityhub/internal/domain/identity"
)

// loginIDRange bounds the synthetic user id.
const loginIDRange = 1000

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Email    string
	Password string
	UserType string
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	RandomID func() int // nil uses math/rand in [0, 1000)
}

// ExecuteLogin synthesizes an identity for a Gmail address. The password is
// not checked; see package identity.
// PRE: none
// POST: Returns a user with a normalized email and derived name, or
// identity.ErrInvalidCredentials for any other address
func ExecuteLogin(_ context.Context, input LoginInput, deps LoginDeps) (identity.User, error) {
	email := identity.NormalizeEmail(input.Email)
	if !identity.IsGmail(email) {
		slog.Info("auth_event", "event", "login_failed", "email", email, "reason", "not_gmail")
		return identity.User{}, identity.ErrInvalidCredentials
	}

	randomID := deps.RandomID
	if randomID == nil {
		randomID = func() int { return rand.IntN(loginIDRange) }
	}

	user := identity.User{
		ID:       randomID(),
		Name:     identity.DisplayName(email),
		Email:    email,
		UserType: input.UserType,
	}
	slog.Info("auth_event", "event", "login_success", "email", email, "user_type", user.UserType, "reason", "placeholder_login")
	return user, nil
}
