package main

import (
	"context"
	"fmt"

	"github.com/cantus/hymnal/internal/services"
	"github.com/cantus/hymnal/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin authenticates against the backend and stores the session locally.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	email := cmd.String("email")
	password := cmd.String("password")

	r.logger.Info("logging in", "email", email)

	user, err := r.session.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	r.writePlain("✓ Logged in as %s\n", user.DisplayName())
	if !user.Activated {
		r.writePlain("Note: account is not activated yet, the catalog may be unavailable\n")
	}
	return nil
}

// AuthLogout terminates the remote session and clears local tokens.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.session.Logout(ctx); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	return r.writePlain("✓ Logged out\n")
}

// AuthRegister creates an account with an activation code and logs in.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	req := services.RegisterRequest{
		Email:          cmd.String("email"),
		Password:       cmd.String("password"),
		FirstName:      cmd.String("first-name"),
		LastName:       cmd.String("last-name"),
		ActivationCode: cmd.String("code"),
	}

	r.logger.Info("registering account", "email", req.Email)

	user, err := r.session.Register(ctx, req)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	return r.writePlain("✓ Account created, logged in as %s\n", user.DisplayName())
}

// AuthStatus shows the stored session and user.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	r.writePlainHeader("Authentication Status")

	if r.session.SkipAuth() {
		r.writePlain("Mode: static token (login flow bypassed)\n")
	}

	user := r.session.User()
	if user == nil {
		r.writePlain("Not logged in\n")
		return nil
	}

	// activation happens server-side, refresh the stored role first
	if fresh, err := r.session.RefreshProfile(ctx); err == nil {
		user = fresh
	} else {
		r.logger.Debug("profile refresh failed, showing stored state", "error", err)
	}

	r.writePlain("User: %s <%s>\n", user.DisplayName(), user.Email)
	r.writePlain("Role: %s\n", user.Role)
	if user.Activated {
		r.writePlain("Activated: ✓\n")
	} else {
		r.writePlain("Activated: ✗\n")
	}

	token, err := r.session.CurrentToken(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve token: %w", err)
	}
	if token != "" {
		r.writePlain("Session: ✓ valid access token\n")
	} else {
		r.writePlain("Session: ✗ no usable token, log in again\n")
	}

	return nil
}

// AuthPasswordRequest asks the backend to send a reset mail.
func (r *Runner) AuthPasswordRequest(ctx context.Context, cmd *cli.Command) error {
	email := cmd.StringArg("email")
	if email == "" {
		return fmt.Errorf("%w: email argument is required", shared.ErrMissingArgument)
	}

	if err := r.session.RequestPasswordReset(ctx, email); err != nil {
		return err
	}

	return r.writePlain("✓ Reset mail requested for %s\n", email)
}

// AuthPasswordReset completes a password reset with the mailed token.
func (r *Runner) AuthPasswordReset(ctx context.Context, cmd *cli.Command) error {
	if err := r.session.ResetPassword(ctx, cmd.String("token"), cmd.String("password")); err != nil {
		return err
	}
	return r.writePlain("✓ Password updated, log in with the new password\n")
}
