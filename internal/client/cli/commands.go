package cli

import (
	"context"
	"fmt"

	"github.com/iudanet/credgate/internal/validation"
	"github.com/iudanet/credgate/pkg/api"
)

// Run выполняет команду клиента
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "register":
		return c.RunRegister(ctx, args)
	case "login":
		return c.RunLogin(ctx, args)
	case "user":
		return c.RunUser(ctx, args)
	case "reset-password":
		return c.RunResetPassword(ctx, args)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

// credentials собирает email и пароль для register/login
func (c *Cli) credentials(args []string) (api.CredentialsRequest, error) {
	email, err := c.emailArg(args)
	if err != nil {
		return api.CredentialsRequest{}, err
	}

	password, err := c.getPassword("Password: ")
	if err != nil {
		return api.CredentialsRequest{}, err
	}

	req := api.CredentialsRequest{Email: email, Password: password}
	if err := validation.ValidateRequest(&req); err != nil {
		return api.CredentialsRequest{}, fmt.Errorf("invalid input: %w", err)
	}
	return req, nil
}

func (c *Cli) RunRegister(ctx context.Context, args []string) error {
	req, err := c.credentials(args)
	if err != nil {
		return err
	}

	resp, err := c.apiClient.Register(ctx, req)
	if err != nil {
		return err
	}

	c.io.Printf("✓ %s\n", resp.Message)
	return nil
}

func (c *Cli) RunLogin(ctx context.Context, args []string) error {
	req, err := c.credentials(args)
	if err != nil {
		return err
	}

	resp, err := c.apiClient.Login(ctx, req)
	if err != nil {
		return err
	}

	c.io.Printf("✓ %s\n", resp.Message)
	return nil
}

func (c *Cli) RunUser(ctx context.Context, args []string) error {
	email, err := c.emailArg(args)
	if err != nil {
		return err
	}

	user, err := c.apiClient.GetUser(ctx, email)
	if err != nil {
		return err
	}

	c.io.Printf("ID:    %d\n", user.ID)
	c.io.Printf("Email: %s\n", user.Email)
	return nil
}

func (c *Cli) RunResetPassword(ctx context.Context, args []string) error {
	email, err := c.emailArg(args)
	if err != nil {
		return err
	}

	password, err := c.getPassword("New password: ")
	if err != nil {
		return err
	}

	location, err := c.apiClient.ResetPassword(ctx, email, api.ResetPasswordRequest{Password: password})
	if err != nil {
		return err
	}

	c.io.Println("✓ Password reset")
	if location != "" {
		c.io.Printf("Redirect: %s\n", location)
	}
	return nil
}
