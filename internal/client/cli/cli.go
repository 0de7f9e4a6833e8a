package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/iudanet/credgate/internal/client/iocli"
	"github.com/iudanet/credgate/pkg/api"
)

// PasswordEnv задает пароль для неинтерактивного запуска
const PasswordEnv = "CREDGATE_PASSWORD"

// APIClient это операции credgate, которые использует CLI
type APIClient interface {
	Register(ctx context.Context, req api.CredentialsRequest) (*api.MessageResponse, error)
	Login(ctx context.Context, req api.CredentialsRequest) (*api.MessageResponse, error)
	GetUser(ctx context.Context, email string) (*api.UserResponse, error)
	ResetPassword(ctx context.Context, email string, req api.ResetPasswordRequest) (string, error)
}

// Passwords источники пароля кроме переменной окружения и интерактивного ввода
type Passwords struct {
	FromFile string
	FromArgs string
}

type Cli struct {
	apiClient APIClient
	io        iocli.IO
	getenv    func(string) string
	passwords Passwords
}

func New(apiClient APIClient, io iocli.IO, passwords Passwords) *Cli {
	return &Cli{
		apiClient: apiClient,
		io:        io,
		getenv:    os.Getenv,
		passwords: passwords,
	}
}

// getPassword получает пароль из источников с приоритетом:
// 1. Переменная окружения CREDGATE_PASSWORD
// 2. Файл из --password-file
// 3. Параметр --password
// 4. Интерактивный ввод
func (c *Cli) getPassword(prompt string) (string, error) {
	if envPassword := c.getenv(PasswordEnv); envPassword != "" {
		return envPassword, nil
	}

	if c.passwords.FromFile != "" {
		content, err := os.ReadFile(c.passwords.FromFile)
		if err != nil {
			return "", fmt.Errorf("failed to read password file: %w", err)
		}
		// Убираем trailing newline/whitespace
		password := strings.TrimSpace(string(content))
		if password == "" {
			return "", errors.New("password file is empty")
		}
		return password, nil
	}

	if c.passwords.FromArgs != "" {
		return c.passwords.FromArgs, nil
	}

	password, err := c.io.ReadPassword(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read password from stdin: %w", err)
	}
	if password == "" {
		return "", errors.New("password cannot be empty")
	}

	return password, nil
}

// emailArg берет email из аргументов или спрашивает его
func (c *Cli) emailArg(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}

	email, err := c.io.ReadInput("Email: ")
	if err != nil {
		return "", fmt.Errorf("failed to read email: %w", err)
	}
	if email == "" {
		return "", errors.New("email cannot be empty")
	}
	return email, nil
}

func PrintUsage(io iocli.IO) {
	io.Println("credgate client")
	io.Println()
	io.Println("Signs requests like the upstream gateway and calls the credgate server.")
	io.Println()
	io.Println("Usage:")
	io.Println("  credgate-client [OPTIONS] COMMAND [EMAIL]")
	io.Println()
	io.Println("Options:")
	io.Println("  --version               Show version information")
	io.Println("  --server URL            Server URL (default: http://localhost:5000)")
	io.Println("  --key PATH              Gateway private key in PEM (default: private.pem)")
	io.Println("  --alg NAME              Signature algorithm (default: RS256)")
	io.Println("  --password PASSWORD     Password (not recommended, use env var or file)")
	io.Println("  --password-file PATH    Path to file containing the password")
	io.Println()
	io.Println("Password Priority (highest to lowest):")
	io.Println("  1. CREDGATE_PASSWORD environment variable")
	io.Println("  2. --password-file (file path)")
	io.Println("  3. --password (command line)")
	io.Println("  4. Interactive prompt (fallback)")
	io.Println()
	io.Println("Commands:")
	io.Println("  register [EMAIL]        Register new user")
	io.Println("  login [EMAIL]           Check email and password")
	io.Println("  user [EMAIL]            Show user id")
	io.Println("  reset-password [EMAIL]  Set a new password")
	io.Println()
	io.Println("Examples:")
	io.Println("  credgate-client register a@x.com")
	io.Println("  CREDGATE_PASSWORD=pw1 credgate-client login a@x.com")
	io.Println("  credgate-client --server https://example.com user a@x.com")
}
