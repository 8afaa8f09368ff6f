package cli

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"golang.org/x/term"

	"github.com/papersbook/storefront/internal/auth"
	"github.com/papersbook/storefront/internal/config"
	"github.com/papersbook/storefront/internal/database"
	"github.com/papersbook/storefront/internal/entities"
)

// CreateUserCommand creates a storefront account from the command line.
type CreateUserCommand struct {
	DatabasePath string
	Username     string
	Email        string
	Password     string
	Admin        bool
}

// NewCreateUserCommand creates a new CreateUserCommand
func NewCreateUserCommand() *CreateUserCommand {
	return &CreateUserCommand{}
}

// ParseFlags parses command line flags
func (cmd *CreateUserCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.StringVar(&cmd.Username, "username", "", "Username for the new account (required)")
	fs.StringVar(&cmd.Email, "email", "", "Email for the new account (required)")
	fs.StringVar(&cmd.Password, "password", "", "Password (prompted interactively when omitted)")
	fs.BoolVar(&cmd.Admin, "admin", false, "Create an administrator account")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-user [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create a storefront account.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s create-user -username alice -email alice@example.com\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s create-user -username admin -email admin@example.com -admin\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Username == "" || cmd.Email == "" {
		fs.Usage()
		return fmt.Errorf("username and email are required")
	}

	return nil
}

// Run executes the create-user command
func (cmd *CreateUserCommand) Run() error {
	cfg := config.NewConfig()

	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}

	db, err := database.NewDatabase(absDBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	password := cmd.Password
	if password == "" {
		password, err = promptPassword()
		if err != nil {
			return err
		}
	}

	role := entities.UserRoleReader
	if cmd.Admin {
		role = entities.UserRoleAdmin
	}

	service := auth.NewService(db.DB, cfg.Auth)
	user, err := service.CreateUser(cmd.Username, cmd.Email, password, role)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Printf("Created %s account %q (id %d)\n", user.Role, user.Username, user.ID)
	return nil
}

func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	first, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	fmt.Fprint(os.Stderr, "Confirm password: ")
	second, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password confirmation: %w", err)
	}

	if string(first) != string(second) {
		return "", fmt.Errorf("passwords do not match")
	}
	return string(first), nil
}
