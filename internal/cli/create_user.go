package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/bookstore/internal/auth"
	"github.com/mrlokans/bookstore/internal/config"
	"github.com/mrlokans/bookstore/internal/database"
)

// CreateUserCommand adds a local account and optionally issues an API token.
type CreateUserCommand struct {
	Username     string
	Email        string
	Password     string
	Role         string
	DatabasePath string
	IssueToken   bool

	Auth config.Auth
	Out  io.Writer
}

func NewCreateUserCommand(cfg *config.Config) *CreateUserCommand {
	return &CreateUserCommand{
		DatabasePath: cfg.Database.Path,
		Auth:         cfg.Auth,
		Out:          os.Stdout,
	}
}

func (cmd *CreateUserCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)

	fs.StringVar(&cmd.Username, "username", "", "Login name, 3-64 characters (required)")
	fs.StringVar(&cmd.Email, "email", "", "Email address (required)")
	fs.StringVar(&cmd.Password, "password", os.Getenv("BOOKSTORE_PASSWORD"), "Password; defaults to $BOOKSTORE_PASSWORD")
	fs.StringVar(&cmd.Role, "role", "admin", "One of admin, editor, viewer")
	fs.StringVar(&cmd.DatabasePath, "db", cmd.DatabasePath, "Path to the catalog database")
	fs.BoolVar(&cmd.IssueToken, "token", true, "Issue and print an API token for the user")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-user [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create a user for AUTH_MODE=local.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s create-user -username admin -email admin@example.com -password change-me-please -token=false\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s create-user -username ci -email ci@example.com -role editor\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Username == "" || cmd.Email == "" || cmd.Password == "" {
		fs.Usage()
		return fmt.Errorf("username, email and password are required")
	}
	return nil
}

func (cmd *CreateUserCommand) Run() error {
	role, err := auth.ParseRole(cmd.Role)
	if err != nil {
		return err
	}

	db, err := database.NewDatabase(cmd.DatabasePath, "silent")
	if err != nil {
		return err
	}
	defer db.Close()

	service := auth.NewService(db.DB, cmd.Auth)
	user, err := service.CreateUser(cmd.Username, cmd.Email, cmd.Password, role)
	if err != nil {
		return fmt.Errorf("failed to create user %q: %w", cmd.Username, err)
	}
	fmt.Fprintf(cmd.Out, "Created %s user %q (id %d)\n", user.Role, user.Username, user.ID)

	if !cmd.IssueToken {
		return nil
	}
	token, err := service.GenerateToken(user.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.Out, "API token: %s\n", token)
	return nil
}
