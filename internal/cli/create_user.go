package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/circulation/internal/auth"
	"github.com/mrlokans/circulation/internal/config"
	"github.com/mrlokans/circulation/internal/database"
	"github.com/mrlokans/circulation/internal/database/users"
	"github.com/mrlokans/circulation/internal/entities"
)

// CreateUserCommand creates a staff account without going through the
// HTTP setup flow.
type CreateUserCommand struct {
	DatabasePath string
	Username     string
	Password     string
	Role         string

	out io.Writer
}

func NewCreateUserCommand() *CreateUserCommand {
	return &CreateUserCommand{out: os.Stdout}
}

func (cmd *CreateUserCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.StringVar(&cmd.Username, "username", "", "Account username (required)")
	fs.StringVar(&cmd.Password, "password", os.Getenv("LIBRARY_USER_PASSWORD"), "Account password (or set LIBRARY_USER_PASSWORD)")
	fs.StringVar(&cmd.Role, "role", string(entities.UserRoleLibrarian), "Account role: librarian or admin")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-user [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create a librarian or administrator account.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s create-user -username alice -role admin\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  LIBRARY_USER_PASSWORD=... %s create-user -username bob -db ./library.db\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Username == "" {
		fs.Usage()
		return fmt.Errorf("username is required")
	}
	if cmd.Password == "" {
		fs.Usage()
		return fmt.Errorf("password is required")
	}

	return nil
}

func (cmd *CreateUserCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	service := auth.NewService(users.NewRepository(db.DB), config.NewConfig().Auth)
	user, err := service.CreateUser(cmd.Username, cmd.Password, entities.UserRole(cmd.Role))
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(cmd.out, "Created %s account %q (id %d)\n", user.Role, user.Username, user.ID)
	return nil
}
