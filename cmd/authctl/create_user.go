package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/LucianoSainz/w5d1/internal/auth/service"
	"github.com/LucianoSainz/w5d1/internal/models"
	"github.com/LucianoSainz/w5d1/internal/services"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var errPasswordMismatch = errors.New("passwords do not match")

// roleValue is a flag holding a validated role
type roleValue struct {
	role models.Role
}

var _ pflag.Value = (*roleValue)(nil)

func (v *roleValue) String() string { return string(v.role) }

func (v *roleValue) Set(s string) error {
	role, err := models.ParseRole(s)
	if err != nil {
		return err
	}
	v.role = role
	return nil
}

func (v *roleValue) Type() string { return "role" }

// NewCreateUserCmd creates the create-user subcommand.
func NewCreateUserCmd(a *app) *cobra.Command {
	var (
		username      string
		role          roleValue
		passwordStdin bool
	)

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a user, optionally with a role",
		Long: `Create a user directly in the credential store. Web signup never assigns
a role, so this is how ADMIN and EDITOR accounts are made.

The password is prompted for twice on the terminal, or read from the first
line of stdin with --password-stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runCreateUser(cmd, username, role.role, passwordStdin)
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "username of the new user")
	cmd.Flags().VarP(&role, "role", "r", "role of the new user: ADMIN, EDITOR or empty")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

func (a *app) runCreateUser(cmd *cobra.Command, username string, role models.Role, passwordStdin bool) error {
	var (
		password string
		err      error
	)
	if passwordStdin {
		password, err = readLine(cmd.InOrStdin())
	} else {
		password, err = a.promptPassword(cmd.ErrOrStderr())
	}
	if err != nil {
		return err
	}

	cfg, zapLogger, err := a.setup()
	if err != nil {
		return err
	}
	defer zapLogger.Sync()

	ctx := context.Background()

	users, closeStore, err := a.openUsers(ctx, cfg, zapLogger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer closeStore()

	hasher, err := service.NewPasswordHasher(cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}

	user, err := services.NewAuthService(users, hasher, zapLogger).CreateUser(ctx, username, password, role)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrPasswordTooLong):
			return err
		case errors.Is(err, models.ErrValidation):
			return errors.New("username and password must not be empty")
		case errors.Is(err, models.ErrDuplicateUsername):
			return fmt.Errorf("user %q already exists", strings.TrimSpace(username))
		}
		return err
	}

	roleName := string(user.Role)
	if roleName == "" {
		roleName = "none"
	}
	cmd.Printf("Created user %q with id %d and role %s\n", user.Username, user.ID, roleName)
	return nil
}

// promptPassword reads the password twice from the terminal without echo
func (a *app) promptPassword(w io.Writer) (string, error) {
	fmt.Fprint(w, "Password: ")
	first, err := a.readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	fmt.Fprint(w, "Repeat password: ")
	second, err := a.readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if string(first) != string(second) {
		return "", errPasswordMismatch
	}
	return string(first), nil
}

// readLine returns the first line of r without its line ending
func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read password from stdin: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
