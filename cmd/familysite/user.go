package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	ur "github.com/Leopold1975/familysite/internal/familysite/repository/userrepo/postgres"
	"github.com/Leopold1975/familysite/internal/familysite/services/authservice"
	"github.com/Leopold1975/familysite/internal/pkg/pgtools"
	"github.com/Leopold1975/familysite/pkg/logger"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var errPasswordMismatch = errors.New("passwords do not match")

func newUserCommand(load configLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage site accounts",
	}

	cmd.AddCommand(newUserAddCommand(load))

	return cmd
}

func newUserAddCommand(load configLoader) *cobra.Command {
	var (
		username string
		level    int
		email    string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an account with an explicit access level",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if level < 0 {
				return fmt.Errorf("%w: level must not be negative", authservice.ErrInvalidInput)
			}

			cfg, err := load()
			if err != nil {
				return err
			}

			password, err := promptPassword(os.Stdin, cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("read password error: %w", err)
			}

			lg, err := logger.New(cfg.Logger)
			if err != nil {
				return fmt.Errorf("can't get logger error: %w", err)
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			db, err := pgtools.Open(ctx, cfg.PostgresDB)
			if err != nil {
				return err
			}
			defer db.Close()

			as, err := authservice.New(ur.New(db), cfg.Auth, lg)
			if err != nil {
				return err
			}

			req := authservice.RegisterRequest{Username: username, Password: password} //nolint:exhaustruct
			req.Profile.Email = email

			if err := as.CreateUser(ctx, req, level); err != nil {
				return fmt.Errorf("create user error: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created %s with level %d\n", username, level)

			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "account name")
	cmd.Flags().IntVar(&level, "level", 1, "access level")
	cmd.Flags().StringVar(&email, "email", "", "contact email")
	_ = cmd.MarkFlagRequired("username") //nolint:errcheck

	return cmd
}

// promptPassword asks twice. Input from a terminal is not echoed; piped input
// is read line by line.
func promptPassword(in *os.File, out io.Writer) (string, error) {
	fd := int(in.Fd())

	var read func() (string, error)

	if term.IsTerminal(fd) {
		read = func() (string, error) {
			b, err := term.ReadPassword(fd)
			fmt.Fprintln(out)

			return string(b), err
		}
	} else {
		r := bufio.NewReader(in)
		read = func() (string, error) {
			line, err := r.ReadString('\n')
			if err != nil && !(errors.Is(err, io.EOF) && line != "") {
				return "", err
			}

			return strings.TrimRight(line, "\r\n"), nil
		}
	}

	fmt.Fprint(out, "Password: ")

	p1, err := read()
	if err != nil {
		return "", err
	}

	fmt.Fprint(out, "Confirm password: ")

	p2, err := read()
	if err != nil {
		return "", err
	}

	// spaces are part of the password, as they are on the web form
	if strings.TrimSpace(p1) == "" {
		return "", fmt.Errorf("%w: password cannot be empty", authservice.ErrInvalidInput)
	}

	if p1 != p2 {
		return "", errPasswordMismatch
	}

	return p1, nil
}
