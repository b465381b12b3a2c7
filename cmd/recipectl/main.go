// Command recipectl runs management tasks against the recipe database:
// applying migrations and creating superusers.
package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/iliyamo/recipe-api/internal/config"
	"github.com/iliyamo/recipe-api/internal/database"
	"github.com/iliyamo/recipe-api/internal/repository"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config.LoadDotEnv()
	a := &app{openDB: openDB, readPassword: promptPassword(os.Stdin, os.Stderr), out: os.Stdout}
	if err := a.command().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type app struct {
	openDB       func(cfg config.Config) (*sql.DB, error)
	readPassword func(prompt string) (string, error)
	out          io.Writer
}

func openDB(cfg config.Config) (*sql.DB, error) {
	return database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
}

func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:  "recipectl",
		Usage: "Recipe API management commands",
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "Apply pending database migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "status", Usage: "Print the current schema version and exit"},
				},
				Action: a.migrate,
			},
			{
				Name:  "createsuperuser",
				Usage: "Create a staff superuser account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Usage: "Account email", Required: true},
					&cli.StringFlag{
						Name:    "password",
						Usage:   "Account password (prompted when omitted)",
						Sources: cli.EnvVars("RECIPECTL_PASSWORD"),
					},
				},
				Action: a.createSuperuser,
			},
		},
	}
}

func (a *app) withDB(ctx context.Context, fn func(cfg config.Config, db *sql.DB) error) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	db, err := a.openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(cfg, db)
}

func (a *app) migrate(ctx context.Context, cmd *cli.Command) error {
	return a.withDB(ctx, func(_ config.Config, db *sql.DB) error {
		if !cmd.Bool("status") {
			if err := database.Migrate(ctx, db); err != nil {
				return err
			}
		}
		v, err := database.MigrationVersion(ctx, db)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "schema version %d\n", v)
		return nil
	})
}

func (a *app) createSuperuser(ctx context.Context, cmd *cli.Command) error {
	password := cmd.String("password")
	if password == "" {
		first, err := a.readPassword("Password: ")
		if err != nil {
			return err
		}
		again, err := a.readPassword("Password (again): ")
		if err != nil {
			return err
		}
		if first != again {
			return errors.New("passwords do not match")
		}
		password = first
	}
	if password == "" {
		return errors.New("password must not be empty")
	}

	return a.withDB(ctx, func(cfg config.Config, db *sql.DB) error {
		u, err := repository.NewUserRepo(db, cfg.BcryptCost).CreateSuperuser(ctx, cmd.String("email"), password)
		if err != nil {
			return fmt.Errorf("create superuser: %w", err)
		}
		fmt.Fprintf(a.out, "superuser %s created (id %d)\n", u, u.ID)
		return nil
	})
}

// promptPassword reads without echo when in is a terminal and falls back
// to reading a line otherwise.
func promptPassword(in *os.File, prompt io.Writer) func(string) (string, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		r := bufio.NewReader(in)
		return func(string) (string, error) {
			line, err := r.ReadString('\n')
			if err != nil && !(errors.Is(err, io.EOF) && line != "") {
				return "", err
			}
			return strings.TrimRight(line, "\r\n"), nil
		}
	}
	return func(p string) (string, error) {
		fmt.Fprint(prompt, p)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(prompt)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}
