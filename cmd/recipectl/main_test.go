package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/recipe-api/internal/config"
)

func setEnv(t *testing.T) {
	t.Helper()
	for k, v := range map[string]string{
		"APP_ENV": "test", "APP_PORT": "8080", "DB_USER": "u", "DB_HOST": "h",
		"DB_PORT": "3306", "DB_NAME": "n", "JWT_SECRET": "s",
		"ACCESS_TOKEN_TTL_MIN": "5", "REFRESH_TOKEN_TTL_DAYS": "1", "BCRYPT_COST": "4",
		"RECIPECTL_PASSWORD": "",
	} {
		t.Setenv(k, v)
	}
}

func mockApp(t *testing.T, answers ...string) (*app, sqlmock.Sqlmock, *bytes.Buffer) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, mock.ExpectationsWereMet()) })

	out := &bytes.Buffer{}
	a := &app{
		openDB: func(config.Config) (*sql.DB, error) { return db, nil },
		readPassword: func(string) (string, error) {
			if len(answers) == 0 {
				return "", errors.New("no more input")
			}
			next := answers[0]
			answers = answers[1:]
			return next, nil
		},
		out: out,
	}
	return a, mock, out
}

const insertUser = "INSERT INTO users (email, password_hash, is_active, is_staff, is_superuser) VALUES (?, ?, ?, ?, ?)"

func TestCreateSuperuser_Flag(t *testing.T) {
	setEnv(t)
	a, mock, out := mockApp(t)
	mock.ExpectExec(regexp.QuoteMeta(insertUser)).
		WithArgs("admin@example.com", sqlmock.AnyArg(), true, true, true).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectClose()

	err := a.command().Run(context.Background(), []string{"recipectl", "createsuperuser", "--email", "Admin@Example.com", "--password", "pw"})
	require.NoError(t, err)
	assert.Equal(t, "superuser admin@example.com created (id 7)\n", out.String())
}

func TestCreateSuperuser_Prompt(t *testing.T) {
	setEnv(t)
	a, mock, _ := mockApp(t, "secret", "secret")
	mock.ExpectExec(regexp.QuoteMeta(insertUser)).
		WithArgs("root@example.com", sqlmock.AnyArg(), true, true, true).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectClose()

	err := a.command().Run(context.Background(), []string{"recipectl", "createsuperuser", "--email", "root@example.com"})
	require.NoError(t, err)
}

func TestCreateSuperuser_PromptMismatch(t *testing.T) {
	setEnv(t)
	a, _, _ := mockApp(t, "one", "two")
	err := a.command().Run(context.Background(), []string{"recipectl", "createsuperuser", "--email", "x@example.com"})
	assert.EqualError(t, err, "passwords do not match")
}

func TestCreateSuperuser_MissingConfig(t *testing.T) {
	setEnv(t)
	t.Setenv("JWT_SECRET", "")
	a, _, _ := mockApp(t)
	err := a.command().Run(context.Background(), []string{"recipectl", "createsuperuser", "--email", "x@example.com", "--password", "pw"})
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestPromptPassword_NonTerminal(t *testing.T) {
	p := filepath.Join(t.TempDir(), "stdin")
	require.NoError(t, os.WriteFile(p, []byte("first\r\nsecond"), 0o600))
	f, err := os.Open(p)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	read := promptPassword(f, &bytes.Buffer{})
	got, err := read("Password: ")
	require.NoError(t, err)
	assert.Equal(t, "first", got)
	got, err = read("Password: ")
	require.NoError(t, err)
	assert.Equal(t, "second", got)
	_, err = read("Password: ")
	assert.Error(t, err)
}
