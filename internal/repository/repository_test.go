package repository

import (
	"database/sql"
	"database/sql/driver"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/recipe-api/internal/utils"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

// bcryptOf matches a bcrypt hash of the wrapped plaintext.
type bcryptOf string

func (p bcryptOf) Match(v driver.Value) bool {
	s, ok := v.(string)
	return ok && s != string(p) && utils.VerifyPassword(s, string(p))
}
