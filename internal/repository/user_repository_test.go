package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var insertUserSQL = regexp.QuoteMeta(
	"INSERT INTO users (email, password_hash, is_active, is_staff, is_superuser) VALUES (?, ?, ?, ?, ?)")

func TestCreateUser_WithEmailSuccessful(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db, bcrypt.MinCost)

	mock.ExpectExec(insertUserSQL).
		WithArgs("test@test.com", bcryptOf("test123"), true, false, false).
		WillReturnResult(sqlmock.NewResult(1, 1))

	u, err := repo.CreateUser(context.Background(), "test@test.com", "test123")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), u.ID)
	assert.Equal(t, "test@test.com", u.Email)
	assert.True(t, u.CheckPassword("test123"))
	assert.False(t, u.CheckPassword("test1234"))
	assert.NotEqual(t, "test123", u.PasswordHash)
	assert.True(t, u.IsActive)
	assert.False(t, u.IsStaff)
	assert.False(t, u.IsSuperuser)
}

func TestCreateUser_EmailNormalized(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db, bcrypt.MinCost)

	mock.ExpectExec(insertUserSQL).
		WithArgs("test@test.com", bcryptOf("test123"), true, false, false).
		WillReturnResult(sqlmock.NewResult(2, 1))

	u, err := repo.CreateUser(context.Background(), "test@TEST.COM", "test123")
	require.NoError(t, err)
	assert.Equal(t, "test@test.com", u.Email)
}

func TestCreateUser_InvalidEmail(t *testing.T) {
	db, _ := newMock(t)
	repo := NewUserRepo(db, bcrypt.MinCost)

	for _, email := range []string{"", "   "} {
		_, err := repo.CreateUser(context.Background(), email, "test123")
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "email %q", email)
		assert.Equal(t, "email", verr.Field)
		assert.Equal(t, KindMissing, verr.Kind)
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db, bcrypt.MinCost)

	mock.ExpectExec(insertUserSQL).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	_, err := repo.CreateUser(context.Background(), "dup@test.com", "pw")
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateUser_DBError(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db, bcrypt.MinCost)

	mock.ExpectExec(insertUserSQL).WillReturnError(errors.New("db down"))

	_, err := repo.CreateUser(context.Background(), "a@test.com", "pw")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	assert.NotErrorIs(t, err, ErrEmailExists)
}

func TestCreateUser_ExtraOptions(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db, bcrypt.MinCost)

	mock.ExpectExec(insertUserSQL).
		WithArgs("staff@test.com", bcryptOf("pw"), false, true, false).
		WillReturnResult(sqlmock.NewResult(3, 1))

	u, err := repo.CreateUser(context.Background(), "staff@test.com", "pw", WithStaff(), WithInactive())
	require.NoError(t, err)
	assert.True(t, u.IsStaff)
	assert.False(t, u.IsActive)
}

func TestCreateSuperuser(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db, bcrypt.MinCost)

	mock.ExpectExec(insertUserSQL).
		WithArgs("test@test.com", bcryptOf("test123"), true, true, true).
		WillReturnResult(sqlmock.NewResult(9, 1))

	u, err := repo.CreateSuperuser(context.Background(), "test@test.com", "test123")
	require.NoError(t, err)
	assert.True(t, u.IsSuperuser)
	assert.True(t, u.IsStaff)
}

func TestGetByEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db, bcrypt.MinCost)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = ?")).
		WithArgs("test@test.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "is_active", "is_staff", "is_superuser", "created_at", "updated_at"}).
			AddRow(uint64(4), "test@test.com", "hash", true, false, false, now, now))

	u, err := repo.GetByEmail(context.Background(), " Test@Test.com ")
	require.NoError(t, err)
	assert.Equal(t, uint64(4), u.ID)
	assert.Equal(t, "hash", u.PasswordHash)
}

func TestGetByID_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db, bcrypt.MinCost)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = ?")).
		WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetPassword(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db, bcrypt.MinCost)
	q := regexp.QuoteMeta("UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?")

	mock.ExpectExec(q).WithArgs(bcryptOf("newpass"), uint64(4)).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SetPassword(context.Background(), 4, "newpass"))

	mock.ExpectExec(q).WithArgs(bcryptOf("newpass"), uint64(5)).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.SetPassword(context.Background(), 5, "newpass"), ErrUserNotFound)
}
