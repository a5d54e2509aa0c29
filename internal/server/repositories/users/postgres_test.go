package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/blockkeeper/internal/common"
	"github.com/dmitrijs2005/blockkeeper/internal/server/models"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func strptr(s string) *string { return &s }

const (
	insertUserQuery = `(?s)^INSERT\s+INTO\s+users\s*\(email,\s*password_hash,\s*name,\s*picture\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*RETURNING\s+id,\s*created_at\s*$`
	selectByEmail   = `(?s)^SELECT\s+id,\s*email,\s*password_hash,\s*name,\s*picture,\s*created_at\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1\s*$`
	selectByID      = `(?s)^SELECT\s+id,\s*email,\s*password_hash,\s*name,\s*picture,\s*created_at\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s*$`
)

var userColumns = []string{"id", "email", "password_hash", "name", "picture", "created_at"}

func TestCreate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(insertUserQuery).
		WithArgs("alice@example.com", "hash", nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("u-1", now))

	got, err := repo.Create(context.Background(), &models.User{Email: "alice@example.com", PasswordHash: strptr("hash")})
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.ID)
	assert.Equal(t, now, got.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_ExternalUserWithoutHash(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertUserQuery).
		WithArgs("bob@example.com", nil, "Bob", "https://img/bob.png").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("u-2", time.Now()))

	got, err := repo.Create(context.Background(), &models.User{
		Email: "bob@example.com", Name: strptr("Bob"), Picture: strptr("https://img/bob.png"),
	})
	require.NoError(t, err)
	assert.Equal(t, "u-2", got.ID)
	assert.Nil(t, got.PasswordHash)
}

func TestCreate_UniqueViolation(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertUserQuery).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

	_, err := repo.Create(context.Background(), &models.User{Email: "alice@example.com", PasswordHash: strptr("h")})
	assert.ErrorIs(t, err, common.ErrUserExists)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertUserQuery).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{Email: "alice@example.com"})
	require.Error(t, err)
	assert.Regexp(t, regexp.MustCompile(`db error: .*db down`), err.Error())
}

func TestGetByEmail(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		setup   func(sqlmock.Sqlmock)
		wantErr error
		want    *models.User
	}{
		{
			name: "found",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(selectByEmail).WithArgs("alice@example.com").
					WillReturnRows(sqlmock.NewRows(userColumns).AddRow("u-1", "alice@example.com", "hash", nil, nil, now))
			},
			want: &models.User{ID: "u-1", Email: "alice@example.com", PasswordHash: strptr("hash"), CreatedAt: now},
		},
		{
			name: "not found",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(selectByEmail).WithArgs("ghost@example.com").WillReturnError(sql.ErrNoRows)
			},
			wantErr: common.ErrorNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepoWithMock(t)
			tt.setup(mock)

			email := "alice@example.com"
			if tt.wantErr != nil {
				email = "ghost@example.com"
			}
			got, err := repo.GetByEmail(context.Background(), email)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetByID_InvalidUUIDIsNotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(selectByID).WithArgs("nope").
		WillReturnError(&pgconn.PgError{Code: pgerrcode.InvalidTextRepresentation})

	_, err := repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetByID_ExternalProfile(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(selectByID).WithArgs("u-2").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow("u-2", "bob@example.com", nil, "Bob", "pic", now))

	got, err := repo.GetByID(context.Background(), "u-2")
	require.NoError(t, err)
	assert.Nil(t, got.PasswordHash)
	require.NotNil(t, got.Name)
	assert.Equal(t, "Bob", *got.Name)
	assert.Equal(t, "pic", *got.Picture)
}

func TestBlockIDs(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`SELECT block_id FROM user_blocks WHERE user_id = \$1`).WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"block_id"}).AddRow("b-1").AddRow("b-2"))

	ids, err := repo.BlockIDs(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"b-1", "b-2"}, ids)
}

func TestBlockIDs_EmptyIsNotNil(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`SELECT block_id FROM user_blocks`).WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"block_id"}))

	ids, err := repo.BlockIDs(context.Background(), "u-1")
	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)
}

func TestLinkBlock(t *testing.T) {
	const q = `(?s)^INSERT\s+INTO\s+user_blocks\s*\(user_id,\s*block_id\)\s*VALUES\s*\(\$1,\s*\$2\)\s*ON\s+CONFLICT\s+DO\s+NOTHING\s*$`

	tests := []struct {
		name    string
		dbErr   error
		wantErr error
	}{
		{name: "ok"},
		{name: "user vanished", dbErr: &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}, wantErr: common.ErrUserNotFound},
		{name: "db error", dbErr: errors.New("conn reset"), wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepoWithMock(t)
			exp := mock.ExpectExec(q).WithArgs("u-1", "b-1")
			if tt.dbErr != nil {
				exp.WillReturnError(tt.dbErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, 1))
			}

			err := repo.LinkBlock(context.Background(), "u-1", "b-1")
			switch {
			case tt.dbErr == nil:
				assert.NoError(t, err)
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			default:
				assert.ErrorContains(t, err, "db error: conn reset")
			}
		})
	}
}

func TestUnlinkBlocks(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`DELETE FROM user_blocks WHERE user_id = \$1 AND block_id IN \(\$2, \$3\)`).
		WithArgs("u-1", "b-1", "b-missing").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := repo.UnlinkBlocks(context.Background(), "u-1", []string{"b-1", "b-missing"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUnlinkBlocks_EmptyIsNoop(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	n, err := repo.UnlinkBlocks(context.Background(), "u-1", nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	require.NoError(t, mock.ExpectationsWereMet())
}
