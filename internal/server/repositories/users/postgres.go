package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/blockkeeper/internal/common"
	"github.com/dmitrijs2005/blockkeeper/internal/dbx"
	"github.com/dmitrijs2005/blockkeeper/internal/server/models"
	"github.com/jackc/pgerrcode"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the user and fills in ID and CreatedAt. A unique violation
// on email is reported as common.ErrUserExists.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (email, password_hash, name, picture)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Email, user.PasswordHash, user.Name, user.Picture).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if dbx.PgCode(err) == pgerrcode.UniqueViolation {
			return nil, common.ErrUserExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT id, email, password_hash, name, picture, created_at FROM users
		 WHERE email = $1
		 `

	return r.getOne(ctx, query, email)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query :=
		`SELECT id, email, password_hash, name, picture, created_at FROM users
		 WHERE id = $1
		 `

	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg string) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.Picture, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || dbx.PgCode(err) == pgerrcode.InvalidTextRepresentation {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

// BlockIDs returns the user's owned-block set.
func (r *PostgresRepository) BlockIDs(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT block_id FROM user_blocks WHERE user_id = $1 ORDER BY block_id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ids, nil
}

// LinkBlock adds blockID to the owned set. Linking twice is a no-op. A
// missing user surfaces as common.ErrUserNotFound via the foreign key.
func (r *PostgresRepository) LinkBlock(ctx context.Context, userID, blockID string) error {
	query :=
		`INSERT INTO user_blocks (user_id, block_id)
		 VALUES ($1, $2)
		 ON CONFLICT DO NOTHING
		 `

	if _, err := r.db.ExecContext(ctx, query, userID, blockID); err != nil {
		switch dbx.PgCode(err) {
		case pgerrcode.ForeignKeyViolation, pgerrcode.InvalidTextRepresentation:
			return common.ErrUserNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// UnlinkBlocks removes the given ids from the owned set and returns how many
// were actually present.
func (r *PostgresRepository) UnlinkBlocks(ctx context.Context, userID string, blockIDs []string) (int64, error) {
	if len(blockIDs) == 0 {
		return 0, nil
	}

	query := `DELETE FROM user_blocks WHERE user_id = $1 AND block_id IN (` + dbx.Placeholders(2, len(blockIDs)) + `)`

	res, err := r.db.ExecContext(ctx, query, dbx.StringArgs([]any{userID}, blockIDs)...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}
