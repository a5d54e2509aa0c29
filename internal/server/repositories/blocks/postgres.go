package blocks

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/blockkeeper/internal/common"
	"github.com/dmitrijs2005/blockkeeper/internal/dbx"
	"github.com/dmitrijs2005/blockkeeper/internal/server/models"
	"github.com/jackc/pgerrcode"
)

const blockColumns = `id, owner_id, label, content, group_key, seq_num, created_at`

// PostgresRepository implements block storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the block and fills in ID and CreatedAt. An owner that does
// not exist is reported as common.ErrUserNotFound.
func (r *PostgresRepository) Create(ctx context.Context, block *models.Block) (*models.Block, error) {
	query :=
		`INSERT INTO blocks (owner_id, label, content, group_key, seq_num)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		block.OwnerID, block.Label, block.Content, block.GroupKey, block.SeqNum).Scan(&block.ID, &block.CreatedAt)

	if err != nil {
		switch dbx.PgCode(err) {
		case pgerrcode.ForeignKeyViolation, pgerrcode.InvalidTextRepresentation:
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return block, nil
}

// ListGroups returns the owner's distinct group keys, newest first.
func (r *PostgresRepository) ListGroups(ctx context.Context, ownerID string) ([]int64, error) {
	query := `SELECT DISTINCT group_key FROM blocks WHERE owner_id = $1 ORDER BY group_key DESC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	keys := []int64{}
	for rows.Next() {
		var k int64
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return keys, nil
}

// ListAll returns every block of the owner ordered by group key descending,
// then sequence number ascending.
func (r *PostgresRepository) ListAll(ctx context.Context, ownerID string) ([]*models.Block, error) {
	query := `SELECT ` + blockColumns + ` FROM blocks
		WHERE owner_id = $1
		ORDER BY group_key DESC, seq_num ASC, created_at ASC`

	return r.selectBlocks(ctx, query, ownerID)
}

// ListByLabel returns the owner's blocks with exactly this label in
// insertion order.
func (r *PostgresRepository) ListByLabel(ctx context.Context, ownerID, label string) ([]*models.Block, error) {
	query := `SELECT ` + blockColumns + ` FROM blocks
		WHERE owner_id = $1 AND label = $2
		ORDER BY created_at ASC, id ASC`

	return r.selectBlocks(ctx, query, ownerID, label)
}

// ListByGroup returns the owner's blocks in one group ordered by sequence number.
func (r *PostgresRepository) ListByGroup(ctx context.Context, ownerID string, groupKey int64) ([]*models.Block, error) {
	query := `SELECT ` + blockColumns + ` FROM blocks
		WHERE owner_id = $1 AND group_key = $2
		ORDER BY seq_num ASC, created_at ASC`

	return r.selectBlocks(ctx, query, ownerID, groupKey)
}

func (r *PostgresRepository) selectBlocks(ctx context.Context, query string, args ...any) ([]*models.Block, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.Block{}
	for rows.Next() {
		var item models.Block
		if err := rows.Scan(
			&item.ID, &item.OwnerID, &item.Label, &item.Content,
			&item.GroupKey, &item.SeqNum, &item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// IDs returns the ids of every block row owned by ownerID.
func (r *PostgresRepository) IDs(ctx context.Context, ownerID string) ([]string, error) {
	return r.selectIDs(ctx, `SELECT id FROM blocks WHERE owner_id = $1 ORDER BY id`, ownerID)
}

// IDsByGroup returns the ids of the owner's blocks in one group.
func (r *PostgresRepository) IDsByGroup(ctx context.Context, ownerID string, groupKey int64) ([]string, error) {
	return r.selectIDs(ctx, `SELECT id FROM blocks WHERE owner_id = $1 AND group_key = $2 ORDER BY seq_num`, ownerID, groupKey)
}

func (r *PostgresRepository) selectIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
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

// DeleteByIDs removes the owner's blocks with the given ids and returns how
// many rows were deleted. Ids belonging to other owners are never touched.
func (r *PostgresRepository) DeleteByIDs(ctx context.Context, ownerID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := `DELETE FROM blocks WHERE owner_id = $1 AND id IN (` + dbx.Placeholders(2, len(ids)) + `)`

	res, err := r.db.ExecContext(ctx, query, dbx.StringArgs([]any{ownerID}, ids)...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}
