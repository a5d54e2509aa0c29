package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/blockkeeper/internal/common"
	"github.com/dmitrijs2005/blockkeeper/internal/dbx"
	"github.com/dmitrijs2005/blockkeeper/internal/logging"
	"github.com/dmitrijs2005/blockkeeper/internal/server/auth"
	"github.com/dmitrijs2005/blockkeeper/internal/server/models"
	"github.com/dmitrijs2005/blockkeeper/internal/server/repositories/repomanager"
)

// BlockService is the block ledger. Every operation is scoped to the
// identity's subject and fails with common.ErrorUnauthorized for anonymous
// callers.
type BlockService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	accounts    *AccountService
	log         logging.Logger
}

func NewBlockService(db *sql.DB, m repomanager.RepositoryManager, accounts *AccountService, log logging.Logger) *BlockService {
	if log == nil {
		log = logging.Nop{}
	}
	return &BlockService{
		db:          db,
		repomanager: m,
		accounts:    accounts,
		log:         log,
	}
}

// Create stores a new block owned by the caller and links it into the
// caller's owned set. Both steps share one transaction.
func (s *BlockService) Create(ctx context.Context, id auth.Identity, label, content string, groupKey, seqNum int64) (*models.Block, error) {
	owner, err := id.Require()
	if err != nil {
		return nil, err
	}
	if label == "" {
		return nil, fmt.Errorf("%w: label is required", common.ErrorValidation)
	}
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", common.ErrorValidation)
	}

	var created *models.Block
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		b, err := s.repomanager.Blocks(tx).Create(ctx, &models.Block{
			OwnerID:  owner,
			Label:    label,
			Content:  content,
			GroupKey: groupKey,
			SeqNum:   seqNum,
		})
		if err != nil {
			s.log.Error(ctx, "create block failed", "step", "insert", "user_id", owner, "error", err)
			return err
		}

		if err := s.accounts.LinkBlockTx(ctx, tx, owner, b.ID); err != nil {
			s.log.Error(ctx, "create block failed", "step", "link", "user_id", owner, "block_id", b.ID, "error", err)
			return err
		}

		created = b
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("create block: %w", err)
	}

	return created, nil
}

// ListGroups returns the caller's distinct group keys, newest first.
func (s *BlockService) ListGroups(ctx context.Context, id auth.Identity) ([]int64, error) {
	owner, err := id.Require()
	if err != nil {
		return nil, err
	}

	keys, err := s.repomanager.Blocks(s.db).ListGroups(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return keys, nil
}

// ListByLabel returns the caller's blocks with the given label in insertion
// order. An empty label returns every block ordered by group key descending
// and sequence number ascending.
func (s *BlockService) ListByLabel(ctx context.Context, id auth.Identity, label string) ([]*models.Block, error) {
	owner, err := id.Require()
	if err != nil {
		return nil, err
	}

	repo := s.repomanager.Blocks(s.db)

	var list []*models.Block
	if label == "" {
		list, err = repo.ListAll(ctx, owner)
	} else {
		list, err = repo.ListByLabel(ctx, owner, label)
	}
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	return list, nil
}

// ListByGroup returns the caller's blocks in groupKey ordered by sequence number.
func (s *BlockService) ListByGroup(ctx context.Context, id auth.Identity, groupKey int64) ([]*models.Block, error) {
	owner, err := id.Require()
	if err != nil {
		return nil, err
	}

	list, err := s.repomanager.Blocks(s.db).ListByGroup(ctx, owner, groupKey)
	if err != nil {
		return nil, fmt.Errorf("list group: %w", err)
	}
	return list, nil
}

// DeleteGroup removes every caller block in groupKey, unlinking them from the
// owned set first, and returns how many blocks were deleted.
func (s *BlockService) DeleteGroup(ctx context.Context, id auth.Identity, groupKey int64) (int64, error) {
	owner, err := id.Require()
	if err != nil {
		return 0, err
	}

	var deleted int64
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		blocks := s.repomanager.Blocks(tx)

		ids, err := blocks.IDsByGroup(ctx, owner, groupKey)
		if err != nil {
			s.log.Error(ctx, "delete group failed", "step", "find", "user_id", owner, "group_key", groupKey, "error", err)
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		if err := s.accounts.UnlinkBlocksTx(ctx, tx, owner, ids); err != nil {
			s.log.Error(ctx, "delete group failed", "step", "unlink", "user_id", owner, "group_key", groupKey, "error", err)
			return err
		}

		n, err := blocks.DeleteByIDs(ctx, owner, ids)
		if err != nil {
			s.log.Error(ctx, "delete group failed", "step", "delete", "user_id", owner, "group_key", groupKey, "error", err)
			return err
		}

		deleted = n
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("delete group: %w", err)
	}

	if deleted > 0 {
		s.log.Info(ctx, "block group deleted", "user_id", owner, "group_key", groupKey, "count", deleted)
	}
	return deleted, nil
}

// CheckConsistency compares the caller's owned set with the blocks they own.
// With repair set, dangling ids are unlinked and orphaned blocks are linked.
func (s *BlockService) CheckConsistency(ctx context.Context, id auth.Identity, repair bool) (*models.ConsistencyReport, error) {
	owner, err := id.Require()
	if err != nil {
		return nil, err
	}

	report := &models.ConsistencyReport{Dangling: []string{}, Orphaned: []string{}}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		owned, err := s.repomanager.Users(tx).BlockIDs(ctx, owner)
		if err != nil {
			return err
		}
		rows, err := s.repomanager.Blocks(tx).IDs(ctx, owner)
		if err != nil {
			return err
		}

		report.Dangling = difference(owned, rows)
		report.Orphaned = difference(rows, owned)

		if !repair || report.Consistent() {
			return nil
		}

		if err := s.accounts.UnlinkBlocksTx(ctx, tx, owner, report.Dangling); err != nil {
			return err
		}
		for _, blockID := range report.Orphaned {
			if err := s.accounts.LinkBlockTx(ctx, tx, owner, blockID); err != nil {
				return err
			}
		}
		report.Repaired = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("check consistency: %w", err)
	}

	if !report.Consistent() {
		s.log.Warn(ctx, "owned set out of sync", "user_id", owner,
			"dangling", len(report.Dangling), "orphaned", len(report.Orphaned), "repaired", report.Repaired)
	}
	return report, nil
}

// difference returns the sorted ids in a that are not in b.
func difference(a, b []string) []string {
	seen := make(map[string]struct{}, len(b))
	for _, id := range b {
		seen[id] = struct{}{}
	}
	out := []string{}
	for _, id := range a {
		if _, ok := seen[id]; !ok {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
