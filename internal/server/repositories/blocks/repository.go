// Package blocks persists block records. Every query is scoped by owner.
package blocks

import (
	"context"

	"github.com/dmitrijs2005/blockkeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, block *models.Block) (*models.Block, error)
	ListGroups(ctx context.Context, ownerID string) ([]int64, error)
	ListAll(ctx context.Context, ownerID string) ([]*models.Block, error)
	ListByLabel(ctx context.Context, ownerID, label string) ([]*models.Block, error)
	ListByGroup(ctx context.Context, ownerID string, groupKey int64) ([]*models.Block, error)
	IDs(ctx context.Context, ownerID string) ([]string, error)
	IDsByGroup(ctx context.Context, ownerID string, groupKey int64) ([]string, error)
	DeleteByIDs(ctx context.Context, ownerID string, ids []string) (int64, error)
}
