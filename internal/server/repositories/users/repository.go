// Package users persists accounts and their owned-block sets.
package users

import (
	"context"

	"github.com/dmitrijs2005/blockkeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	BlockIDs(ctx context.Context, userID string) ([]string, error)
	LinkBlock(ctx context.Context, userID, blockID string) error
	UnlinkBlocks(ctx context.Context, userID string, blockIDs []string) (int64, error)
}
