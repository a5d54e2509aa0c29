package grpc

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/blockkeeper/internal/api"
	"github.com/dmitrijs2005/blockkeeper/internal/common"
	"github.com/dmitrijs2005/blockkeeper/internal/server/auth"
	"github.com/dmitrijs2005/blockkeeper/internal/server/models"
)

func (s *GRPCServer) Register(ctx context.Context, req *api.RegisterRequest) (*api.RegisterResponse, error) {
	u, err := s.accounts.Register(ctx, req.Email, req.Secret)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.RegisterResponse{User: toAPIUser(u)}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *api.LoginRequest) (*api.LoginResponse, error) {
	token, err := s.accounts.Login(ctx, req.Email, req.Secret)
	s.metrics.ObserveLogin("local", err == nil)
	if err != nil {
		return nil, loginStatus(err)
	}
	return &api.LoginResponse{Token: token}, nil
}

func (s *GRPCServer) ExternalLogin(ctx context.Context, req *api.ExternalLoginRequest) (*api.LoginResponse, error) {
	token, err := s.accounts.ExternalLogin(ctx, req.Assertion)
	s.metrics.ObserveLogin("external", err == nil)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.LoginResponse{Token: token}, nil
}

func (s *GRPCServer) Me(ctx context.Context, _ *api.MeRequest) (*api.MeResponse, error) {
	u, err := s.accounts.Me(ctx, auth.IdentityFromContext(ctx))
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.MeResponse{User: toAPIUser(u)}, nil
}

func (s *GRPCServer) CreateBlock(ctx context.Context, req *api.CreateBlockRequest) (*api.CreateBlockResponse, error) {
	id := auth.IdentityFromContext(ctx)
	if _, err := id.Require(); err != nil {
		return nil, toStatus(err)
	}
	groupKey, err := required("group_key", req.GroupKey)
	if err != nil {
		return nil, toStatus(err)
	}
	seqNum, err := required("seq_num", req.SeqNum)
	if err != nil {
		return nil, toStatus(err)
	}

	b, err := s.blocks.Create(ctx, id, req.Label, req.Content, groupKey, seqNum)
	if err != nil {
		return nil, toStatus(err)
	}
	s.metrics.AddBlocksCreated(1)
	return &api.CreateBlockResponse{Block: toAPIBlock(b)}, nil
}

func (s *GRPCServer) ListGroups(ctx context.Context, _ *api.ListGroupsRequest) (*api.ListGroupsResponse, error) {
	keys, err := s.blocks.ListGroups(ctx, auth.IdentityFromContext(ctx))
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.ListGroupsResponse{GroupKeys: keys}, nil
}

func (s *GRPCServer) ListBlocks(ctx context.Context, req *api.ListBlocksRequest) (*api.ListBlocksResponse, error) {
	list, err := s.blocks.ListByLabel(ctx, auth.IdentityFromContext(ctx), req.Label)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.ListBlocksResponse{Blocks: toAPIBlocks(list)}, nil
}

func (s *GRPCServer) ListGroup(ctx context.Context, req *api.ListGroupRequest) (*api.ListBlocksResponse, error) {
	id := auth.IdentityFromContext(ctx)
	if _, err := id.Require(); err != nil {
		return nil, toStatus(err)
	}
	groupKey, err := required("group_key", req.GroupKey)
	if err != nil {
		return nil, toStatus(err)
	}

	list, err := s.blocks.ListByGroup(ctx, id, groupKey)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.ListBlocksResponse{Blocks: toAPIBlocks(list)}, nil
}

func (s *GRPCServer) DeleteGroup(ctx context.Context, req *api.DeleteGroupRequest) (*api.DeleteGroupResponse, error) {
	id := auth.IdentityFromContext(ctx)
	if _, err := id.Require(); err != nil {
		return nil, toStatus(err)
	}
	groupKey, err := required("group_key", req.GroupKey)
	if err != nil {
		return nil, toStatus(err)
	}

	n, err := s.blocks.DeleteGroup(ctx, id, groupKey)
	if err != nil {
		return nil, toStatus(err)
	}
	s.metrics.AddBlocksDeleted(n)
	return &api.DeleteGroupResponse{Deleted: n}, nil
}

func (s *GRPCServer) CheckConsistency(ctx context.Context, req *api.CheckConsistencyRequest) (*api.CheckConsistencyResponse, error) {
	r, err := s.blocks.CheckConsistency(ctx, auth.IdentityFromContext(ctx), req.Repair)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.CheckConsistencyResponse{Dangling: r.Dangling, Orphaned: r.Orphaned, Repaired: r.Repaired}, nil
}

func (s *GRPCServer) Ping(ctx context.Context, _ *api.PingRequest) (*api.PingResponse, error) {
	return &api.PingResponse{Status: "OK"}, nil
}

func required(field string, v *int64) (int64, error) {
	if v == nil {
		return 0, fmt.Errorf("%w: %s is required", common.ErrorValidation, field)
	}
	return *v, nil
}

func toAPIUser(u *models.User) *api.User {
	out := &api.User{ID: u.ID, Email: u.Email, BlockCount: len(u.BlockIDs)}
	if u.Name != nil {
		out.Name = *u.Name
	}
	if u.Picture != nil {
		out.Picture = *u.Picture
	}
	return out
}

func toAPIBlock(b *models.Block) *api.Block {
	return &api.Block{
		ID:        b.ID,
		Label:     b.Label,
		Content:   b.Content,
		GroupKey:  b.GroupKey,
		SeqNum:    b.SeqNum,
		CreatedAt: b.CreatedAt,
	}
}

func toAPIBlocks(list []*models.Block) []*api.Block {
	out := make([]*api.Block, 0, len(list))
	for _, b := range list {
		out = append(out, toAPIBlock(b))
	}
	return out
}
