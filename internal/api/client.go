package api

import (
	"context"

	"google.golang.org/grpc"
)

// BlockKeeperClient is a typed client for the BlockKeeper service.
type BlockKeeperClient struct {
	cc grpc.ClientConnInterface
}

func NewBlockKeeperClient(cc grpc.ClientConnInterface) *BlockKeeperClient {
	return &BlockKeeperClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BlockKeeperClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	return invoke[RegisterResponse](ctx, c.cc, MethodRegister, in, opts)
}

func (c *BlockKeeperClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, MethodLogin, in, opts)
}

func (c *BlockKeeperClient) ExternalLogin(ctx context.Context, in *ExternalLoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, MethodExternalLogin, in, opts)
}

func (c *BlockKeeperClient) Me(ctx context.Context, in *MeRequest, opts ...grpc.CallOption) (*MeResponse, error) {
	return invoke[MeResponse](ctx, c.cc, MethodMe, in, opts)
}

func (c *BlockKeeperClient) CreateBlock(ctx context.Context, in *CreateBlockRequest, opts ...grpc.CallOption) (*CreateBlockResponse, error) {
	return invoke[CreateBlockResponse](ctx, c.cc, MethodCreateBlock, in, opts)
}

func (c *BlockKeeperClient) ListGroups(ctx context.Context, in *ListGroupsRequest, opts ...grpc.CallOption) (*ListGroupsResponse, error) {
	return invoke[ListGroupsResponse](ctx, c.cc, MethodListGroups, in, opts)
}

func (c *BlockKeeperClient) ListBlocks(ctx context.Context, in *ListBlocksRequest, opts ...grpc.CallOption) (*ListBlocksResponse, error) {
	return invoke[ListBlocksResponse](ctx, c.cc, MethodListBlocks, in, opts)
}

func (c *BlockKeeperClient) ListGroup(ctx context.Context, in *ListGroupRequest, opts ...grpc.CallOption) (*ListBlocksResponse, error) {
	return invoke[ListBlocksResponse](ctx, c.cc, MethodListGroup, in, opts)
}

func (c *BlockKeeperClient) DeleteGroup(ctx context.Context, in *DeleteGroupRequest, opts ...grpc.CallOption) (*DeleteGroupResponse, error) {
	return invoke[DeleteGroupResponse](ctx, c.cc, MethodDeleteGroup, in, opts)
}

func (c *BlockKeeperClient) CheckConsistency(ctx context.Context, in *CheckConsistencyRequest, opts ...grpc.CallOption) (*CheckConsistencyResponse, error) {
	return invoke[CheckConsistencyResponse](ctx, c.cc, MethodCheckConsistency, in, opts)
}

func (c *BlockKeeperClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, MethodPing, in, opts)
}
