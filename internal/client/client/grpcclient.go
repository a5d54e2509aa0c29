package client

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/blockkeeper/internal/api"
	"github.com/dmitrijs2005/blockkeeper/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

type GRPCClient struct {
	conn   *grpc.ClientConn
	client *api.BlockKeeperClient

	mu          sync.RWMutex
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, common.BearerPrefix+token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token := s.Token(); token != "" {
		ctx = withAccessToken(ctx, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewGRPCClient connects lazily to endpointURL. Extra dial options are
// appended after the defaults (insecure transport, token interceptor).
func NewGRPCClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{}

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, opts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = api.NewBlockKeeperClient(conn)
	return c, nil
}

// SetToken sets the identity token sent with every call.
func (s *GRPCClient) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = token
}

func (s *GRPCClient) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) Register(ctx context.Context, email, secret string) (*api.User, error) {
	resp, err := s.client.Register(ctx, &api.RegisterRequest{Email: email, Secret: secret})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.User, nil
}

// Login authenticates and keeps the returned token for subsequent calls.
func (s *GRPCClient) Login(ctx context.Context, email, secret string) (string, error) {
	resp, err := s.client.Login(ctx, &api.LoginRequest{Email: email, Secret: secret})
	if err != nil {
		return "", mapError(err)
	}
	s.SetToken(resp.Token)
	return resp.Token, nil
}

// ExternalLogin exchanges an identity-broker assertion for a token and keeps it.
func (s *GRPCClient) ExternalLogin(ctx context.Context, assertion string) (string, error) {
	resp, err := s.client.ExternalLogin(ctx, &api.ExternalLoginRequest{Assertion: assertion})
	if err != nil {
		return "", mapError(err)
	}
	s.SetToken(resp.Token)
	return resp.Token, nil
}

func (s *GRPCClient) Me(ctx context.Context) (*api.User, error) {
	resp, err := s.client.Me(ctx, &api.MeRequest{})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.User, nil
}

func (s *GRPCClient) CreateBlock(ctx context.Context, label, content string, groupKey, seqNum int64) (*api.Block, error) {
	resp, err := s.client.CreateBlock(ctx, &api.CreateBlockRequest{Label: label, Content: content, GroupKey: api.Int64(groupKey), SeqNum: api.Int64(seqNum)})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Block, nil
}

func (s *GRPCClient) ListGroups(ctx context.Context) ([]int64, error) {
	resp, err := s.client.ListGroups(ctx, &api.ListGroupsRequest{})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.GroupKeys, nil
}

func (s *GRPCClient) ListBlocks(ctx context.Context, label string) ([]*api.Block, error) {
	resp, err := s.client.ListBlocks(ctx, &api.ListBlocksRequest{Label: label})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Blocks, nil
}

func (s *GRPCClient) ListGroup(ctx context.Context, groupKey int64) ([]*api.Block, error) {
	resp, err := s.client.ListGroup(ctx, &api.ListGroupRequest{GroupKey: api.Int64(groupKey)})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Blocks, nil
}

func (s *GRPCClient) DeleteGroup(ctx context.Context, groupKey int64) (int64, error) {
	resp, err := s.client.DeleteGroup(ctx, &api.DeleteGroupRequest{GroupKey: api.Int64(groupKey)})
	if err != nil {
		return 0, mapError(err)
	}
	return resp.Deleted, nil
}

func (s *GRPCClient) CheckConsistency(ctx context.Context, repair bool) (*api.CheckConsistencyResponse, error) {
	resp, err := s.client.CheckConsistency(ctx, &api.CheckConsistencyRequest{Repair: repair})
	if err != nil {
		return nil, mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &api.PingRequest{})
	if err != nil {
		return mapError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}
