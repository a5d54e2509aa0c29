package api

import (
	"context"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "blockkeeper.BlockKeeper"

const (
	MethodRegister         = "Register"
	MethodLogin            = "Login"
	MethodExternalLogin    = "ExternalLogin"
	MethodMe               = "Me"
	MethodCreateBlock      = "CreateBlock"
	MethodListGroups       = "ListGroups"
	MethodListBlocks       = "ListBlocks"
	MethodListGroup        = "ListGroup"
	MethodDeleteGroup      = "DeleteGroup"
	MethodCheckConsistency = "CheckConsistency"
	MethodPing             = "Ping"
)

// FullMethod returns the "/service/method" path of a BlockKeeper method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// BlockKeeperServer is implemented by the server-side dispatcher.
type BlockKeeperServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	ExternalLogin(context.Context, *ExternalLoginRequest) (*LoginResponse, error)
	Me(context.Context, *MeRequest) (*MeResponse, error)
	CreateBlock(context.Context, *CreateBlockRequest) (*CreateBlockResponse, error)
	ListGroups(context.Context, *ListGroupsRequest) (*ListGroupsResponse, error)
	ListBlocks(context.Context, *ListBlocksRequest) (*ListBlocksResponse, error)
	ListGroup(context.Context, *ListGroupRequest) (*ListBlocksResponse, error)
	DeleteGroup(context.Context, *DeleteGroupRequest) (*DeleteGroupResponse, error)
	CheckConsistency(context.Context, *CheckConsistencyRequest) (*CheckConsistencyResponse, error)
	Ping(context.Context, *PingRequest) (*PingResponse, error)
}

// ServiceDesc describes the BlockKeeper service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BlockKeeperServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodRegister, BlockKeeperServer.Register),
		unary(MethodLogin, BlockKeeperServer.Login),
		unary(MethodExternalLogin, BlockKeeperServer.ExternalLogin),
		unary(MethodMe, BlockKeeperServer.Me),
		unary(MethodCreateBlock, BlockKeeperServer.CreateBlock),
		unary(MethodListGroups, BlockKeeperServer.ListGroups),
		unary(MethodListBlocks, BlockKeeperServer.ListBlocks),
		unary(MethodListGroup, BlockKeeperServer.ListGroup),
		unary(MethodDeleteGroup, BlockKeeperServer.DeleteGroup),
		unary(MethodCheckConsistency, BlockKeeperServer.CheckConsistency),
		unary(MethodPing, BlockKeeperServer.Ping),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "blockkeeper",
}

// RegisterBlockKeeperServer registers impl on s.
func RegisterBlockKeeperServer(s grpc.ServiceRegistrar, impl BlockKeeperServer) {
	s.RegisterService(&ServiceDesc, impl)
}

func unary[Req, Resp any](method string, call func(BlockKeeperServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, decodeError(err)
			}
			if interceptor == nil {
				return call(srv.(BlockKeeperServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(BlockKeeperServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// decodeError reports an undecodable request body as a VALIDATION failure
// instead of the Internal status grpc attaches to codec errors.
func decodeError(err error) error {
	msg := "malformed request"
	if st, ok := status.FromError(err); ok && st.Message() != "" {
		msg = st.Message()
	}

	st := status.New(codes.InvalidArgument, msg)
	if detailed, derr := st.WithDetails(&errdetails.ErrorInfo{Reason: ReasonValidation, Domain: ErrorDomain}); derr == nil {
		st = detailed
	}
	return st.Err()
}
