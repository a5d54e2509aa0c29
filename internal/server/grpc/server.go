// Package grpc is the operation dispatcher: it exposes the account directory
// and block ledger as the blockkeeper.BlockKeeper gRPC service.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/blockkeeper/internal/api"
	"github.com/dmitrijs2005/blockkeeper/internal/logging"
	"github.com/dmitrijs2005/blockkeeper/internal/server/auth"
	"github.com/dmitrijs2005/blockkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/blockkeeper/internal/server/services"
	"google.golang.org/grpc"
)

type GRPCServer struct {
	address  string
	accounts *services.AccountService
	blocks   *services.BlockService
	tokens   *auth.TokenService
	metrics  *metrics.Metrics
	logger   logging.Logger
}

var _ api.BlockKeeperServer = (*GRPCServer)(nil)

// NewGRPCServer builds the dispatcher. m may be nil.
func NewGRPCServer(a string, l logging.Logger, accounts *services.AccountService, blocks *services.BlockService,
	tokens *auth.TokenService, m *metrics.Metrics) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		accounts: accounts,
		blocks:   blocks,
		tokens:   tokens,
		metrics:  m,
	}
}

// NewServer returns a grpc.Server with the interceptor chain and the
// BlockKeeper service registered.
func (s *GRPCServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.identityInterceptor))
	srv := grpc.NewServer(opts...)
	api.RegisterBlockKeeperServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
