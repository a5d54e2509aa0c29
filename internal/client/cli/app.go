package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/blockkeeper/internal/api"
	"github.com/dmitrijs2005/blockkeeper/internal/buildinfo"
	"github.com/dmitrijs2005/blockkeeper/internal/client/client"
	"github.com/dmitrijs2005/blockkeeper/internal/client/config"
	"github.com/dmitrijs2005/blockkeeper/internal/filex"
	"github.com/urfave/cli/v2"
)

// Client is the part of client.GRPCClient the commands use.
type Client interface {
	Register(ctx context.Context, email, secret string) (*api.User, error)
	Login(ctx context.Context, email, secret string) (string, error)
	ExternalLogin(ctx context.Context, assertion string) (string, error)
	SetToken(token string)
	Me(ctx context.Context) (*api.User, error)
	CreateBlock(ctx context.Context, label, content string, groupKey, seqNum int64) (*api.Block, error)
	ListGroups(ctx context.Context) ([]int64, error)
	ListBlocks(ctx context.Context, label string) ([]*api.Block, error)
	ListGroup(ctx context.Context, groupKey int64) ([]*api.Block, error)
	DeleteGroup(ctx context.Context, groupKey int64) (int64, error)
	CheckConsistency(ctx context.Context, repair bool) (*api.CheckConsistencyResponse, error)
	Ping(ctx context.Context) error
	Close() error
}

type App struct {
	in   *bufio.Reader
	out  io.Writer
	dial func(cfg *config.Config) (Client, error)
}

// NewApp builds blockctl reading prompts from in and printing to out.
func NewApp(in io.Reader, out io.Writer) *App {
	return &App{
		in:  bufio.NewReader(in),
		out: out,
		dial: func(cfg *config.Config) (Client, error) {
			return client.NewGRPCClient(cfg.ServerEndpointAddr)
		},
	}
}

// Run parses args (args[0] is the program name) and executes the command.
func (a *App) Run(ctx context.Context, args []string) error {
	return a.cli().RunContext(ctx, args)
}

func (a *App) cli() *cli.App {
	return &cli.App{
		Name:      "blockctl",
		Usage:     "manage your blocks on a BlockKeeper server",
		Version:   buildinfo.Version,
		Flags:     config.Flags(),
		Writer:    a.out,
		ErrWriter: a.out,
		Commands:  a.commands(),
	}
}

// session is what a command action receives: a connected client carrying
// the stored token and a context bounded by the configured timeout.
type session struct {
	ctx    context.Context
	cfg    *config.Config
	client Client
}

func (a *App) action(fn func(s *session, c *cli.Context) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg := config.FromContext(c)

		cl, err := a.dial(cfg)
		if err != nil {
			return fmt.Errorf("connect to %s: %w", cfg.ServerEndpointAddr, err)
		}
		defer cl.Close()

		token, err := filex.ReadTrimmed(cfg.TokenFile)
		if err != nil {
			return fmt.Errorf("read token file: %w", err)
		}
		if token != "" {
			cl.SetToken(token)
		}

		ctx, cancel := context.WithTimeout(c.Context, cfg.Timeout)
		defer cancel()

		return fn(&session{ctx: ctx, cfg: cfg, client: cl}, c)
	}
}
