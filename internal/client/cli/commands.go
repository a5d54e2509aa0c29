package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/blockkeeper/internal/buildinfo"
	"github.com/dmitrijs2005/blockkeeper/internal/client/client"
	"github.com/dmitrijs2005/blockkeeper/internal/client/config"
	"github.com/dmitrijs2005/blockkeeper/internal/common"
	"github.com/dmitrijs2005/blockkeeper/internal/filex"
	"github.com/urfave/cli/v2"
)

func credentialFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "account email", EnvVars: []string{"BLOCKCTL_EMAIL"}},
		&cli.StringFlag{Name: "secret", Usage: "account secret (prompted when empty)", EnvVars: []string{"BLOCKCTL_SECRET"}},
	}
}

func (a *App) commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:   "register",
			Usage:  "create an account",
			Flags:  credentialFlags(),
			Action: a.action(a.register),
		},
		{
			Name:   "login",
			Usage:  "log in and store the identity token",
			Flags:  credentialFlags(),
			Action: a.action(a.login),
		},
		{
			Name:  "external-login",
			Usage: "log in with an identity-broker assertion",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "assertion", Required: true, EnvVars: []string{"BLOCKCTL_ASSERTION"}},
			},
			Action: a.action(a.externalLogin),
		},
		{
			Name:   "logout",
			Usage:  "forget the stored identity token",
			Action: a.logout,
		},
		{
			Name:   "me",
			Usage:  "show the current account",
			Action: a.action(a.me),
		},
		{
			Name:  "create",
			Usage: "create a block",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "label", Aliases: []string{"l"}, Required: true},
				&cli.StringFlag{Name: "content", Aliases: []string{"c"}, Usage: "block content (prompted when empty)"},
				&cli.Int64Flag{Name: "group", Aliases: []string{"g"}, Required: true, Usage: "group key, e.g. 20240101"},
				&cli.Int64Flag{Name: "seq", Aliases: []string{"n"}, Required: true, Usage: "sequence number within the group"},
			},
			Action: a.action(a.create),
		},
		{
			Name:   "groups",
			Usage:  "list group keys, newest first",
			Action: a.action(a.groups),
		},
		{
			Name:  "list",
			Usage: "list blocks, optionally filtered by label",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "label", Aliases: []string{"l"}},
			},
			Action: a.action(a.list),
		},
		{
			Name:      "group",
			Usage:     "list the blocks of one group",
			ArgsUsage: "<group-key>",
			Action:    a.action(a.group),
		},
		{
			Name:      "delete-group",
			Usage:     "delete every block of one group",
			ArgsUsage: "<group-key>",
			Action:    a.action(a.deleteGroup),
		},
		{
			Name:  "check",
			Usage: "compare the owned-block set with stored blocks",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "repair", Usage: "fix dangling and orphaned entries"},
			},
			Action: a.action(a.check),
		},
		{
			Name:   "ping",
			Usage:  "check that the server answers",
			Action: a.action(a.ping),
		},
		{
			Name:  "version",
			Usage: "print build information",
			Action: func(c *cli.Context) error {
				buildinfo.PrintBuildData(a.out)
				return nil
			},
		},
	}
}

func (a *App) credentials(c *cli.Context) (string, string, error) {
	email := c.String("email")
	if email == "" {
		var err error
		if email, err = GetSimpleText(a.in, "Enter email:", a.out); err != nil {
			return "", "", err
		}
	}

	secret := c.String("secret")
	if secret == "" {
		var err error
		if secret, err = GetSecret(a.out); err != nil {
			return "", "", err
		}
	}
	return email, secret, nil
}

func (a *App) register(s *session, c *cli.Context) error {
	email, secret, err := a.credentials(c)
	if err != nil {
		return err
	}

	u, err := s.client.Register(s.ctx, email, secret)
	if err != nil {
		if errors.Is(err, common.ErrUserExists) {
			return fmt.Errorf("%s is already registered", email)
		}
		return fmt.Errorf("register: %w", err)
	}

	fmt.Fprintf(a.out, "Registered %s (id %s)\n", u.Email, u.ID)
	return nil
}

func (a *App) login(s *session, c *cli.Context) error {
	email, secret, err := a.credentials(c)
	if err != nil {
		return err
	}

	token, err := s.client.Login(s.ctx, email, secret)
	if err != nil {
		if errors.Is(err, client.ErrLoginFailed) {
			return client.ErrLoginFailed
		}
		return fmt.Errorf("login: %w", err)
	}
	return a.saveToken(s, token)
}

func (a *App) externalLogin(s *session, c *cli.Context) error {
	token, err := s.client.ExternalLogin(s.ctx, c.String("assertion"))
	if err != nil {
		return fmt.Errorf("external login: %w", err)
	}
	return a.saveToken(s, token)
}

func (a *App) saveToken(s *session, token string) error {
	if err := filex.WritePrivate(s.cfg.TokenFile, []byte(token)); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	fmt.Fprintln(a.out, "Logged in")
	return nil
}

func (a *App) logout(c *cli.Context) error {
	cfg := config.FromContext(c)
	if err := filex.RemoveIfExists(cfg.TokenFile); err != nil {
		return fmt.Errorf("remove token: %w", err)
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) me(s *session, _ *cli.Context) error {
	u, err := s.client.Me(s.ctx)
	if err != nil {
		return authHint(err)
	}
	printUser(a.out, u)
	return nil
}

func (a *App) create(s *session, c *cli.Context) error {
	content := c.String("content")
	if content == "" {
		var err error
		if content, err = GetMultiline(a.in, "Enter content:", a.out); err != nil {
			return err
		}
	}

	b, err := s.client.CreateBlock(s.ctx, c.String("label"), content, c.Int64("group"), c.Int64("seq"))
	if err != nil {
		return authHint(err)
	}
	fmt.Fprintf(a.out, "Created block %s in group %d\n", b.ID, b.GroupKey)
	return nil
}

func (a *App) groups(s *session, _ *cli.Context) error {
	keys, err := s.client.ListGroups(s.ctx)
	if err != nil {
		return authHint(err)
	}
	printGroups(a.out, keys)
	return nil
}

func (a *App) list(s *session, c *cli.Context) error {
	blocks, err := s.client.ListBlocks(s.ctx, c.String("label"))
	if err != nil {
		return authHint(err)
	}
	printBlocks(a.out, blocks)
	return nil
}

func (a *App) group(s *session, c *cli.Context) error {
	key, err := groupKeyArg(c)
	if err != nil {
		return err
	}
	blocks, err := s.client.ListGroup(s.ctx, key)
	if err != nil {
		return authHint(err)
	}
	printBlocks(a.out, blocks)
	return nil
}

func (a *App) deleteGroup(s *session, c *cli.Context) error {
	key, err := groupKeyArg(c)
	if err != nil {
		return err
	}
	n, err := s.client.DeleteGroup(s.ctx, key)
	if err != nil {
		return authHint(err)
	}
	fmt.Fprintf(a.out, "Deleted %d block(s) from group %d\n", n, key)
	return nil
}

func (a *App) check(s *session, c *cli.Context) error {
	r, err := s.client.CheckConsistency(s.ctx, c.Bool("repair"))
	if err != nil {
		return authHint(err)
	}
	printReport(a.out, r)
	return nil
}

func (a *App) ping(s *session, _ *cli.Context) error {
	if err := s.client.Ping(s.ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "OK")
	return nil
}

func groupKeyArg(c *cli.Context) (int64, error) {
	if c.NArg() != 1 {
		return 0, fmt.Errorf("expected exactly one group key, got %d arguments", c.NArg())
	}
	key, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid group key %q", c.Args().First())
	}
	return key, nil
}

func authHint(err error) error {
	if errors.Is(err, common.ErrorUnauthorized) || errors.Is(err, common.ErrInvalidToken) {
		return fmt.Errorf("%w (run \"blockctl login\" first)", err)
	}
	return err
}
