package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/courtbot/internal/bot"
	"github.com/hpungsan/courtbot/internal/court"
	"github.com/hpungsan/courtbot/internal/errors"
	"github.com/hpungsan/courtbot/internal/mcp"
	"github.com/hpungsan/courtbot/internal/ops"
	"github.com/hpungsan/courtbot/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(open opener) *cli.App {
	app := &cli.App{
		Name:    "courtbot",
		Usage:   "Discord bot for mock lawsuits, court rooms, and prison",
		Version: Version,
		Commands: []*cli.Command{
			runCmd(open),
			mcpCmd(open),
			serveCmd(open),
			stateCmd(open),
			lawsuitsCmd(open),
			clearCmd(open),
			prisonCmd(open),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// withRuntime opens a runtime for the duration of one command.
func withRuntime(open opener, fn func(c *cli.Context, rt *runtime) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		rt, err := open(c.Context)
		if err != nil {
			return outputError(err)
		}
		defer rt.close()
		return fn(c, rt)
	}
}

// runCmd creates the run command.
func runCmd(open opener) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Connect to Discord and serve slash commands until interrupted",
		Action: withRuntime(open, func(c *cli.Context, rt *runtime) error {
			if rt.cfg.DiscordToken == "" {
				return outputError(errors.NewInvalidRequest("discord_token (DISCORD_TOKEN) is required"))
			}
			if rt.session == nil {
				return outputError(errors.NewInternal(fmt.Errorf("no gateway session")))
			}

			opts := bot.Options{
				SetGlobalCommands: rt.cfg.SetGlobalCommands,
				Logger:            rt.logger,
			}
			if rt.cfg.Dev {
				opts.DevGuildID = rt.cfg.DevGuildID
			}
			bot.New(rt.service(), opts).Register(rt.session)

			if err := rt.session.Open(); err != nil {
				return outputError(errors.NewPlatform("open gateway", err))
			}
			defer rt.session.Close()

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()
			rt.logger.Info("shutting down")
			return nil
		}),
	}
}

// mcpCmd creates the mcp command.
func mcpCmd(open opener) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve read-only court inspection tools over MCP stdio",
		Action: withRuntime(open, func(_ *cli.Context, rt *runtime) error {
			if unknown := mcp.ValidateDisabledTools(rt.cfg.DisabledTools); len(unknown) > 0 {
				rt.logger.Warn("unknown tools in disabled_tools", "tools", unknown, "valid", mcp.AllToolNames())
			}
			return mcp.Run(rt.service(), rt.cfg, Version)
		}),
	}
}

// serveCmd creates the serve command.
func serveCmd(open opener) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the read-only court dashboard over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8080, Usage: "Port to listen on"},
		},
		Action: withRuntime(open, func(c *cli.Context, rt *runtime) error {
			srv, err := web.NewServer(rt.service(), rt.logger, Version, c.String("bind"), c.Int("port"))
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			return web.Run(srv, rt.logger)
		}),
	}
}

// stateCmd creates the state command.
func stateCmd(open opener) *cli.Command {
	return &cli.Command{
		Name:  "state",
		Usage: "Print a guild's court state as JSON",
		Flags: []cli.Flag{guildFlag()},
		Action: withRuntime(open, func(c *cli.Context, rt *runtime) error {
			guildID, err := snowflakeFlag(c, "guild")
			if err != nil {
				return outputError(err)
			}
			state, err := rt.service().State(c.Context, guildID)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(state)
		}),
	}
}

// lawsuitsCmd creates the lawsuits command.
func lawsuitsCmd(open opener) *cli.Command {
	return &cli.Command{
		Name:  "lawsuits",
		Usage: "List a guild's lawsuits as JSON",
		Flags: []cli.Flag{
			guildFlag(),
			&cli.BoolFlag{Name: "open", Usage: "Only lawsuits without a verdict"},
		},
		Action: withRuntime(open, func(c *cli.Context, rt *runtime) error {
			guildID, err := snowflakeFlag(c, "guild")
			if err != nil {
				return outputError(err)
			}
			lawsuits, err := rt.service().ListLawsuits(c.Context, ops.ListLawsuitsInput{
				GuildID:  guildID,
				OpenOnly: c.Bool("open"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(lawsuits)
		}),
	}
}

// clearCmd creates the clear command.
func clearCmd(open opener) *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Erase a guild's lawsuits, court rooms, and settings",
		Flags: []cli.Flag{guildFlag()},
		Action: withRuntime(open, func(c *cli.Context, rt *runtime) error {
			guildID, err := snowflakeFlag(c, "guild")
			if err != nil {
				return outputError(err)
			}
			resp, err := rt.service().ClearGuild(c.Context, guildID)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]any{"guild_id": guildID, "message": resp.Text})
		}),
	}
}

// prisonCmd creates the prison command.
func prisonCmd(open opener) *cli.Command {
	return &cli.Command{
		Name:  "prison",
		Usage: "Report whether a member is imprisoned",
		Flags: []cli.Flag{
			guildFlag(),
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Required: true, Usage: "Member user id"},
		},
		Action: withRuntime(open, func(c *cli.Context, rt *runtime) error {
			guildID, err := snowflakeFlag(c, "guild")
			if err != nil {
				return outputError(err)
			}
			userID, err := snowflakeFlag(c, "user")
			if err != nil {
				return outputError(err)
			}
			imprisoned, err := rt.service().IsImprisoned(c.Context, guildID, userID)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]any{
				"guild_id":   guildID,
				"user_id":    userID,
				"imprisoned": imprisoned,
			})
		}),
	}
}

func guildFlag() cli.Flag {
	return &cli.StringFlag{Name: "guild", Aliases: []string{"g"}, Required: true, Usage: "Guild id"}
}

// snowflakeFlag parses a string flag as an id.
func snowflakeFlag(c *cli.Context, name string) (court.Snowflake, error) {
	id, err := court.ParseSnowflake(c.String(name))
	if err != nil {
		return 0, errors.NewInvalidRequest(fmt.Sprintf("--%s: %v", name, err))
	}
	return id, nil
}

// outputJSON writes JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var courtErr *errors.CourtError
	if stderrors.As(err, &courtErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", courtErr.Code, courtErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
