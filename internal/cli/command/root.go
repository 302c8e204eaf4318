package command

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/redmod-go/internal/cli/config"
	"github.com/yndnr/redmod-go/internal/cli/connection"
	"github.com/yndnr/redmod-go/internal/cli/output"
	"github.com/yndnr/redmod-go/internal/cli/repl"
	"github.com/yndnr/redmod-go/internal/infra/buildinfo"
)

// App creates the CLI application.
func App() *cli.App {
	// -h selects the host, as in redis-cli.
	cli.HelpFlag = &cli.BoolFlag{Name: "help", Usage: "show help"}

	return &cli.App{
		Name:            "redmod-cli",
		Usage:           "Command-line client for redmod-server",
		UsageText:       "redmod-cli [options] [command [arg ...]]",
		Version:         buildinfo.String(),
		Flags:           globalFlags(),
		HideHelpCommand: true,
		Action:          run,
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "host",
			Aliases: []string{"h"},
			Usage:   "Server hostname",
			EnvVars: []string{"REDMOD_CLI_HOST"},
		},
		&cli.IntFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Usage:   "Server port",
			EnvVars: []string{"REDMOD_CLI_PORT"},
		},
		&cli.StringFlag{
			Name:    "pass",
			Aliases: []string{"a"},
			Usage:   "Password to use when connecting to the server",
			EnvVars: []string{"REDMOD_CLI_AUTH"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: raw, json, yaml",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Dial and reply timeout",
			Value: connection.DefaultTimeout,
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "CLI preferences file",
			Value: config.DefaultConfigPath(),
		},
	}
}

// loadConfig merges the preferences file with the flags.
func loadConfig(c *cli.Context) (*config.CLIConfig, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	return config.Merge(cfg, config.Overrides{
		Host:     c.String("host"),
		Port:     c.Int("port"),
		Password: c.String("pass"),
		Output:   c.String("output"),
	}), nil
}

func run(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(cfg.Output)
	if err != nil {
		return err
	}

	mgr := connection.NewManager(connection.Options{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Password: cfg.Password,
		Timeout:  c.Duration("timeout"),
	})
	defer mgr.Disconnect()

	s := newSession(mgr, output.NewFormatter(format), c.App.Writer)

	if c.NArg() > 0 {
		if err := s.Execute(c.Context, c.Args().Slice()); err != nil {
			return err
		}
		if s.lastFailed {
			return cli.Exit("", 1)
		}
		return nil
	}
	return interactive(c.Context, s, cfg)
}

func interactive(ctx context.Context, s *session, cfg *config.CLIConfig) error {
	completer := repl.NewCompleter()
	if names, err := s.commandNames(ctx); err == nil {
		completer.SetCommands(names)
	} else {
		fmt.Fprintf(os.Stderr, "Could not connect to %s: %v\n", s.mgr.Options().Addr(), err)
	}

	historyFile := cfg.HistoryFile
	if historyFile == "" {
		historyFile = repl.DefaultHistoryFile()
	}
	history := repl.NewHistory(historyFile)
	if err := history.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "history: %v\n", err)
	}
	defer func() {
		if err := history.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "history: %v\n", err)
		}
	}()

	r := repl.New(s,
		repl.WithOutput(s.out),
		repl.WithPrompt(s.mgr.Options().Addr()+"> "),
		repl.WithCompleter(completer),
		repl.WithHistory(history),
	)
	return r.Run(ctx)
}
