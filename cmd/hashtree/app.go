package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/gordian-engine/hashtree"
	"github.com/gordian-engine/hashtree/htdigest"
	"github.com/gordian-engine/hashtree/htitem"
	"github.com/gordian-engine/hashtree/internal/htconfig"
	"github.com/gordian-engine/hashtree/internal/htlog"
	"github.com/urfave/cli/v2"
)

const appName = "hashtree"

const (
	flagCfg         = "cfg"
	flagHasher      = "hasher"
	flagInputFormat = "input-format"
	flagLogLevel    = "log-level"
)

// session holds what every command needs,
// resolved from configuration before a command runs.
type session struct {
	lookupEnv func(string) (string, bool)

	cfg    htconfig.Config
	log    *slog.Logger
	hasher htdigest.Hasher
	format htitem.Format
}

func newApp(
	stdin io.Reader, stdout, stderr io.Writer,
	lookupEnv func(string) (string, bool),
) *cli.App {
	s := &session{lookupEnv: lookupEnv}

	app := cli.NewApp()
	app.Name = appName
	app.Usage = "commit to an ordered list of items with a binary hash tree"
	app.Version = Version
	app.HideVersion = true

	app.Reader = stdin
	app.Writer = stdout
	app.ErrWriter = stderr

	// main decides the exit status.
	app.ExitErrHandler = func(*cli.Context, error) {}

	app.Flags = []cli.Flag{
		&cli.StringSliceFlag{
			Name:    flagCfg,
			Aliases: []string{"c"},
			Usage:   "Configuration file(s), TOML or JSON, applied in order",
		},
		&cli.StringFlag{
			Name:  flagHasher,
			Usage: "Hash function: one of " + fmt.Sprint(hashtree.HasherNames()),
		},
		&cli.StringFlag{
			Name:  flagInputFormat,
			Usage: "Item input format: lines, hex or cbor",
		},
		&cli.StringFlag{
			Name:  flagLogLevel,
			Usage: "Minimum log level: debug, info, warn or error",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:      "root",
			Usage:     "Print the root digest in hex, or (empty) for zero items",
			ArgsUsage: "[FILE]",
			Before:    s.setup,
			Action:    s.rootCmd,
		},
		{
			Name:      "layers",
			Usage:     "Print every layer, leaves first, one line per layer",
			ArgsUsage: "[FILE]",
			Before:    s.setup,
			Action:    s.layersCmd,
		},
		{
			Name:      "prove",
			Usage:     "Print the encoded inclusion proof for one item in hex",
			ArgsUsage: "[FILE]",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:     "index",
					Aliases:  []string{"i"},
					Usage:    "Zero-based index of the item to prove",
					Required: true,
				},
			},
			Before: s.setup,
			Action: s.proveCmd,
		},
		{
			Name:  "verify",
			Usage: "Check an inclusion proof against a root",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "root", Usage: "Root digest in hex", Required: true},
				&cli.StringFlag{Name: "proof", Usage: "Encoded proof in hex", Required: true},
				&cli.StringFlag{Name: "item", Usage: "Item as UTF-8 text"},
				&cli.StringFlag{Name: "item-hex", Usage: "Item bytes in hex"},
			},
			Before: s.setup,
			Action: s.verifyCmd,
		},
		{
			Name:   "version",
			Usage:  "Application version and build",
			Action: versionCmd,
		},
	}

	return app
}

// setup loads configuration, then builds the logger and resolves the hasher.
func (s *session) setup(cCtx *cli.Context) error {
	files, err := htconfig.ReadFiles(cCtx.StringSlice(flagCfg))
	if err != nil {
		return err
	}

	overrides := map[string]any{}
	for flag, key := range map[string]string{
		flagHasher:      "Tree.Hasher",
		flagInputFormat: "Input.Format",
		flagLogLevel:    "Log.Level",
	} {
		if cCtx.IsSet(flag) {
			overrides[key] = cCtx.String(flag)
		}
	}

	l := htconfig.NewLoader(files)
	l.LookupEnvFunc = s.lookupEnv
	l.Overrides = overrides

	cfg, err := l.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	s.cfg = cfg

	log, err := htlog.New(cCtx.App.ErrWriter, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		panic(fmt.Errorf("BUG: logger config passed validation but failed: %w", err))
	}
	s.log = log

	s.format, err = htitem.ParseFormat(cfg.Input.Format)
	if err != nil {
		panic(fmt.Errorf("BUG: input format passed validation but failed: %w", err))
	}

	h, err := hashtree.LookupHasher(cfg.Tree.Hasher)
	if err != nil {
		// No retry: the set of hashers is fixed at build time.
		s.log.Error("Cannot continue without a hasher", "err", err)
		return err
	}
	s.hasher = h

	return nil
}
