package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/brianolson/ballotstudio/assets"
	"github.com/brianolson/ballotstudio/ballot"
	"github.com/brianolson/ballotstudio/config"
	"github.com/brianolson/ballotstudio/election"
	"github.com/brianolson/ballotstudio/fonts"
	"github.com/brianolson/ballotstudio/layout"
	canvasrenderer "github.com/brianolson/ballotstudio/renderer/canvas"
)

const envPrefix = "BALLOTSTUDIO_"

// initializeAppContext loads configuration and logging after the command
// line has been parsed.
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	var err error

	if cmd.NArg() == 0 {
		return ctx, nil
	}
	env := envFromContext(ctx)

	configFile := cmd.String("config")
	if env.Cfg, err = config.LoadConfiguration(configFile); err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if cmd.Bool("verbose") {
		env.Cfg.Logging.ConsoleLogger.Level = "debug"
	}
	if env.Log, err = env.Cfg.Logging.Prepare(); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	env.redirectStdLog()

	env.Log.Debug("Program started", zap.Strings("args", os.Args), zap.String("ver", version()), zap.String("runtime", runtime.Version()))
	if len(configFile) == 0 {
		env.Log.Debug("Using defaults (no configuration file)")
	}
	return ctx, nil
}

func destroyAppContext(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	env.Log.Debug("Program ended", zap.Duration("elapsed", env.uptime()), zap.Strings("parsed args", cmd.Args().Slice()))
	env.restoreLog()
	return nil
}

var errWasHandled bool

func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {
	env := envFromContext(ctx)
	if env.Cfg != nil {
		env.Log.Error("Program ended with error", zap.Error(err))
		errWasHandled = true
	}
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return err
}

func main() {
	// values from .env become defaults of the BALLOTSTUDIO_* flags
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Unable to read .env: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(contextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	app := &cli.Command{
		Name:            config.AppName,
		Usage:           "lays out election ballots as PDF with scan geometry",
		Version:         version() + " (" + runtime.Version() + ")",
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load configuration from `FILE` (YAML)",
				Sources: cli.EnvVars(envPrefix + "CONFIG")},
			&cli.BoolFlag{Name: "verbose", Usage: "log debug messages to the console",
				Sources: cli.EnvVars(envPrefix + "VERBOSE")},
		},
		Commands: []*cli.Command{
			{
				Name:         "draw",
				Usage:        "Renders the ballot styles of an election report",
				OnUsageError: usageErrorHandler,
				Action:       drawBallots,
				ArgsUsage:    "ELECTION_JSON",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "outdir", Aliases: []string{"o"}, Value: ".", Usage: "write one PDF per ballot style into `DIR`",
						Sources: cli.EnvVars(envPrefix + "OUTDIR")},
					&cli.StringFlag{Name: "prefix", Usage: "output file name `PREFIX`",
						Sources: cli.EnvVars(envPrefix + "PREFIX")},
					&cli.StringFlag{Name: "single", Usage: "write all selected styles into one PDF `FILE` (\"-\" for STDOUT)"},
					&cli.StringSliceFlag{Name: "select", Aliases: []string{"s"}, Usage: "only draw styles with this external identifier or image URI"},
					&cli.IntFlag{Name: "election", Value: 0, Usage: "`INDEX` of the election in the report"},
					&cli.StringFlag{Name: "mark", Usage: "fill bubbles marked in `FILE` (contest -> selection -> bool JSON)"},
					&cli.StringFlag{Name: "bubbles", Usage: "write scan geometry JSON to `FILE`"},
					&cli.StringFlag{Name: "layout-json", Usage: "write layout results of every style to `FILE` for inspection"},
				},
			},
			{
				Name:         "dumpconfig",
				Usage:        "Dumps either default or actual configuration (YAML)",
				OnUsageError: usageErrorHandler,
				Action:       outputConfiguration,
				ArgsUsage:    "DESTINATION",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "default", Usage: "output default embedded configuration"},
				},
			},
		},
	}

	var err error
	defer func() {
		stop()
		if err != nil {
			if !errWasHandled {
				fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
			}
			os.Exit(1)
		}
	}()
	err = app.Run(ctx, os.Args)
}

func drawBallots(ctx context.Context, cmd *cli.Command) (err error) {
	env := envFromContext(ctx)
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one election report, got %d arguments", cmd.Args().Len())
	}
	log := env.Log
	single := cmd.String("single")
	if single == "-" {
		// the document owns stdout
		log = log.WithOptions(zap.IncreaseLevel(zapcore.ErrorLevel))
	}

	lc, err := env.Cfg.LayoutSettings()
	if err != nil {
		return err
	}
	tmpl, err := env.Cfg.HeaderTemplate()
	if err != nil {
		return fmt.Errorf("header template: %w", err)
	}
	reg, err := fonts.NewRegistry()
	if err != nil {
		return err
	}
	for _, path := range env.Cfg.Assets.Fonts {
		name, err := reg.LoadFile(path)
		if err != nil {
			return err
		}
		log.Debug("Font loaded", zap.String("file", path), zap.String("name", name))
	}
	if err := reg.Require(env.Cfg.StyleFonts()...); err != nil {
		return err
	}
	images, err := assets.New(env.Cfg.Assets.Images)
	if err != nil {
		return err
	}

	rep, err := election.Load(cmd.Args().First())
	if err != nil {
		return err
	}
	idx := int(cmd.Int("election"))
	if idx < 0 || idx >= len(rep.Elections) {
		return fmt.Errorf("election %d not found, report has %d", idx, len(rep.Elections))
	}
	var marks election.Marks
	if path := cmd.String("mark"); path != "" {
		if marks, err = election.LoadMarks(path); err != nil {
			return err
		}
	}

	p, err := ballot.NewPrinter(rep, rep.Elections[idx], ballot.Options{
		Config:         lc,
		Renderer:       canvasrenderer.NewRenderer(reg),
		Fonts:          reg,
		Images:         images,
		Marks:          marks,
		HeaderTemplate: tmpl,
		Creator:        config.AppName + " " + version(),
		Log:            log,
	})
	if err != nil {
		return err
	}
	log.Info("Drawing election", zap.String("name", rep.Elections[idx].Name), zap.Int("styles", len(p.Styles())),
		zap.String("session", p.Session().String()))

	selectors := cmd.StringSlice("select")
	switch {
	case single != "":
		err = drawSingle(p, single, selectors)
	default:
		dir := cmd.String("outdir")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("unable to create output directory: %w", err)
		}
		var paths []string
		paths, err = p.DrawToDir(dir, cmd.String("prefix"), selectors)
		log.Info("Ballots drawn", zap.Int("files", len(paths)))
	}

	// geometry of the styles that did render is still worth keeping
	if path := cmd.String("bubbles"); path != "" {
		err = multierr.Append(err, writeExport(p, path, log))
	}
	if path := cmd.String("layout-json"); path != "" {
		results := make(map[int]*layout.Result)
		for _, st := range p.Styles() {
			if res := p.Result(st); res != nil {
				results[st.Index] = res
			}
		}
		err = multierr.Append(err, layout.WriteDebugJSON(results, path))
	}
	return err
}

func drawSingle(p *ballot.Printer, fname string, selectors []string) error {
	if fname == "-" {
		return p.DrawToWriter(os.Stdout, selectors)
	}
	out, err := os.Create(fname)
	if err != nil {
		return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
	}
	if err := p.DrawToWriter(out, selectors); err != nil {
		out.Close()
		os.Remove(fname)
		return err
	}
	return out.Close()
}

func writeExport(p *ballot.Printer, path string, log *zap.Logger) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create geometry file: %w", err)
	}
	defer out.Close()
	cw := &countingWriter{w: out}
	if err := p.Export().Write(cw); err != nil {
		return err
	}
	log.Info("Scan geometry written", zap.String("file", filepath.Clean(path)), zap.String("size", humanize.Bytes(uint64(cw.n))))
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(b []byte) (int, error) {
	n, err := c.w.Write(b)
	c.n += int64(n)
	return n, err
}

func outputConfiguration(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	fname := cmd.Args().Get(0)

	var (
		err   error
		data  []byte
		state string
	)

	out := os.Stdout
	if len(fname) > 0 {
		out, err = os.Create(fname)
		if err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
		}
		defer out.Close()
	}

	if cmd.Bool("default") {
		state = "default"
		data, err = config.Prepare()
	} else {
		state = "actual"
		data, err = config.Dump(env.Cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}

	if len(fname) == 0 {
		fname = "STDOUT"
	}
	env.Log.Debug("Outputing configuration", zap.String("state", state), zap.String("file", fname))

	if _, err = out.Write(data); err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}
