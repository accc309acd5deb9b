package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/tartampluch/lifereel/internal/age"
	"github.com/tartampluch/lifereel/internal/app"
	"github.com/tartampluch/lifereel/internal/config"
	"github.com/tartampluch/lifereel/internal/engine"
	"github.com/tartampluch/lifereel/internal/locale"
	"github.com/tartampluch/lifereel/internal/metrics"
	"github.com/tartampluch/lifereel/internal/server"
)

// main delegates to runMain so that deferred calls run before os.Exit.
func main() {
	os.Exit(runMain())
}

// runMain parses the global flags, dispatches the command and maps the
// outcome to an exit code.
func runMain() int {
	showVersion := flag.Bool(config.FlagVersion, false, config.FlagDescVersion)
	debugMode := flag.Bool(config.FlagDebug, false, config.FlagDescDebug)
	configPath := flag.String(config.FlagConfig, "", config.FlagDescConfig)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), config.MsgUsage, filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		printVersion()
		return config.ExitCodeSuccess
	}

	cmd, args := config.CmdServe, flag.Args()
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case config.CmdGroup:
		// Stdout carries the stacks; logs go to stderr.
		setupLogging(*debugMode, os.Stderr, false)
		if err := runGroup(args, os.Stdin, os.Stdout, time.Now()); err != nil {
			slog.Error(config.ErrAppFailed,
				config.LogKeyComponent, config.CompGroup,
				config.LogKeyError, err,
			)
			return config.ExitCodeError
		}
		return config.ExitCodeSuccess

	case config.CmdServe:
		logCloser := setupLogging(*debugMode, os.Stdout, true)
		if logCloser != nil {
			defer func() {
				_ = logCloser.Close() // Best effort close
			}()
		}

		// Root context cancelled on SIGINT (Ctrl+C) or SIGTERM.
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		logStartupInfo()

		if err := runServe(ctx, *configPath); err != nil {
			slog.Error(config.ErrAppFailed,
				config.LogKeyComponent, config.CompMain,
				config.LogKeyError, err,
			)
			return config.ExitCodeError
		}

		slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
		return config.ExitCodeSuccess

	default:
		fmt.Fprintf(os.Stderr, "%s: %q\n", config.ErrUnknownCommand, cmd)
		flag.Usage()
		return config.ExitCodeUsage
	}
}

// runServe loads the settings, wires dependencies and blocks until ctx is cancelled.
func runServe(ctx context.Context, configPath string) error {
	settings, err := config.Load(configPath)
	if err != nil {
		return err
	}
	slog.Info(config.MsgConfigLoaded,
		config.LogKeyComponent, config.CompConfig,
		config.LogKeyMode, settings.Source.Mode,
		config.LogKeyAddr, settings.Addr(),
		config.LogKeyInterval, settings.Sync.Interval,
		config.LogKeyLang, settings.Language,
	)

	memo, err := age.NewMemo(settings.Classify.MemoSize)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrMemoInit, err)
	}
	calc := age.Calculator{
		MaxPregnancyWeeks: settings.Classify.MaxPregnancyWeeks,
		Location:          settings.Location(),
		Memo:              memo,
	}

	tr := locale.New(settings.Language)
	m := metrics.New()
	srv := server.New(settings.Addr(), calc, tr, m)
	gen := &engine.Generator{
		Clock:      engine.RealClock{},
		Fetcher:    engine.NewHTTPFetcher(),
		Translator: tr,
	}

	return app.New(settings, gen, srv, m).Run(ctx)
}

// printVersion outputs the build information to stdout.
func printVersion() {
	fmt.Printf(config.MsgVersionOutput,
		config.AppName,
		config.Version,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging installs a JSON slog logger writing to out and, when withFile
// is set, to a log file in the user's cache directory.
func setupLogging(debugMode bool, out io.Writer, withFile bool) io.Closer {
	writers := []io.Writer{out}
	var logFile *os.File

	if withFile {
		if logPath, err := getLogFilePath(); err == nil {
			// O_TRUNC resets logs on restart to prevent indefinite growth.
			f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
			if err == nil {
				writers = append(writers, f)
				logFile = f
			} else {
				fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
			}
		}
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), opts)))

	if logFile == nil {
		return nil
	}
	return logFile
}

// getLogFilePath determines the platform-specific cache directory for logs.
func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	return filepath.Join(appDir, config.LogFileName), nil
}
