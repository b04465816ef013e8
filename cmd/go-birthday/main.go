package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"
	"github.com/tartampluch/go-birthday-reminders/internal/config"
	"github.com/tartampluch/go-birthday-reminders/internal/storage"
	"github.com/tartampluch/go-birthday-reminders/internal/ui"
)

// main is the application entry point.
// It delegates execution to runMain to ensure that deferred function calls
// (like closing log files) are executed before the process terminates.
// os.Exit() does not run defers, so we must return an integer code first.
func main() {
	os.Exit(runMain(os.Args[1:]))
}

// runMain executes the command tree and maps its outcome to an exit code.
func runMain(args []string) int {
	// Create a root context that cancels on SIGINT (Ctrl+C) or SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c := &cli{}
	root := c.rootCommand()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	c.closeLog()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}
	return config.ExitCodeSuccess
}

// cli holds the persistent flags shared by every subcommand.
type cli struct {
	dbPath string
	debug  bool
	lang   string

	logCloser io.Closer
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           config.CmdRoot,
		Short:         config.CmdRootShort,
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// The tray app logs to stdout like any long-running process; one-shot
			// commands keep stdout for their own output.
			var console io.Writer
			if cmd.Name() == config.CmdRun || cmd.Name() == config.CmdRoot {
				console = os.Stdout
			} else if c.debug {
				console = os.Stderr
			}
			c.logCloser = setupLogging(console, c.debug)
			if c.dbPath == "" {
				path, err := defaultDBPath()
				if err != nil {
					return err
				}
				c.dbPath = path
			}
			return nil
		},
		RunE: c.runGUI,
	}
	root.SetVersionTemplate(config.MsgVersionOutput)

	root.PersistentFlags().StringVar(&c.dbPath, config.FlagDB, "", config.FlagDescDB)
	root.PersistentFlags().BoolVar(&c.debug, config.FlagDebug, false, config.FlagDescDebug)
	root.PersistentFlags().StringVar(&c.lang, config.FlagLang, config.DefaultLanguage, config.FlagDescLang)

	root.AddCommand(
		&cobra.Command{Use: config.CmdRun, Short: config.CmdRunShort, Args: cobra.NoArgs, RunE: c.runGUI},
		c.listCommand(),
		c.addCommand(),
		c.deleteCommand(),
		c.pendingCommand(),
		c.rescheduleCommand(),
		c.importCommand(),
		c.categoriesCommand(),
		c.credentialsCommand(),
	)
	return root
}

func (c *cli) closeLog() {
	if c.logCloser != nil {
		_ = c.logCloser.Close() // Best effort close
		c.logCloser = nil
	}
}

// runGUI opens the database, wires the tray application and blocks until it quits.
func (c *cli) runGUI(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logStartupInfo()

	store, err := storage.OpenSQLite(c.dbPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error(config.ErrDBClose, config.LogKeyComponent, config.CompMain, config.LogKeyError, err)
		}
	}()

	a := app.NewWithID(config.AppID)

	// Record the version for potential migration logic in future updates.
	a.Preferences().SetString(config.PrefLastRun, config.Version)

	gui, err := ui.NewReminderApp(ctx, a, store)
	if err != nil {
		return err
	}

	// Lifecycle Bridge:
	// Watch for context cancellation to quit the UI gracefully.
	go func() {
		<-ctx.Done()
		slog.Info(config.MsgCtxCancel, config.LogKeyComponent, config.CompMain)
		a.Quit()
	}()

	// Blocks until the tray application quits.
	gui.Run()

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return nil
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyCommit, config.Commit),
			slog.String(config.LogKeyBuilt, config.Date),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging configures the default slog logger. console may be nil, in
// which case records only go to the log file.
func setupLogging(console io.Writer, debugMode bool) io.Closer {
	var writers []io.Writer
	var logFile *os.File

	if console != nil {
		writers = append(writers, console)
	}

	// Attempt to set up a file writer in the user's cache directory.
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

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}

	logger := slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), opts))
	slog.SetDefault(logger)

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

	// Ensure the directory exists with restricted permissions (700).
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	return filepath.Join(appDir, config.LogFileName), nil
}

// defaultDBPath places the database next to the fyne preferences.
func defaultDBPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrConfigDir, err)
	}
	appDir := filepath.Join(dir, config.AppID)
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}
	return filepath.Join(appDir, config.DBFileName), nil
}
