package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	logMaxSizeMB  = 5
	logMaxAgeDays = 14
	logMaxBackups = 5
)

var (
	// release variables
	Version   string
	Timestamp string
	GitCommit string

	// CLI
	cli struct {
		globals

		// flags
		Config    string `type:"path" default:"${config_file}" env:"DBLINK_CONFIG" help:"Config file path"`
		Log       string `type:"path" default:"${log_file}" env:"DBLINK_LOG" help:"Log file path"`
		Verbosity int    `type:"counter" default:"0" short:"v" env:"DBLINK_VERBOSITY" help:"Log level verbosity"`
		LogLevel  string `default:"" env:"DBLINK_LOG_LEVEL" help:"Log level (trace,debug,info,warn,error,fatal)"`

		// commands
		Query   queryCmd   `cmd:"" help:"Run a query and print its rows"`
		Exec    execCmd    `cmd:"" help:"Run a statement that returns no rows"`
		Chunks  chunksCmd  `cmd:"" help:"List the chunks of a chunked connection"`
		Shell   shellCmd   `cmd:"" help:"Launch the interactive client of a connection"`
		Migrate migrateCmd `cmd:"" help:"Apply versioned .sql files to a connection"`
		Repl    replCmd    `cmd:"" help:"Run queries interactively"`
	}
)

type globals struct {
	Version versionFlag `name:"version" help:"Print version information and quit"`
}

type versionFlag string

func (versionFlag) Decode(_ *kong.DecodeContext) error { return nil }
func (versionFlag) IsBool() bool                       { return true }
func (versionFlag) BeforeApply(app *kong.Kong, vars kong.Vars) error { //nolint:unparam // satisfies kong.Hook interface
	fmt.Println(vars["version"])
	app.Exit(0)
	return nil
}

func main() {
	configDir := defaultConfigDirectory("dblink")

	// parse cli
	kctx := kong.Parse(&cli,
		kong.Name("dblink"),
		kong.Description("Query SQLite and MySQL connections"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Summary: true,
			Compact: true,
		}),
		kong.Vars{
			"version":      fmt.Sprintf("%s (%s@%s)", Version, GitCommit, Timestamp),
			"config_file":  filepath.Join(configDir, "config.yml"),
			"log_file":     filepath.Join(configDir, "activity.log"),
			"history_file": filepath.Join(configDir, "history"),
		},
	)

	// logger
	setupLogger()

	// config
	cfg, err := loadConfig(cli.Config)
	if err != nil {
		log.Fatal().
			Err(err).
			Str("path", cli.Config).
			Msg("Config Load Failed")
	}

	log.Debug().
		Int("connections", len(cfg.Connections)).
		Str("command", kctx.Command()).
		Msg("Config Loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := kctx.Run(&app{ctx: ctx, cfg: cfg}); err != nil {
		stop()
		log.Fatal().
			Err(err).
			Str("command", kctx.Command()).
			Msg("Command Failed")
	}
}

// defaultConfigDirectory returns the directory holding the config, log and history files.
func defaultConfigDirectory(app string) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, app)
}

// setupLogger configures the global zerolog logger using the CLI flags.
// Log level is set from --log-level if provided, otherwise from verbosity count.
func setupLogger() {
	logger := log.Output(io.MultiWriter(zerolog.ConsoleWriter{
		TimeFormat: time.Stamp,
		Out:        os.Stderr,
	}, &lumberjack.Logger{
		Filename:   cli.Log,
		MaxSize:    logMaxSizeMB,
		MaxAge:     logMaxAgeDays,
		MaxBackups: logMaxBackups,
	}))

	if cli.LogLevel != "" {
		level, err := zerolog.ParseLevel(cli.LogLevel)
		if err != nil {
			log.Logger = logger.Level(zerolog.InfoLevel)
			log.Fatal().Str("level", cli.LogLevel).Msg("Invalid Log Level")
		}

		log.Logger = logger.Level(level)

		return
	}

	switch {
	case cli.Verbosity == 1:
		log.Logger = logger.Level(zerolog.DebugLevel)
	case cli.Verbosity > 1:
		log.Logger = logger.Level(zerolog.TraceLevel)
	default:
		log.Logger = logger.Level(zerolog.InfoLevel)
	}
}
