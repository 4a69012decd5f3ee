// Package commands implements the fluentquery CLI commands.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/satishbabariya/fluent-query-go/internal/config"
	"github.com/satishbabariya/fluent-query-go/internal/core/result"
	"github.com/satishbabariya/fluent-query-go/internal/debug"
	"github.com/satishbabariya/fluent-query-go/runtime/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version information (set at build time).
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// app is the state shared by all commands of one invocation.
type app struct {
	v            *viper.Viper
	cfg          *config.Config
	workDir      string
	askPassword  bool
	promptSecret func(message string) (string, error)
}

// NewRootCommand creates the fluentquery root command.
func NewRootCommand() *cobra.Command {
	a := &app{promptSecret: askSecret}

	cmd := &cobra.Command{
		Use:           "fluentquery",
		Short:         "Compile and run fluent queries against SQL backends",
		Long:          "fluentquery compiles queries to SQL for PostgreSQL, MySQL and SQLite and runs them through the driver layer.",
		Version:       fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("driver", "", "backend driver (postgres, mysql, sqlite)")
	flags.String("database", "", "database name, or file path for sqlite")
	flags.String("host", "", "server host (default localhost)")
	flags.Int("port", 0, "server port")
	flags.String("socket", "", "unix socket path")
	flags.String("user", "", "username")
	flags.String("password", "", "password")
	flags.Bool("debug", false, "enable debug logging")
	flags.Bool("log-queries", false, "log every query")
	flags.BoolVar(&a.askPassword, "ask-password", false, "prompt for the password")
	flags.StringVar(&a.workDir, "workdir", "", "directory holding .fluentquery.yaml and .env files (default current directory)")

	cmd.AddCommand(newExecCommand(a))
	cmd.AddCommand(newInsertCommand(a))
	cmd.AddCommand(newCompileCommand(a))
	cmd.AddCommand(newPingCommand(a))
	cmd.AddCommand(newSaveConfigCommand(a))

	return cmd
}

// Execute runs the root command with os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

// load merges config file, .env files, environment and flags.
func (a *app) load(cmd *cobra.Command) error {
	workDir := a.workDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		workDir = wd
	}

	v, err := config.New(workDir)
	if err != nil {
		return err
	}

	bindings := map[string]string{
		"driver":      "driver",
		"database":    "database",
		"host":        "host",
		"port":        "port",
		"socket":      "socket",
		"username":    "user",
		"password":    "password",
		"debug":       "debug",
		"log_queries": "log-queries",
	}
	for key, flag := range bindings {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return err
		}
	}

	cfg, err := config.Load(v, workDir)
	if err != nil {
		return err
	}

	if a.askPassword {
		password, err := a.promptSecret("Password:")
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		cfg.Settings.Password = password
	}

	a.v = v
	a.cfg = cfg
	debug.Init(cfg.Debug)
	debug.Debug("configuration loaded", "driver", cfg.Driver, "config", v.ConfigFileUsed())
	return nil
}

// driver creates a driver for the configured backend with the settings
// assigned. The connection opens on first use.
func (a *app) driver() (*client.Driver, error) {
	opts := []client.Option{
		client.WithRegistry(result.NewRegistry(a.cfg.TrackLeaks)),
	}
	if a.cfg.LogQueries {
		debug.Init(true)
		opts = append(opts, client.WithMiddleware(client.LoggingMiddleware(debug.Logger())))
	}

	d, err := client.NewFromName(a.cfg.Driver, opts...)
	if err != nil {
		return nil, err
	}
	if err := d.Open(a.cfg.Settings); err != nil {
		return nil, err
	}
	return d, nil
}

func askSecret(message string) (string, error) {
	var secret string
	err := survey.AskOne(&survey.Password{Message: message}, &secret)
	return secret, err
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
