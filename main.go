package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"tokodash/internal/client"
	"tokodash/internal/config"
	"tokodash/internal/logging"
	"tokodash/internal/session"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// cli carries the state shared by every command.
type cli struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger
	out     io.Writer
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{v: viper.New(), out: out, logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "tokodash",
		Short: "Merchant dashboard and store API for tokodash",
		Long: `tokodash manages the items of an online store.

Run "tokodash serve" to start the store API, "tokodash login" to sign in
and "tokodash dashboard" to open the interactive dashboard.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = c.logger.Sync()
		},
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (yaml, json or toml)")
	flags.String("api-url", "", "base URL of the store API")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	_ = c.v.BindPFlag(config.KeyAPIURL, flags.Lookup("api-url"))
	_ = c.v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))

	root.AddCommand(
		c.serveCmd(),
		c.dashboardCmd(),
		c.loginCmd(),
		c.logoutCmd(),
		c.itemsCmd(),
	)
	return root
}

// setup loads the configuration and builds the logger. The dashboard logs to
// a file so the terminal stays clean.
func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(c.v, c.cfgFile)
	if err != nil {
		return err
	}
	c.cfg = cfg

	logFile := cfg.LogFile
	if logFile == "" && cmd.Name() == "dashboard" {
		logFile = filepath.Join(filepath.Dir(cfg.SessionFile), "tokodash.log")
	}
	logger, err := logging.New(cfg.LogLevel, logFile)
	if err != nil {
		return err
	}
	c.logger = logger
	return nil
}

func (c *cli) apiClient() *client.Client {
	return client.New(client.Config{
		BaseURL: c.cfg.APIURL,
		Timeout: c.cfg.HTTPTimeout,
		Logger:  c.logger.Named("client"),
	})
}

// loadSession returns a store holding the saved session, if any.
func (c *cli) loadSession() (*session.Store, error) {
	store := session.NewStore()
	if err := store.LoadFile(c.cfg.SessionFile); err != nil {
		return nil, err
	}
	return store, nil
}

// requireSession is loadSession for commands that need a logged in merchant.
func (c *cli) requireSession() (*session.Store, error) {
	store, err := c.loadSession()
	if err != nil {
		return nil, err
	}
	if !store.Snapshot().Authenticated {
		return nil, fmt.Errorf("not logged in, run \"tokodash login\" first")
	}
	return store, nil
}
