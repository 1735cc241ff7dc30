/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/Seednode/bilsene/game"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const minSessionTimeout = time.Second

type Config struct {
	bind           string
	dbPath         string
	feedInterval   time.Duration
	feedURL        string
	port           int
	prefix         string
	profile        bool
	roundLength    int
	sessionTimeout time.Duration
	tlsCert        string
	tlsKey         string
	verbose        bool
	version        bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if !slices.Contains(game.RoundLengths, c.roundLength) {
		return fmt.Errorf("invalid round length (must be one of %v): %d", game.RoundLengths, c.roundLength)
	}
	if c.dbPath == "" {
		return errors.New("--db must not be empty")
	}
	if c.sessionTimeout != 0 && c.sessionTimeout < minSessionTimeout {
		return fmt.Errorf("invalid session timeout (must be 0 or at least %s): %s", minSessionTimeout, c.sessionTimeout)
	}
	if c.feedInterval < 0 {
		return fmt.Errorf("invalid feed interval (must not be negative): %s", c.feedInterval)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

// defaultSettings are used until a player saves their own.
func (c *Config) defaultSettings() game.Settings {
	settings := game.DefaultSettings()
	settings.RoundSeconds = c.roundLength
	return settings
}

// loadDotEnv loads variables from a dotenv file if present. Variables
// already set in the environment win.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("BILSENE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "bilsene",
		Short:         "A forehead word-guessing party game, played by tilting your phone.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: BILSENE_BIND)")
	fs.StringVar(&cfg.dbPath, "db", "bilsene.db", "path to the sqlite database for categories and settings (env: BILSENE_DB)")
	fs.DurationVar(&cfg.feedInterval, "feed-interval", 0, "how often to refresh the remote category list, 0 to fetch only at startup (env: BILSENE_FEED_INTERVAL)")
	fs.StringVar(&cfg.feedURL, "feed-url", "", "url of a remote json category list (env: BILSENE_FEED_URL)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: BILSENE_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: BILSENE_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: BILSENE_PROFILE)")
	fs.IntVar(&cfg.roundLength, "round-length", game.DefaultRoundSeconds, "default round length in seconds: 30, 60, 90 or 120 (env: BILSENE_ROUND_LENGTH)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle game sessions are ended, 0 to keep them forever (env: BILSENE_SESSION_TIMEOUT)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: BILSENE_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: BILSENE_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: BILSENE_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: BILSENE_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("bilsene v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
