/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"github.com/Seednode/chronomatch/i18n"
)

type Config struct {
	bind           string
	content        string
	hideCorrect    bool
	lang           string
	port           int
	prefix         string
	profile        bool
	sessionTimeout time.Duration
	tlsCert        string
	tlsKey         string
	verbose        bool
	version        bool

	period string
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if _, err := language.Parse(c.lang); err != nil {
		return fmt.Errorf("invalid language %q: %w", c.lang, err)
	}
	if c.sessionTimeout < 0 {
		return fmt.Errorf("invalid session timeout (must not be negative): %s", c.sessionTimeout)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

// bindFlags applies CHRONOMATCH_* environment values to every flag in fs
// that was not set on the command line.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

func normalizeFlags(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("CHRONOMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return v
}

func newCmd(cfg *Config) *cobra.Command {
	v := newViper()

	cmd := &cobra.Command{
		Use:           "chronomatch",
		Short:         "A history matching game: pair each date with the event that happened on it.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			bindFlags(v, cmd.Flags())

			if err := cfg.validate(); err != nil {
				return err
			}

			return i18n.Init(cfg.lang)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	pfs := cmd.PersistentFlags()
	pfs.SetNormalizeFunc(normalizeFlags)

	pfs.StringVar(&cfg.content, "content", "", "path to a JSON or YAML period catalog, empty for the built-in one (env: CHRONOMATCH_CONTENT)")
	pfs.BoolVar(&cfg.hideCorrect, "hide-correct", false, "hide correct matches after a partial submission by default (env: CHRONOMATCH_HIDE_CORRECT)")
	pfs.StringVar(&cfg.lang, "lang", "en", "default message language (env: CHRONOMATCH_LANG)")
	pfs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: CHRONOMATCH_VERBOSE)")

	fs := cmd.Flags()
	fs.SetNormalizeFunc(normalizeFlags)

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: CHRONOMATCH_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: CHRONOMATCH_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: CHRONOMATCH_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: CHRONOMATCH_PROFILE)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle games are ended, 0 to keep them forever (env: CHRONOMATCH_SESSION_TIMEOUT)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: CHRONOMATCH_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: CHRONOMATCH_TLS_KEY)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: CHRONOMATCH_VERSION)")

	cmd.AddCommand(newPlayCmd(cfg))

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("chronomatch v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

func newPlayCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play in the terminal instead of the browser.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return PlayTerminal(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()
	fs.SetNormalizeFunc(normalizeFlags)

	fs.StringVar(&cfg.period, "period", "", "id of the period to start with, empty to pick from a list (env: CHRONOMATCH_PERIOD)")

	return cmd
}
