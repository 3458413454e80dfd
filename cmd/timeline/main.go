package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pbaille/timeline/internal/archive"
	"github.com/pbaille/timeline/internal/artifact"
	"github.com/pbaille/timeline/internal/client"
	"github.com/pbaille/timeline/internal/config"
	"github.com/pbaille/timeline/internal/datenav"
)

var v = config.New()

func main() {
	rootCmd := &cobra.Command{
		Use:           "timeline",
		Short:         "Browse your personal timeline one day at a time",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("backend", "", "backend base URL")
	flags.String("token", "", "backend bearer token")
	flags.String("db", "", "archive database path")
	flags.String("cache-dir", "", "artifact cache directory")
	flags.String("timezone", "", "timezone of the timeline, e.g. Europe/Berlin")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	bindFlag(rootCmd, config.BackendURL, "backend")
	bindFlag(rootCmd, config.Token, "token")
	bindFlag(rootCmd, config.DB, "db")
	bindFlag(rootCmd, config.CacheDir, "cache-dir")
	bindFlag(rootCmd, config.Timezone, "timezone")
	bindFlag(rootCmd, config.LogLevel, "log-level")

	rootCmd.AddCommand(dayCmd())
	rootCmd.AddCommand(browseCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(filtersCmd())
	rootCmd.AddCommand(archiveCmd())
	addVersion(rootCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := v.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

// env is what every command starts from.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	nav    *datenav.Controller
}

func loadEnv(vp *viper.Viper) (*env, error) {
	cfg, err := config.Load(vp)
	if err != nil {
		return nil, err
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return &env{cfg: cfg, logger: logger, nav: datenav.New(cfg.Location)}, nil
}

func (e *env) client() *client.Client {
	return client.New(e.cfg.BackendURL, client.WithToken(e.cfg.Token), client.WithLogger(e.logger))
}

func (e *env) artifacts(src artifact.Source) (*artifact.Cache, error) {
	if err := os.MkdirAll(e.cfg.CacheDir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return artifact.NewCache(e.cfg.CacheDir, src, e.logger), nil
}

func (e *env) archive() (*archive.Store, error) {
	dir := filepath.Dir(e.cfg.DB)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	return archive.New(e.cfg.DB, e.cfg.Location)
}

// dateArg parses the optional date argument; no argument means today.
func (e *env) dateArg(args []string) (string, error) {
	if len(args) == 0 {
		return datenav.Format(e.nav.Today()), nil
	}
	d, err := e.nav.Parse(args[0])
	if err != nil {
		return "", err
	}
	return datenav.Format(d), nil
}

func printJSON(data any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
