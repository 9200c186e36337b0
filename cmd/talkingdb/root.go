package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/talkingdb"
	"github.com/kailas-cloud/talkingdb/internal/config"
	logpkg "github.com/kailas-cloud/talkingdb/internal/logger"
	"github.com/kailas-cloud/talkingdb/internal/version"
)

// app carries what every subcommand needs once the root pre-run is done.
type app struct {
	out    io.Writer
	cfg    config.Config
	logger *zap.Logger
	client *talkingdb.Client

	// flags
	configPath string
	env        string
	endpoint   string
	timeout    time.Duration
	logLevel   string
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:   "talkingdb",
		Short: "Index documents and query graphs on a TalkingDB service",
		Long: `Command line client for a TalkingDB document-graph service.

Requests are retried on connection errors, timeouts and 5xx responses
with exponential backoff. Settings come from a YAML file (--config, or
config/<env>.yaml), and flags override them.

Examples:
  talkingdb index --document doc.json --file-index index.json
  talkingdb match --graph g1 --graph g2 --query "payment terms"
  talkingdb match --graph g1 --graph g2 --query "payment terms" --workers 2`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) { a.teardown() },
	}

	f := root.PersistentFlags()
	f.StringVar(&a.configPath, "config", "", "path to a YAML config file")
	f.StringVar(&a.env, "env", config.GetEnv(), "environment: local, dev or prod (selects config/<env>.yaml)")
	f.StringVar(&a.endpoint, "endpoint", "", "service base address, overrides client.endpoint")
	f.DurationVar(&a.timeout, "timeout", 0, "per-attempt timeout, overrides client.timeout_sec")
	f.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error, overrides logging.level")

	root.AddCommand(
		newIndexCmd(a),
		newMatchCmd(a),
		newVersionCmd(a),
	)
	return root
}

// setup loads configuration, builds the logger and the client.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	if a.endpoint != "" {
		cfg.Client.Endpoint = a.endpoint
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	a.cfg = cfg

	logEnv := a.env
	if logEnv != "prod" && logEnv != "dev" {
		logEnv = "local"
	}
	a.logger, err = logpkg.NewLogger(logEnv, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	cmd.SetContext(logpkg.ContextWithLogger(cmd.Context(), a.logger))

	timeout := cfg.Client.Timeout()
	if a.timeout > 0 {
		timeout = a.timeout
	}
	policy := talkingdb.DefaultRetryPolicy()
	policy.MaxAttempts = cfg.Retry.MaxAttempts
	policy.BaseDelay = cfg.Retry.BaseDelay()
	policy.MaxDelay = cfg.Retry.MaxDelay()
	policy.Jitter = cfg.Retry.Jitter()

	a.client, err = talkingdb.New(cfg.Client.Endpoint,
		talkingdb.WithTimeout(timeout),
		talkingdb.WithRetryPolicy(policy),
		talkingdb.WithRateLimit(cfg.RateLimit.RequestsPerSec, cfg.RateLimit.Burst),
		talkingdb.WithLogger(a.logger),
	)
	if err != nil {
		return err
	}

	a.logger.Debug("client ready",
		zap.String("version", version.Version),
		zap.String("env", a.env),
		zap.String("endpoint", a.client.Endpoint()),
		zap.Duration("timeout", timeout),
		zap.Int("max_attempts", policy.MaxAttempts),
	)
	return nil
}

// loadConfig reads --config, else config/<env>.yaml, else defaults.
func (a *app) loadConfig() (config.Config, error) {
	if a.configPath != "" {
		return config.LoadFile(a.configPath)
	}
	cfg, err := config.Load(a.env)
	if errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}

func (a *app) teardown() {
	if a.client != nil {
		a.client.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			_, err := fmt.Fprintln(a.out, version.String())
			return err
		},
	}
}

// readJSONObject decodes a JSON object from path; "-" reads stdin.
// An empty path yields an empty object.
func readJSONObject(path string, stdin io.Reader) (map[string]any, error) {
	if path == "" {
		return map[string]any{}, nil
	}

	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(filepath.Clean(path))
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if obj == nil {
		return nil, fmt.Errorf("parse %s: expected a JSON object", path)
	}
	return obj, nil
}
