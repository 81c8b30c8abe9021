package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/mattjoyce/catapult/internal/config"
	"github.com/mattjoyce/catapult/internal/dispatch"
	"github.com/mattjoyce/catapult/internal/history"
	"github.com/mattjoyce/catapult/internal/hook"
	"github.com/mattjoyce/catapult/internal/log"
	"github.com/mattjoyce/catapult/internal/runner"
	"github.com/mattjoyce/catapult/internal/template"
	"github.com/mattjoyce/catapult/internal/tui/watch"
	"github.com/mattjoyce/catapult/internal/webhook"
	"gopkg.in/yaml.v3"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "serve":
		os.Exit(runServe(args))
	case "config":
		os.Exit(runConfigNoun(args))
	case "hook":
		os.Exit(runHookNoun(args))
	case "history":
		os.Exit(runHistoryNoun(args))
	case "version":
		fmt.Printf("catapult version %s\n", version)
		os.Exit(0)
	case "help", "--help", "-h":
		printUsage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`catapult - Webhook gateway for a pueue-compatible task runner

Usage:
  catapult <command> [flags]

Commands:
  serve             Start the webhook server in foreground
  config check      Validate config syntax, policy, and integrity
  config lock       Authorize current config (update integrity hashes)
  config show       Print the effective configuration (secrets redacted)
  hook list         Show configured hooks and their template parameters
  history list      Show recent dispatch attempts
  history watch     Live terminal view of dispatch activity
  version           Show version information
  help              Show this help message

Config discovery order: $CATAPULT_CONFIG, ~/.config/catapult/catapult.yaml,
/etc/catapult/catapult.yaml, ./catapult.yaml. Override with --config.
`)
}

// resolveConfigPath applies the --config flag or falls back to discovery.
func resolveConfigPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return config.Discover()
}

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configFlag := fs.String("config", "", "Path to config file")
	_ = fs.Parse(args)

	configPath, err := resolveConfigPath(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	log.Setup(cfg.Service.LogLevel, cfg.Service.LogFormat)
	logger := log.WithComponent("main")
	logger.Info("starting catapult", "version", version, "config", configPath)

	integrity, err := config.VerifyIntegrity(configPath)
	if err != nil {
		logger.Error("config integrity verification failed", "error", err)
		return 1
	}
	for _, w := range integrity.Warnings {
		logger.Warn("config integrity", "warning", w)
	}
	if !integrity.Passed {
		for _, e := range integrity.Errors {
			logger.Error("config integrity", "error", e)
		}
		return 1
	}

	registry, err := hook.NewRegistry(cfg.Hooks)
	if err != nil {
		logger.Error("invalid hook configuration", "error", err)
		return 1
	}
	if registry.Len() == 0 {
		logger.Warn("no hooks configured, every request will 404")
	}
	if !cfg.AuthPolicy().Enabled() {
		logger.Warn("no authentication configured, all requests will be accepted")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := history.Open(ctx, cfg.History.Path)
	if err != nil {
		logger.Error("failed to open history store", "error", err)
		return 1
	}
	defer store.Close()

	client := runner.NewClient(runner.Options{
		Port:       cfg.Runner.Port,
		UnixSocket: cfg.Runner.UnixSocket,
		Secret:     cfg.Runner.Secret,
		SecretFile: cfg.Runner.SecretFile,
	})

	// Fail fast when the daemon is unreachable or the secret is wrong,
	// instead of discovering it on the first inbound request.
	logger.Info("checking runner daemon availability")
	if err := client.Ping(ctx); err != nil {
		logger.Error("runner daemon is not reachable", "error", err)
		return 1
	}

	dispatcher := dispatch.New(registry, cfg.AuthPolicy(), client, store)
	server := webhook.New(webhook.Config{
		Listen:              cfg.Server.Listen,
		MaxBodySize:         cfg.Server.MaxBodySize,
		SSLCertChain:        cfg.Server.SSLCertChain,
		SSLPrivateKey:       cfg.Server.SSLPrivateKey,
		BasicAuthConfigured: cfg.Auth.BasicAuthUser != "" && cfg.Auth.BasicAuthPassword != "",
	}, dispatcher, log.WithComponent("webhook"))

	if err := server.Start(ctx); err != nil && ctx.Err() == nil {
		logger.Error("webhook server failed", "error", err)
		return 1
	}
	logger.Info("shutdown complete")
	return 0
}

func runConfigNoun(args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: catapult config <check|lock|show> [flags]")
		return 1
	}
	action := args[0]
	fs := flag.NewFlagSet("config "+action, flag.ExitOnError)
	configFlag := fs.String("config", "", "Path to config file")
	_ = fs.Parse(args[1:])

	configPath, err := resolveConfigPath(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	switch action {
	case "check":
		return runConfigCheck(configPath)
	case "lock":
		if _, err := config.Lock(configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Printf("Locked %s (checksums updated)\n", configPath)
		return 0
	case "show":
		return runConfigShow(configPath)
	default:
		fmt.Fprintf(os.Stderr, "Unknown config action: %s\n", action)
		return 1
	}
}

func runConfigCheck(configPath string) int {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
		return 1
	}
	if _, err := hook.NewRegistry(cfg.Hooks); err != nil {
		fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
		return 1
	}

	result, err := config.VerifyIntegrity(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
		return 1
	}
	for _, w := range result.Warnings {
		fmt.Printf("WARN: %s\n", w)
	}
	for _, e := range result.Errors {
		fmt.Fprintf(os.Stderr, "FAIL: %s\n", e)
	}
	if !result.Passed {
		return 1
	}

	fmt.Printf("OK: %s (%d hooks)\n", configPath, len(cfg.Hooks))
	return 0
}

func runConfigShow(configPath string) int {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	data, err := yaml.Marshal(redactConfig(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Print(string(data))
	return 0
}

// redactConfig replaces secret material with a marker so the effective
// config can be shared safely.
func redactConfig(cfg *config.Config) *config.Config {
	out := *cfg
	if out.Auth.Secret != "" {
		out.Auth.Secret = "[redacted]"
	}
	if out.Auth.BasicAuthPassword != "" {
		out.Auth.BasicAuthPassword = "[redacted]"
	}
	if out.Runner.Secret != "" {
		out.Runner.Secret = "[redacted]"
	}
	return &out
}

func runHookNoun(args []string) int {
	if len(args) < 1 || args[0] != "list" {
		fmt.Fprintln(os.Stderr, "Usage: catapult hook list [flags]")
		return 1
	}
	fs := flag.NewFlagSet("hook list", flag.ExitOnError)
	configFlag := fs.String("config", "", "Path to config file")
	_ = fs.Parse(args[1:])

	configPath, err := resolveConfigPath(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tGROUP\tCWD\tPARAMETERS")
	for _, h := range cfg.Hooks {
		group := h.Group
		if group == "" {
			group = hook.DefaultGroup
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", h.Name, group, h.Cwd, formatParams(template.Params(h.Command)))
	}
	w.Flush()
	return 0
}

// formatParams renders a parameter name list for display.
func formatParams(names []string) string {
	if len(names) == 0 {
		return "-"
	}
	out := names[0]
	for _, n := range names[1:] {
		out += ", " + n
	}
	return out
}

func runHistoryNoun(args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: catapult history <list|watch> [flags]")
		return 1
	}
	action := args[0]
	fs := flag.NewFlagSet("history "+action, flag.ExitOnError)
	configFlag := fs.String("config", "", "Path to config file")
	limit := fs.Int("limit", 20, "Number of entries to show")
	_ = fs.Parse(args[1:])

	configPath, err := resolveConfigPath(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ctx := context.Background()
	store, err := history.Open(ctx, cfg.History.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer store.Close()

	switch action {
	case "list":
		entries, err := store.Recent(ctx, *limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tHOOK\tOUTCOME\tDETAIL")
		for _, e := range entries {
			detail := ""
			if e.Command != nil {
				detail = *e.Command
			} else if e.Error != nil {
				detail = *e.Error
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.Hook, e.Outcome, detail)
		}
		w.Flush()
		return 0
	case "watch":
		if err := watch.Run(store); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown history action: %s\n", action)
		return 1
	}
}
