package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/vk/dyninputs/internal/app"
	"github.com/vk/dyninputs/internal/dyninputs"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("dyninputs", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
dyninputs - Keeps the numbered inputs of multi-switch nodes in step with their input count.

Usage:
  dyninputs [options] [NODE_TYPE]

Arguments:
  NODE_TYPE
    Node type to create for the session: a canonical name, a display name
    or a namespaced identifier.

Options:
`)
		flagSet.PrintDefaults()
	}

	nodeTypeFlag := flagSet.String("node-type", "", "Node type to create for the session.")
	countsFlag := flagSet.String("counts", "", "Comma-separated input counts to apply in turn, e.g. '4,1,3'.")
	registryPathFlag := flagSet.String("registry-path", "", "Path to a .hcl file or directory with extra node_type definitions.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	eventsURLFlag := flagSet.String("events-url", "", "Backend socket.io URL to receive memory cleanup requests from. Empty disables the relay.")
	freeURLFlag := flagSet.String("free-url", "", "Backend endpoint cleanup requests are posted to. Defaults to /free on the events host.")
	pollFlag := flagSet.Duration("poll-interval", dyninputs.DefaultPollInterval, "How often the input count is sampled.")
	initialDelayFlag := flagSet.Duration("initial-delay", dyninputs.DefaultInitialDelay, "Delay before the first reconciliation of a new node.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	nodeType := *nodeTypeFlag
	if nodeType == "" && flagSet.NArg() > 0 {
		nodeType = flagSet.Arg(0)
	}
	slog.Debug("Node type determined.", "node_type", nodeType)

	if nodeType == "" {
		slog.Debug("No node type provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	counts, err := parseCounts(*countsFlag)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		RegistryPath:    *registryPathFlag,
		NodeType:        nodeType,
		Counts:          counts,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		HealthcheckPort: *healthPortFlag,
		EventsURL:       *eventsURLFlag,
		FreeURL:         *freeURLFlag,
		PollInterval:    *pollFlag,
		InitialDelay:    *initialDelayFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

// parseCounts parses a comma-separated list of non-negative integers.
func parseCounts(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var counts []int
	for _, part := range strings.Split(raw, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid counts: '%s' is not a non-negative integer", strings.TrimSpace(part))
		}
		counts = append(counts, n)
	}
	return counts, nil
}
