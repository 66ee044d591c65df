// Package cli implements pmctl, the maintenance dashboard client: it fetches
// rows from the API, aggregates them into per-category pivot tables and
// requests export documents for a selection of PM events.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yungbote/assetpm-backend/internal/clients/pmapi"
	"github.com/yungbote/assetpm-backend/internal/maintenance/aggregate"
	"github.com/yungbote/assetpm-backend/internal/maintenance/export"
	"github.com/yungbote/assetpm-backend/internal/platform/logger"
)

// Exit codes returned by Execute.
const (
	ExitOK          = 0
	ExitError       = 1
	ExitNoSelection = 2
)

const defaultConfigPath = "pmctl.yaml"

type rootFlags struct {
	configPath string
	baseURL    string
	tieBreak   string
	outputDir  string
	customer   string
	branch     string
	json       bool
	verbose    bool
}

// env carries what every subcommand needs once flags are parsed.
type env struct {
	cfg    Config
	log    *logger.Logger
	client *pmapi.Client
	out    io.Writer
	flags  *rootFlags
}

func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	flags := &rootFlags{}
	e := &env{out: out, flags: flags}

	root := &cobra.Command{
		Use:   "pmctl",
		Short: "Preventive maintenance dashboard client",
		Long: `pmctl shows the preventive-maintenance state of a customer branch.

Rows are fetched from the asset PM API, grouped by category and rendered as one
table per category, where each checklist item shows the result of the asset's
most recent PM event.

Examples:
  pmctl pivot --customer 7 --branch North
  pmctl pivot --customer 7 --branch North --search prn
  pmctl export --customer 7 --branch North --event 12:40 --event 12:41
  pmctl submit --asset 12 --date 2024-05-01 --check 3=ok --check 4=fail:"worn belt"`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.init(cmd)
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", defaultConfigPath, "path to the YAML config file")
	pf.StringVar(&flags.baseURL, "base-url", "", "API base URL (overrides config)")
	pf.StringVar(&flags.tieBreak, "tie-break", "", "same-date snapshot policy: first, last or flag")
	pf.StringVar(&flags.outputDir, "output-dir", "", "directory for exported documents")
	pf.StringVar(&flags.customer, "customer", "", "customer id")
	pf.StringVar(&flags.branch, "branch", "", "branch name")
	pf.BoolVar(&flags.json, "json", false, "print JSON instead of tables")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging on stderr")

	root.AddCommand(
		newPivotCommand(e),
		newChecklistCommand(e),
		newSubmitCommand(e),
		newExportCommand(e),
	)
	return root
}

func (e *env) init(cmd *cobra.Command) error {
	mode := "test"
	if e.flags.verbose {
		mode = "development"
	}
	log, err := logger.New(mode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	e.log = log

	explicit := cmd.Flags().Changed("config")
	cfg, err := LoadConfig(e.flags.configPath, explicit, log)
	if err != nil {
		return err
	}
	if v := strings.TrimSpace(e.flags.baseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(e.flags.outputDir); v != "" {
		cfg.OutputDir = v
	}
	if v := strings.TrimSpace(e.flags.tieBreak); v != "" {
		tie, err := aggregate.ParseTieBreak(v)
		if err != nil {
			return err
		}
		cfg.TieBreak = tie
	}
	e.cfg = cfg

	client, err := pmapi.New(pmapi.Options{
		BaseURL:    cfg.BaseURL,
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
		Logger:     log,
	})
	if err != nil {
		return err
	}
	e.client = client
	return nil
}

// Execute runs pmctl with args and returns the process exit code.
func Execute(ctx context.Context, args []string, out, errOut io.Writer) int {
	root := NewRootCommand(out, errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}
	fmt.Fprintln(errOut, "Error:", userMessage(err))
	return ExitCode(err)
}

func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, export.ErrNoSelection):
		return ExitNoSelection
	default:
		return ExitError
	}
}

// userMessage prefers the message a collaborator meant for people over the
// wrapped error chain.
func userMessage(err error) string {
	var ee *export.Error
	if errors.As(err, &ee) {
		return ee.Message
	}
	return err.Error()
}
