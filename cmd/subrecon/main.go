package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/resistanceisuseless/subrecon/internal/candidates"
	"github.com/resistanceisuseless/subrecon/internal/config"
	"github.com/resistanceisuseless/subrecon/internal/enumeration"
	"github.com/resistanceisuseless/subrecon/internal/output"
	"github.com/resistanceisuseless/subrecon/internal/progress"
	"github.com/resistanceisuseless/subrecon/internal/summary"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &Flags{}
	v := newViper()

	cmd := &cobra.Command{
		Use:   "subrecon -d <domain> [options]",
		Short: "Active subdomain reconnaissance",
		Long: `SubRecon probes a list of candidate labels under a domain for A, CNAME
and MX records, checks HTTP reachability and flags dangling CNAMEs.

Examples:
  # Default candidate list, JSON to stdout
  subrecon -d example.com

  # Own labels, text output with a summary
  subrecon -d example.com -s www,api,intranet -f text --summary

  # Wordlist with the stealth pacing profile
  subrecon -d example.com -w labels.txt --profile stealth -o results.json`,
		Version:       GetVersionInfo(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.Domain == "" {
				return fmt.Errorf("domain is required (use -d)")
			}
			cfg, err := loadConfig(flags, v)
			if err != nil {
				return err
			}
			return runEnumerate(cmd, cfg, flags)
		},
	}

	flags.registerPersistent(cmd.PersistentFlags())
	flags.registerEnumerate(cmd.Flags())
	bindFlags(v, cmd.PersistentFlags(), cmd.Flags())

	cmd.AddCommand(newServeCmd(flags, v))
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func runEnumerate(cmd *cobra.Command, cfg *config.Config, flags *Flags) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := newLogger(cfg.Verbose, zapcore.WarnLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	// Progress bars fight with debug logs on stderr
	tracker := progress.New(os.Stderr, flags.Progress && !cfg.Verbose)

	labels := flags.Subdomains
	if flags.Wordlist != "" {
		fromFile, err := candidates.LoadFile(flags.Wordlist)
		if err != nil {
			return err
		}
		labels = append(labels, fromFile...)
	}

	tracker.Info("Starting enumeration for domain: %s", flags.Domain)

	enumerator := enumeration.New(cfg, logger, enumeration.WithProgress(tracker))
	result, err := enumerator.Enumerate(ctx, enumeration.Request{
		Domain:     flags.Domain,
		Candidates: labels,
		Page:       flags.Page,
		PageSize:   flags.PageSize,
	})
	if err != nil {
		return err
	}

	if result.Partial {
		tracker.Info("Deadline of %s reached, results are partial", cfg.Deadline())
	}

	if err := output.New(cfg).WriteResults(result.Response()); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	if cfg.Output.File != "" && cfg.Output.File != "-" {
		tracker.Info("Results written to %s", cfg.Output.File)
	}

	if flags.Summary {
		summary.Analyze(result).Print(os.Stderr)
	}
	return nil
}

// newLogger returns a development logger in verbose mode and a JSON
// production logger at the given level otherwise.
func newLogger(verbose bool, level zapcore.Level) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}
