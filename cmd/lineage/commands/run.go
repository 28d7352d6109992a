// Package commands implements CLI command handlers for lineage.
package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/chrono-code/lineage/internal/config"
	"github.com/chrono-code/lineage/internal/gitdiff"
	"github.com/chrono-code/lineage/internal/gitsource"
	"github.com/chrono-code/lineage/internal/longevity"
	"github.com/chrono-code/lineage/internal/observability"
	"github.com/chrono-code/lineage/internal/provenance"
	"github.com/chrono-code/lineage/pkg/gitlib"
)

// ErrRepositoryLoad indicates a failure to open the git repository.
var ErrRepositoryLoad = errors.New("failed to load repository")

// RunCommand holds configuration and dependencies for the run command.
type RunCommand struct {
	configPath   string
	head         string
	tail         string
	format       string
	outputPath   string
	peopleDict   string
	authors      []string
	skipVendored bool
	verbose      bool
	noColor      bool

	stdout io.Writer
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	rc := &RunCommand{stdout: os.Stdout}

	cmd := &cobra.Command{
		Use:   "run [repository]",
		Short: "Walk history and report line longevity statistics",
		Long: "Reconstruct the lifetime of every line that ever existed in the\n" +
			"repository and report average line age, overall and per author.",
		Args: cobra.MaximumNArgs(1),
		RunE: rc.run,
	}

	cmd.Flags().StringVarP(&rc.configPath, "config", "c", "", "Config file path (default: .lineage.yaml in CWD or $HOME)")
	cmd.Flags().StringVar(&rc.head, "head", "", "Revision to walk from (default: HEAD)")
	cmd.Flags().StringVar(&rc.tail, "tail", "", "Oldest revision to walk to, exclusive (default: repository root)")
	cmd.Flags().StringVarP(&rc.format, "format", "f", "", "Output format: yaml, json, table, plot")
	cmd.Flags().StringVarP(&rc.outputPath, "output", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().StringVar(&rc.peopleDict, "people-dict", "", "Identity file with one 'Name|email|email' entry per line")
	cmd.Flags().StringSliceVar(&rc.authors, "authors", nil, "Inline identity entries; overrides --people-dict")
	cmd.Flags().BoolVar(&rc.skipVendored, "skip-vendored", false, "Exclude vendored paths from tracking")
	cmd.Flags().BoolVarP(&rc.verbose, "verbose", "v", false, "Log walk progress and run counters")
	cmd.Flags().BoolVar(&rc.noColor, "no-color", false, "Disable colored output")

	return cmd
}

func (rc *RunCommand) run(cmd *cobra.Command, args []string) error {
	cfg, err := rc.loadConfig(cmd)
	if err != nil {
		return err
	}

	ids, err := cfg.Identities()
	if err != nil {
		return err
	}

	color.NoColor = color.NoColor || rc.noColor //nolint:reassign // intentional override of library global

	repo, err := gitlib.OpenRepository(repositoryPath(args))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRepositoryLoad, err)
	}
	defer repo.Free()

	metrics := observability.NewRunMetrics()
	engine := newEngine(repo, cfg, metrics, rc.progressLogger())
	acc := longevity.NewAccumulator(ids)

	walkErr := engine.Reconstruct(cmd.Context(), provenance.Options{Head: cfg.Walk.Head, Tail: cfg.Walk.Tail},
		func(rec provenance.Record) bool {
			metrics.RecordEmitted()
			acc.Add(rec)

			return true
		})
	if walkErr != nil {
		return walkErr
	}

	rc.logSnapshot(metrics)

	out, closeOut, err := openOutput(cfg.Output.File, rc.stdout)
	if err != nil {
		return err
	}
	defer closeOut()

	return longevity.WriteStats(acc.Stats(), cfg.Output.Format, out)
}

// loadConfig loads the file config and overlays the flags that were set.
func (rc *RunCommand) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(rc.configPath)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("head") {
		cfg.Walk.Head = rc.head
	}

	if cmd.Flags().Changed("tail") {
		cfg.Walk.Tail = rc.tail
	}

	if cmd.Flags().Changed("skip-vendored") {
		cfg.Walk.SkipVendored = rc.skipVendored
	}

	if cmd.Flags().Changed("format") {
		cfg.Output.Format = rc.format
	}

	if cmd.Flags().Changed("output") {
		cfg.Output.File = rc.outputPath
	}

	if cmd.Flags().Changed("people-dict") {
		cfg.Authors.Dict = rc.peopleDict
	}

	if cmd.Flags().Changed("authors") {
		cfg.Authors.Track = rc.authors
	}

	if validateErr := cfg.Validate(); validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return cfg, nil
}

func (rc *RunCommand) progressLogger() *slog.Logger {
	if !rc.verbose {
		return discardLogger()
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (rc *RunCommand) logSnapshot(metrics *observability.RunMetrics) {
	if !rc.verbose {
		return
	}

	snap, err := metrics.Snapshot()
	if err != nil {
		slog.Default().Warn("gather run counters", "error", err)

		return
	}

	color.New(color.FgGreen).Fprintf(os.Stderr, "processed %d commits, %d line records\n",
		snap.CommitsProcessed, snap.RecordsEmitted)

	for reason, count := range snap.PathsSkipped {
		color.New(color.FgYellow).Fprintf(os.Stderr, "skipped %d paths (%s)\n", count, reason)
	}
}

// newEngine wires the repository-backed provider and diff engine into a
// reconstruction engine with metric and progress hooks.
func newEngine(
	repo *gitlib.Repository,
	cfg *config.Config,
	metrics *observability.RunMetrics,
	logger *slog.Logger,
) *provenance.Engine {
	source := gitsource.NewSource(repo, cfg.Walk.SkipVendored)
	differ := &gitdiff.Engine{Repo: repo, SkipVendored: cfg.Walk.SkipVendored}

	hooks := provenance.Hooks{
		CommitProcessed: func(commit *provenance.Commit) {
			metrics.CommitProcessed()
			logger.Debug("commit processed", "hash", commit.Hash.Short(), "when", commit.When)
		},
		PathSkipped: func(path, reason string) {
			metrics.PathSkipped(reason)
			logger.Debug("path skipped", "path", path, "reason", reason)
		},
	}

	return provenance.NewEngine(source, differ, hooks)
}

func repositoryPath(args []string) string {
	if len(args) == 1 {
		return args[0]
	}

	return "."
}

// openOutput resolves the report destination. An empty path means fallback.
func openOutput(path string, fallback io.Writer) (io.Writer, func(), error) {
	if path == "" {
		return fallback, func() {}, nil
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open output %q: %w", path, err)
	}

	return file, func() { file.Close() }, nil
}
