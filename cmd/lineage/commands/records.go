package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/chrono-code/lineage/internal/config"
	"github.com/chrono-code/lineage/internal/observability"
	"github.com/chrono-code/lineage/internal/provenance"
	"github.com/chrono-code/lineage/pkg/gitlib"
)

// RecordsCommand holds configuration for the records command.
type RecordsCommand struct {
	configPath   string
	head         string
	tail         string
	outputPath   string
	skipVendored bool
	limit        int

	stdout io.Writer
}

// NewRecordsCommand creates the records command. It streams every line
// lifetime record as one JSON object per line, in emission order.
func NewRecordsCommand() *cobra.Command {
	rc := &RecordsCommand{stdout: os.Stdout}

	cmd := &cobra.Command{
		Use:   "records [repository]",
		Short: "Walk history and stream raw line lifetime records",
		Args:  cobra.MaximumNArgs(1),
		RunE:  rc.run,
	}

	cmd.Flags().StringVarP(&rc.configPath, "config", "c", "", "Config file path (default: .lineage.yaml in CWD or $HOME)")
	cmd.Flags().StringVar(&rc.head, "head", "", "Revision to walk from (default: HEAD)")
	cmd.Flags().StringVar(&rc.tail, "tail", "", "Oldest revision to walk to, exclusive (default: repository root)")
	cmd.Flags().StringVarP(&rc.outputPath, "output", "o", "", "Write records to a file instead of stdout")
	cmd.Flags().BoolVar(&rc.skipVendored, "skip-vendored", false, "Exclude vendored paths from tracking")
	cmd.Flags().IntVar(&rc.limit, "limit", 0, "Stop after this many records (0 = no limit)")

	return cmd
}

// markerJSON is the wire shape of one marker in the record stream.
type markerJSON struct {
	Commit string    `json:"commit"`
	Path   string    `json:"path"`
	Line   int       `json:"line"`
	Author string    `json:"author"`
	When   time.Time `json:"when"`
}

// recordJSON is the wire shape of one streamed record.
type recordJSON struct {
	Birth      markerJSON `json:"birth"`
	Death      markerJSON `json:"death"`
	AgeSeconds int64      `json:"age_seconds"`
}

func (rc *RecordsCommand) run(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(rc.configPath)
	if err != nil {
		return err
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

	repo, err := gitlib.OpenRepository(repositoryPath(args))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRepositoryLoad, err)
	}
	defer repo.Free()

	out, closeOut, err := openOutput(rc.outputPath, rc.stdout)
	if err != nil {
		return err
	}
	defer closeOut()

	engine := newEngine(repo, cfg, observability.NewRunMetrics(), discardLogger())
	enc := json.NewEncoder(out)
	emitted := 0

	for rec, walkErr := range engine.Records(cmd.Context(), provenance.Options{Head: cfg.Walk.Head, Tail: cfg.Walk.Tail}) {
		if walkErr != nil {
			return walkErr
		}

		if encodeErr := enc.Encode(convertRecord(rec)); encodeErr != nil {
			return fmt.Errorf("encode record: %w", encodeErr)
		}

		emitted++
		if rc.limit > 0 && emitted >= rc.limit {
			break
		}
	}

	return nil
}

func convertRecord(rec provenance.Record) recordJSON {
	return recordJSON{
		Birth:      convertMarker(rec.Birth),
		Death:      convertMarker(rec.Death),
		AgeSeconds: rec.AgeSeconds,
	}
}

func convertMarker(m provenance.Marker) markerJSON {
	return markerJSON{
		Commit: m.Commit.Hash.String(),
		Path:   m.Path,
		Line:   m.Line,
		Author: m.Commit.AuthorName + " <" + m.Commit.AuthorEmail + ">",
		When:   m.Commit.When,
	}
}
