package longevity

import (
	"iter"
	"sort"

	"github.com/chrono-code/lineage/internal/provenance"
)

// OtherAuthors labels the aggregate bucket for authors outside the tracked
// identity set.
const OtherAuthors = "other"

// AuthorStats is the aggregate over all lines born to one author.
type AuthorStats struct {
	Name              string `json:"name" yaml:"name"`
	LineCount         int64  `json:"line_count" yaml:"line_count"`
	AverageAgeSeconds int64  `json:"average_age_seconds" yaml:"average_age_seconds"`
}

// Stats is the full aggregation result of one run.
type Stats struct {
	LineCount         int64         `json:"line_count" yaml:"line_count"`
	AverageAgeSeconds int64         `json:"average_age_seconds" yaml:"average_age_seconds"`
	Authors           []AuthorStats `json:"authors,omitempty" yaml:"authors,omitempty"`
}

type bucket struct {
	sum   int64
	count int64
}

func (b *bucket) add(age int64) {
	b.sum += age
	b.count++
}

func (b *bucket) average() int64 {
	if b.count == 0 {
		return 0
	}

	return b.sum / b.count
}

// Accumulator folds lifetime records into running sums. Records are
// attributed to the author of their birth commit; with a tracked identity
// set, unmatched authors collapse into a single "other" bucket, and without
// one every distinct author signature gets its own bucket.
type Accumulator struct {
	ids *Identities

	repo    bucket
	tracked []bucket
	other   bucket
	open    map[string]*bucket
}

// NewAccumulator creates an accumulator. ids may be nil.
func NewAccumulator(ids *Identities) *Accumulator {
	acc := &Accumulator{ids: ids}

	if ids.Count() > 0 {
		acc.tracked = make([]bucket, ids.Count())
	} else {
		acc.open = make(map[string]*bucket)
	}

	return acc
}

// Add folds one record into the aggregates.
func (a *Accumulator) Add(rec provenance.Record) {
	a.repo.add(rec.AgeSeconds)

	birth := rec.Birth.Commit

	if a.open != nil {
		key := birth.AuthorName + " <" + birth.AuthorEmail + ">"

		b, ok := a.open[key]
		if !ok {
			b = &bucket{}
			a.open[key] = b
		}

		b.add(rec.AgeSeconds)

		return
	}

	if idx, ok := a.ids.Match(birth.AuthorName, birth.AuthorEmail); ok {
		a.tracked[idx].add(rec.AgeSeconds)

		return
	}

	a.other.add(rec.AgeSeconds)
}

// Stats finalizes the aggregation. Per-author entries are sorted by line
// count descending, name ascending on ties; averages truncate toward zero.
func (a *Accumulator) Stats() *Stats {
	stats := &Stats{
		LineCount:         a.repo.count,
		AverageAgeSeconds: a.repo.average(),
	}

	if a.open != nil {
		for name, b := range a.open {
			stats.Authors = append(stats.Authors, AuthorStats{
				Name:              name,
				LineCount:         b.count,
				AverageAgeSeconds: b.average(),
			})
		}
	} else {
		for idx := range a.tracked {
			b := &a.tracked[idx]
			if b.count == 0 {
				continue
			}

			stats.Authors = append(stats.Authors, AuthorStats{
				Name:              a.ids.Name(idx),
				LineCount:         b.count,
				AverageAgeSeconds: b.average(),
			})
		}

		if a.other.count > 0 {
			stats.Authors = append(stats.Authors, AuthorStats{
				Name:              OtherAuthors,
				LineCount:         a.other.count,
				AverageAgeSeconds: a.other.average(),
			})
		}
	}

	sort.Slice(stats.Authors, func(i, j int) bool {
		if stats.Authors[i].LineCount != stats.Authors[j].LineCount {
			return stats.Authors[i].LineCount > stats.Authors[j].LineCount
		}

		return stats.Authors[i].Name < stats.Authors[j].Name
	})

	return stats
}

// Summarize drains a record sequence into final statistics.
func Summarize(records iter.Seq2[provenance.Record, error], ids *Identities) (*Stats, error) {
	acc := NewAccumulator(ids)

	for rec, err := range records {
		if err != nil {
			return nil, err
		}

		acc.Add(rec)
	}

	return acc.Stats(), nil
}
