package importer

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/impactgraph/pkg/entity"
	"github.com/matzehuels/impactgraph/pkg/observability"
	"github.com/matzehuels/impactgraph/pkg/store"
)

// Inserter stores one project at a time.
type Inserter interface {
	Insert(ctx context.Context, p entity.Project) store.InsertResult
}

// Summary reports the outcome of an import run.
type Summary struct {
	RunID    string
	Results  []store.InsertResult
	Counts   map[store.Outcome]int
	Duration time.Duration
	// Canceled is set when ctx ended before every project was submitted.
	Canceled bool
}

// Count returns the number of results with outcome o.
func (s Summary) Count(o store.Outcome) int { return s.Counts[o] }

// Skipped returns the number of skipped projects.
func (s Summary) Skipped() int {
	n := 0
	for o, c := range s.Counts {
		if o.Skipped() {
			n += c
		}
	}
	return n
}

// Importer submits projects to a database.
type Importer struct {
	DB     Inserter
	Logger *log.Logger
}

// New creates an importer. A nil logger uses log.Default().
func New(db Inserter, logger *log.Logger) *Importer {
	if logger == nil {
		logger = log.Default()
	}
	return &Importer{DB: db, Logger: logger}
}

// Run submits projects to db in order using the default logger.
func Run(ctx context.Context, db Inserter, projects []entity.Project) Summary {
	return New(db, nil).Run(ctx, projects)
}

// Run submits projects in order. A failing project is recorded in the
// summary and the run moves on; only context cancellation stops it early.
func (im *Importer) Run(ctx context.Context, projects []entity.Project) Summary {
	start := time.Now()
	sum := Summary{
		RunID:   uuid.NewString(),
		Results: make([]store.InsertResult, 0, len(projects)),
		Counts:  make(map[store.Outcome]int),
	}
	logger := im.Logger.With("run", sum.RunID[:8])
	logger.Info("import started", "projects", len(projects))

	for _, p := range projects {
		if ctx.Err() != nil {
			sum.Canceled = true
			break
		}
		res := im.DB.Insert(ctx, p)
		sum.Results = append(sum.Results, res)
		sum.Counts[res.Outcome]++
	}

	sum.Duration = time.Since(start)
	observability.Import().OnImportComplete(ctx, sum.RunID, len(sum.Results), sum.Duration)
	logger.Info("import finished",
		"inserted", sum.Count(store.Inserted),
		"skipped", sum.Skipped(),
		"failed", sum.Count(store.Failed),
		"duration", sum.Duration.Round(time.Millisecond))
	if sum.Canceled {
		logger.Warn("import canceled", "remaining", len(projects)-len(sum.Results))
	}
	return sum
}
