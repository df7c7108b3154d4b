package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/impactgraph/pkg/entity"
	errs "github.com/matzehuels/impactgraph/pkg/errors"
	"github.com/matzehuels/impactgraph/pkg/handle"
	"github.com/matzehuels/impactgraph/pkg/observability"
	"github.com/matzehuels/impactgraph/pkg/resolve"
)

// =============================================================================
// Insert Outcomes
// =============================================================================

// Outcome classifies the result of one insert.
type Outcome int

const (
	Inserted Outcome = iota
	SkippedInvalidName
	SkippedInvalidHandle
	SkippedLookupFailed
	SkippedDuplicate
	Failed
)

var outcomeNames = [...]string{
	Inserted:             "inserted",
	SkippedInvalidName:   "skipped_invalid_name",
	SkippedInvalidHandle: "skipped_invalid_handle",
	SkippedLookupFailed:  "skipped_lookup_failed",
	SkippedDuplicate:     "skipped_duplicate",
	Failed:               "failed",
}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Skipped reports whether the row was skipped without error.
func (o Outcome) Skipped() bool {
	return o != Inserted && o != Failed
}

// InsertResult describes what happened to one project.
type InsertResult struct {
	Outcome Outcome
	Name    string
	// Handle is the normalized handle, or the raw input when normalization
	// failed.
	Handle string
	// ID is set for Inserted and SkippedDuplicate.
	ID     int64
	Reason error
}

// =============================================================================
// Database
// =============================================================================

// Options configures a Database.
type Options struct {
	Logger *log.Logger
	// Clock stamps updated_at. Defaults to time.Now.
	Clock func() time.Time
}

// Database is the deduplicated project collection.
type Database struct {
	backend  Backend
	resolver *resolve.Resolver
	logger   *log.Logger
	clock    func() time.Time
}

// New creates a Database over backend. The resolver may be nil for
// read-only use; Insert then fails every row.
func New(backend Backend, resolver *resolve.Resolver, opts Options) *Database {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Database{backend: backend, resolver: resolver, logger: logger, clock: clock}
}

// Insert adds p unless its handle is invalid, cannot be resolved, or
// resolves to an identity already stored. Existing records are never
// refreshed.
func (d *Database) Insert(ctx context.Context, p entity.Project) InsertResult {
	res := d.insert(ctx, p)
	observability.Import().OnInsert(ctx, res.Outcome.String())

	kv := []any{"name", res.Name, "handle", res.Handle}
	switch res.Outcome {
	case Inserted:
		d.logger.Info("inserted", append(kv, "id", res.ID)...)
	case SkippedDuplicate:
		d.logger.Info("already stored", append(kv, "id", res.ID)...)
	case Failed:
		d.logger.Error("insert failed", append(kv, "error", res.Reason)...)
	default:
		d.logger.Warn("skipped", append(kv, "outcome", res.Outcome, "reason", res.Reason)...)
	}
	return res
}

func (d *Database) insert(ctx context.Context, p entity.Project) InsertResult {
	name := strings.TrimSpace(p.Name)
	res := InsertResult{Name: name, Handle: p.Handle}

	if err := errs.ValidateProjectName(name); err != nil {
		res.Outcome, res.Reason = SkippedInvalidName, err
		return res
	}

	h, err := handle.Normalize(p.Handle)
	if err != nil {
		res.Outcome, res.Reason = SkippedInvalidHandle, err
		return res
	}
	res.Handle = h

	if d.resolver == nil {
		res.Outcome, res.Reason = Failed, errors.New("no lookup provider configured")
		return res
	}
	snap, err := d.resolver.Resolve(ctx, h)
	if err != nil {
		res.Outcome, res.Reason = SkippedLookupFailed, err
		return res
	}
	res.ID = snap.ID

	recs, err := d.backend.Load(ctx)
	if err != nil {
		res.Outcome, res.Reason = Failed, err
		return res
	}
	for _, r := range recs {
		if r.ID == snap.ID {
			res.Outcome = SkippedDuplicate
			res.Reason = errs.New(errs.ErrCodeDuplicate, "id %d already stored as %q", r.ID, r.Name)
			return res
		}
	}

	friends := d.resolver.FriendsOf(ctx, snap.ID)
	followers := d.resolver.FollowersOf(ctx, snap.ID)

	rec := entity.Record{
		ID:             snap.ID,
		Name:           name,
		Handle:         h,
		UpdatedAt:      entity.NewTimestamp(d.clock()),
		Profile:        snap.Profile,
		FriendIDs:      friends.IDs,
		FollowerIDs:    followers.IDs,
		FriendsState:   friends.State,
		FollowersState: followers.State,
		Description:    strings.TrimSpace(p.Description),
		Website:        d.linkOrEmpty(name, "website", p.Website),
		MetricsURL:     d.linkOrEmpty(name, "metrics_url", p.MetricsURL),
	}

	stored, err := d.backend.InsertIfAbsent(ctx, rec)
	if err != nil {
		res.Outcome, res.Reason = Failed, err
		return res
	}
	if !stored {
		res.Outcome = SkippedDuplicate
		res.Reason = errs.New(errs.ErrCodeDuplicate, "id %d stored concurrently", snap.ID)
		return res
	}
	res.Outcome = Inserted
	return res
}

// Records returns every stored record.
func (d *Database) Records(ctx context.Context) ([]entity.Record, error) {
	return d.backend.Load(ctx)
}

// Names returns the project names in storage order.
func (d *Database) Names(ctx context.Context) ([]string, error) {
	recs, err := d.backend.Load(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(recs))
	for i, r := range recs {
		names[i] = r.Name
	}
	return names, nil
}

// Detail returns the display detail of the named project. An exact name
// match wins over a case-insensitive one.
func (d *Database) Detail(ctx context.Context, name string) (entity.Detail, error) {
	recs, err := d.backend.Load(ctx)
	if err != nil {
		return entity.Detail{}, err
	}
	var fold *entity.Record
	for i := range recs {
		if recs[i].Name == name {
			return recs[i].Detail(), nil
		}
		if fold == nil && strings.EqualFold(recs[i].Name, name) {
			fold = &recs[i]
		}
	}
	if fold != nil {
		return fold.Detail(), nil
	}
	return entity.Detail{}, errs.Wrap(errs.ErrCodeProjectNotFound, ErrProjectNotFound, "project %q", name)
}

// Close closes the backend.
func (d *Database) Close() error {
	return d.backend.Close()
}

// linkOrEmpty drops display links that are not plain http(s) URLs. The row
// itself is still stored.
func (d *Database) linkOrEmpty(name, field, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if err := errs.ValidateURL(raw); err != nil {
		d.logger.Warn("dropping link", "name", name, "field", field, "value", raw, "error", err)
		return ""
	}
	return raw
}
