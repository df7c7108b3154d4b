// Package resolve turns normalized handles into provider identities and
// relationship lists.
//
// A [Resolver] wraps an injected [Provider]. Identity lookups are strict: a
// failure, or a payload without an identifier, is reported as a
// LOOKUP_FAILED error. Relationship lookups are best effort: a failure
// degrades to an empty list tagged [entity.StateFailed] so an insert can
// still proceed.
package resolve

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/impactgraph/pkg/entity"
	errs "github.com/matzehuels/impactgraph/pkg/errors"
)

// ErrNoIdentifier is returned when a profile payload carries no usable id.
var ErrNoIdentifier = errors.New("profile has no identifier")

// Provider is the external lookup service.
type Provider interface {
	LookupUser(ctx context.Context, handle string) (entity.Profile, error)
	FriendIDs(ctx context.Context, id int64) ([]int64, error)
	FollowerIDs(ctx context.Context, id int64) ([]int64, error)
}

// Snapshot is a successful identity lookup.
type Snapshot struct {
	ID      int64
	Handle  string
	Profile entity.Profile
}

// Options configures a Resolver.
type Options struct {
	// FetchFollowers enables follower lookups. When false FollowersOf
	// returns an empty relation tagged StateDisabled without calling the
	// provider.
	FetchFollowers bool
	Logger         *log.Logger
}

// Resolver resolves handles through a Provider.
type Resolver struct {
	provider       Provider
	fetchFollowers bool
	logger         *log.Logger
}

// New creates a Resolver for p.
func New(p Provider, opts Options) *Resolver {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Resolver{provider: p, fetchFollowers: opts.FetchFollowers, logger: logger}
}

// FetchFollowers reports whether follower lookups are enabled.
func (r *Resolver) FetchFollowers() bool { return r.fetchFollowers }

// Resolve looks up handle exactly once.
func (r *Resolver) Resolve(ctx context.Context, handle string) (*Snapshot, error) {
	profile, err := r.provider.LookupUser(ctx, handle)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeLookupFailed, err, "resolve %s", handle)
	}
	id, ok := profile.ID()
	if !ok {
		return nil, errs.Wrap(errs.ErrCodeLookupFailed, ErrNoIdentifier, "resolve %s", handle)
	}
	return &Snapshot{ID: id, Handle: handle, Profile: profile}, nil
}

// FriendsOf returns the ids that id follows.
func (r *Resolver) FriendsOf(ctx context.Context, id int64) entity.Relation {
	return r.relation(ctx, "friends", id, r.provider.FriendIDs)
}

// FollowersOf returns the ids following id, or a disabled relation when
// follower lookups are off.
func (r *Resolver) FollowersOf(ctx context.Context, id int64) entity.Relation {
	if !r.fetchFollowers {
		return entity.Relation{IDs: []int64{}, State: entity.StateDisabled}
	}
	return r.relation(ctx, "followers", id, r.provider.FollowerIDs)
}

func (r *Resolver) relation(ctx context.Context, kind string, id int64, fetch func(context.Context, int64) ([]int64, error)) entity.Relation {
	ids, err := fetch(ctx, id)
	if err != nil {
		r.logger.Warn("relationship lookup failed", "kind", kind, "id", id, "error", err)
		return entity.Relation{IDs: []int64{}, State: entity.StateFailed}
	}
	if ids == nil {
		ids = []int64{}
	}
	return entity.Relation{IDs: ids, State: entity.StateFetched}
}
