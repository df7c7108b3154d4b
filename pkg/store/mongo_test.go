package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/matzehuels/impactgraph/pkg/entity"
)

func TestMongoBackend_Integration(t *testing.T) {
	uri := os.Getenv("IMPACTGRAPH_MONGO_URI")
	if uri == "" {
		t.Skip("IMPACTGRAPH_MONGO_URI not set")
	}

	ctx := context.Background()
	b, err := NewMongoBackend(ctx, MongoOptions{
		URI:        uri,
		Database:   "impactgraph_test",
		Collection: fmt.Sprintf("projects_%d", time.Now().UnixNano()),
	})
	if err != nil {
		t.Fatalf("NewMongoBackend: %v", err)
	}
	t.Cleanup(func() {
		_ = b.Drop(context.Background())
		_ = b.Close()
	})

	rec := entity.Record{
		ID:        856446453157376003,
		Name:      "Gitcoin",
		Handle:    "gitcoin",
		UpdatedAt: entity.NewTimestamp(fixedNow),
		Profile:   entity.Profile{"id_str": "856446453157376003", "entities": map[string]any{"url": "x"}},
		FriendIDs: []int64{1, 2},
	}
	stored, err := b.InsertIfAbsent(ctx, rec)
	if err != nil || !stored {
		t.Fatalf("InsertIfAbsent = %v, %v", stored, err)
	}
	stored, err = b.InsertIfAbsent(ctx, rec)
	if err != nil || stored {
		t.Fatalf("duplicate InsertIfAbsent = %v, %v; want false, nil", stored, err)
	}

	recs, err := b.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("len = %d, want 1", len(recs))
	}
	got := recs[0]
	if got.ID != rec.ID || got.UpdatedAt.String() != "2023-04-05 06:07:08" || len(got.FriendIDs) != 2 {
		t.Errorf("record = %+v", got)
	}
	if id, ok := got.Profile.ID(); !ok || id != rec.ID {
		t.Errorf("profile id = %d, %v", id, ok)
	}
	if got.FollowerIDs == nil {
		t.Error("follower_ids should decode as empty slice")
	}
}
