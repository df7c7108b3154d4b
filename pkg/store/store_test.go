package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/impactgraph/pkg/entity"
	errs "github.com/matzehuels/impactgraph/pkg/errors"
	"github.com/matzehuels/impactgraph/pkg/resolve"
)

var errLookup = errors.New("lookup failed")

type stubProvider struct {
	mu      sync.Mutex
	ids     map[string]int64
	friends map[int64][]int64
	failRel bool
	lookups int
}

func (s *stubProvider) LookupUser(_ context.Context, handle string) (entity.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++
	id, ok := s.ids[strings.ToLower(handle)]
	if !ok {
		return nil, errLookup
	}
	return entity.Profile{"id": json.Number(fmt.Sprint(id)), "screen_name": handle, "followers_count": json.Number("42")}, nil
}

func (s *stubProvider) FriendIDs(_ context.Context, id int64) ([]int64, error) {
	if s.failRel {
		return nil, errLookup
	}
	return s.friends[id], nil
}

func (s *stubProvider) FollowerIDs(context.Context, int64) ([]int64, error) {
	return []int64{}, nil
}

var fixedNow = time.Date(2023, 4, 5, 6, 7, 8, 0, time.UTC)

func quiet() *log.Logger { return log.New(io.Discard) }

func newTestDB(t *testing.T, p *stubProvider, strict bool) (*Database, *FileBackend) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "db.json")
	backend := NewFileBackend(path, FileOptions{Strict: strict, Logger: quiet(), Now: func() time.Time { return fixedNow }})
	r := resolve.New(p, resolve.Options{Logger: quiet()})
	return New(backend, r, Options{Logger: quiet(), Clock: func() time.Time { return fixedNow }}), backend
}

func defaultProvider() *stubProvider {
	return &stubProvider{
		ids:     map[string]int64{"alpha": 101, "beta": 202},
		friends: map[int64][]int64{101: {202}, 202: {}},
	}
}

func TestInsert_Outcomes(t *testing.T) {
	tests := []struct {
		name    string
		project entity.Project
		want    Outcome
		code    errs.Code
	}{
		{"valid", entity.Project{Name: "Alpha", Handle: "@alpha"}, Inserted, ""},
		{"blank name", entity.Project{Name: "  ", Handle: "alpha"}, SkippedInvalidName, errs.ErrCodeInvalidName},
		{"invalid handle", entity.Project{Name: "Alpha", Handle: " @ "}, SkippedInvalidHandle, errs.ErrCodeInvalidHandle},
		{"unknown handle", entity.Project{Name: "Ghost", Handle: "ghost"}, SkippedLookupFailed, errs.ErrCodeLookupFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, _ := newTestDB(t, defaultProvider(), false)
			res := db.Insert(context.Background(), tt.project)
			if res.Outcome != tt.want {
				t.Fatalf("Outcome = %s, want %s (reason %v)", res.Outcome, tt.want, res.Reason)
			}
			if tt.code != "" && errs.GetCode(res.Reason) != tt.code {
				t.Errorf("reason code = %s, want %s", errs.GetCode(res.Reason), tt.code)
			}
		})
	}
}

func TestInsert_Record(t *testing.T) {
	db, _ := newTestDB(t, defaultProvider(), false)
	res := db.Insert(context.Background(), entity.Project{
		Name:        " Alpha ",
		Handle:      "https://twitter.com/alpha",
		Description: "first",
		Website:     "https://alpha.example",
	})
	if res.Outcome != Inserted || res.ID != 101 || res.Handle != "alpha" {
		t.Fatalf("result = %+v", res)
	}

	recs, err := db.Records(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(recs))
	}
	rec := recs[0]
	if rec.Name != "Alpha" || rec.Handle != "alpha" || rec.ID != 101 {
		t.Errorf("record = %+v", rec)
	}
	if rec.UpdatedAt.String() != "2023-04-05 06:07:08" {
		t.Errorf("updated_at = %s", rec.UpdatedAt)
	}
	if len(rec.FriendIDs) != 1 || rec.FriendIDs[0] != 202 || rec.FriendsState != entity.StateFetched {
		t.Errorf("friends = %v (%s)", rec.FriendIDs, rec.FriendsState)
	}
	if rec.FollowerIDs == nil || len(rec.FollowerIDs) != 0 || rec.FollowersState != entity.StateDisabled {
		t.Errorf("followers = %#v (%s), want empty disabled", rec.FollowerIDs, rec.FollowersState)
	}
	if rec.Description != "first" {
		t.Errorf("description = %q", rec.Description)
	}
}

func TestInsert_Idempotent(t *testing.T) {
	p := defaultProvider()
	db, backend := newTestDB(t, p, false)
	ctx := context.Background()

	first := db.Insert(ctx, entity.Project{Name: "Alpha", Handle: "alpha"})
	before, _ := os.ReadFile(backend.Path())

	for _, proj := range []entity.Project{
		{Name: "Alpha", Handle: "alpha"},
		{Name: "Alpha renamed", Handle: "@ALPHA"},
	} {
		res := db.Insert(ctx, proj)
		if res.Outcome != SkippedDuplicate || res.ID != first.ID {
			t.Errorf("Insert(%+v) = %s, want skipped_duplicate", proj, res.Outcome)
		}
		if errs.GetCode(res.Reason) != errs.ErrCodeDuplicate {
			t.Errorf("reason code = %s", errs.GetCode(res.Reason))
		}
	}

	after, _ := os.ReadFile(backend.Path())
	if string(before) != string(after) {
		t.Error("duplicate insert modified the document")
	}
}

func TestInsert_FriendLookupFailureIsDegraded(t *testing.T) {
	p := defaultProvider()
	p.failRel = true
	db, _ := newTestDB(t, p, false)

	res := db.Insert(context.Background(), entity.Project{Name: "Alpha", Handle: "alpha"})
	if res.Outcome != Inserted {
		t.Fatalf("Outcome = %s, want inserted", res.Outcome)
	}
	recs, _ := db.Records(context.Background())
	if recs[0].FriendsState != entity.StateFailed || len(recs[0].FriendIDs) != 0 {
		t.Errorf("friends = %v (%s), want failed empty", recs[0].FriendIDs, recs[0].FriendsState)
	}
}

func TestInsert_NoResolver(t *testing.T) {
	backend := NewFileBackend(filepath.Join(t.TempDir(), "db.json"), FileOptions{Logger: quiet()})
	db := New(backend, nil, Options{Logger: quiet()})
	if res := db.Insert(context.Background(), entity.Project{Name: "Alpha", Handle: "alpha"}); res.Outcome != Failed {
		t.Errorf("Outcome = %s, want failed", res.Outcome)
	}
}

func TestFileBackend_RoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 100} {
		t.Run(fmt.Sprintf("N=%d", n), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "db.json")
			want := make([]entity.Record, n)
			for i := range want {
				want[i] = entity.Record{
					ID:        int64(9007199254740000 + i),
					Name:      fmt.Sprintf("project-%03d", i),
					Handle:    fmt.Sprintf("handle%d", i),
					UpdatedAt: entity.NewTimestamp(fixedNow.Add(time.Duration(i) * time.Second)),
					Profile:   entity.Profile{"id_str": fmt.Sprint(9007199254740000 + i)},
					FriendIDs: []int64{int64(i), int64(i + 1)},
				}
			}
			if err := writeRecords(path, want); err != nil {
				t.Fatalf("writeRecords: %v", err)
			}

			got, err := NewFileBackend(path, FileOptions{Logger: quiet()}).Load(context.Background())
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if len(got) != n {
				t.Fatalf("len = %d, want %d", len(got), n)
			}
			for i := range want {
				if got[i].ID != want[i].ID || got[i].Name != want[i].Name || !got[i].UpdatedAt.Equal(want[i].UpdatedAt.Time) {
					t.Errorf("record %d = %+v, want %+v", i, got[i], want[i])
				}
				if id, ok := got[i].Profile.ID(); !ok || id != want[i].ID {
					t.Errorf("record %d profile id = %d", i, id)
				}
				if len(got[i].FollowerIDs) != 0 || got[i].FollowerIDs == nil {
					t.Errorf("record %d follower_ids = %#v", i, got[i].FollowerIDs)
				}
			}
		})
	}
}

func TestFileBackend_EmptyAndMissing(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content *string
	}{
		{"missing", nil},
		{"empty", ptr("")},
		{"whitespace", ptr("  \n")},
		{"empty array", ptr("[]")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".json")
			if tt.content != nil {
				if err := os.WriteFile(path, []byte(*tt.content), 0o644); err != nil {
					t.Fatal(err)
				}
			}
			recs, err := NewFileBackend(path, FileOptions{Logger: quiet(), Strict: true}).Load(context.Background())
			if err != nil || len(recs) != 0 {
				t.Errorf("Load() = %v, %v; want empty", recs, err)
			}
		})
	}
}

func TestFileBackend_WritesEmptyListsAsArrays(t *testing.T) {
	db, backend := newTestDB(t, defaultProvider(), false)
	db.Insert(context.Background(), entity.Project{Name: "Beta", Handle: "beta"})

	data, err := os.ReadFile(backend.Path())
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"friend_ids": []`, `"follower_ids": []`, `"updated_at": "2023-04-05 06:07:08"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("document missing %s:\n%s", want, data)
		}
	}
}

func TestFileBackend_CorruptMovedAside(t *testing.T) {
	db, backend := newTestDB(t, defaultProvider(), false)
	if err := os.WriteFile(backend.Path(), []byte(`{"not": "an array"`), 0o644); err != nil {
		t.Fatal(err)
	}

	res := db.Insert(context.Background(), entity.Project{Name: "Alpha", Handle: "alpha"})
	if res.Outcome != Inserted {
		t.Fatalf("Outcome = %s (%v), want inserted", res.Outcome, res.Reason)
	}

	aside := fmt.Sprintf("%s.corrupt-%d", backend.Path(), fixedNow.Unix())
	data, err := os.ReadFile(aside)
	if err != nil {
		t.Fatalf("corrupt file not preserved: %v", err)
	}
	if string(data) != `{"not": "an array"` {
		t.Errorf("preserved content = %q", data)
	}
	recs, _ := db.Records(context.Background())
	if len(recs) != 1 {
		t.Errorf("len(records) = %d, want 1", len(recs))
	}
}

func TestFileBackend_CorruptReadLeavesDocument(t *testing.T) {
	corrupt := []byte(`[{"id": 1`)
	for _, strict := range []bool{false, true} {
		t.Run(fmt.Sprintf("strict=%v", strict), func(t *testing.T) {
			db, backend := newTestDB(t, defaultProvider(), strict)
			if err := os.WriteFile(backend.Path(), corrupt, 0o644); err != nil {
				t.Fatal(err)
			}
			ctx := context.Background()

			recs, err := db.Records(ctx)
			if strict {
				if errs.GetCode(err) != errs.ErrCodePersistenceCorrupt {
					t.Errorf("Records() error = %v, want PERSISTENCE_CORRUPT", err)
				}
			} else if err != nil || len(recs) != 0 {
				t.Errorf("Records() = %v, %v; want empty", recs, err)
			}
			db.Names(ctx)
			db.Detail(ctx, "Alpha")

			data, err := os.ReadFile(backend.Path())
			if err != nil || string(data) != string(corrupt) {
				t.Errorf("document changed by a read: %q, %v", data, err)
			}
			entries, _ := os.ReadDir(filepath.Dir(backend.Path()))
			if len(entries) != 1 {
				names := make([]string, len(entries))
				for i, e := range entries {
					names[i] = e.Name()
				}
				t.Errorf("directory = %v, want only the document", names)
			}
		})
	}
}

func TestFileBackend_KeepsFileMode(t *testing.T) {
	db, backend := newTestDB(t, defaultProvider(), false)
	ctx := context.Background()

	db.Insert(ctx, entity.Project{Name: "Alpha", Handle: "alpha"})
	fi, err := os.Stat(backend.Path())
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode().Perm() != 0o644 {
		t.Errorf("new document mode = %v, want 0644", fi.Mode().Perm())
	}

	if err := os.Chmod(backend.Path(), 0o640); err != nil {
		t.Fatal(err)
	}
	db.Insert(ctx, entity.Project{Name: "Beta", Handle: "beta"})
	fi, err = os.Stat(backend.Path())
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode().Perm() != 0o640 {
		t.Errorf("rewritten document mode = %v, want 0640", fi.Mode().Perm())
	}
}

func TestFileBackend_CorruptStrict(t *testing.T) {
	db, backend := newTestDB(t, defaultProvider(), true)
	if err := os.WriteFile(backend.Path(), []byte(`[{"id": "x"`), 0o644); err != nil {
		t.Fatal(err)
	}

	res := db.Insert(context.Background(), entity.Project{Name: "Alpha", Handle: "alpha"})
	if res.Outcome != Failed {
		t.Fatalf("Outcome = %s, want failed", res.Outcome)
	}
	if errs.GetCode(res.Reason) != errs.ErrCodePersistenceCorrupt || !errors.Is(res.Reason, ErrCorrupt) {
		t.Errorf("reason = %v, want PERSISTENCE_CORRUPT", res.Reason)
	}
	if _, err := os.Stat(backend.Path()); err != nil {
		t.Error("strict mode must leave the corrupt document in place")
	}
}

func TestFileBackend_ConcurrentWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	const writers = 16

	var wg sync.WaitGroup
	errCh := make(chan error, writers)
	for i := range writers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b := NewFileBackend(path, FileOptions{Logger: quiet()})
			rec := entity.Record{ID: int64(i + 1), Name: fmt.Sprintf("p%d", i), UpdatedAt: entity.NewTimestamp(fixedNow)}
			if _, err := b.InsertIfAbsent(context.Background(), rec); err != nil {
				errCh <- err
			}
		}(i)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Errorf("InsertIfAbsent: %v", err)
	}

	recs, err := NewFileBackend(path, FileOptions{Logger: quiet()}).Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != writers {
		t.Errorf("len(records) = %d, want %d (lost update)", len(recs), writers)
	}
}

func TestDetail(t *testing.T) {
	db, _ := newTestDB(t, defaultProvider(), false)
	ctx := context.Background()
	db.Insert(ctx, entity.Project{Name: "Alpha", Handle: "alpha", MetricsURL: "https://metrics.example/alpha"})

	d, err := db.Detail(ctx, "Alpha")
	if err != nil {
		t.Fatalf("Detail: %v", err)
	}
	if d.ProfileURL != "https://twitter.com/alpha" || d.MetricsURL != "https://metrics.example/alpha" || d.FollowerCount != 42 {
		t.Errorf("detail = %+v", d)
	}

	if _, err := db.Detail(ctx, "alpha"); err != nil {
		t.Errorf("case-insensitive Detail: %v", err)
	}

	_, err = db.Detail(ctx, "Nope")
	if !errors.Is(err, ErrProjectNotFound) || errs.GetCode(err) != errs.ErrCodeProjectNotFound {
		t.Errorf("Detail(unknown) error = %v", err)
	}

	names, err := db.Names(ctx)
	if err != nil || len(names) != 1 || names[0] != "Alpha" {
		t.Errorf("Names() = %v, %v", names, err)
	}
}

func TestOutcomeString(t *testing.T) {
	if SkippedDuplicate.String() != "skipped_duplicate" {
		t.Errorf("String() = %s", SkippedDuplicate)
	}
	if !SkippedLookupFailed.Skipped() || Inserted.Skipped() || Failed.Skipped() {
		t.Error("Skipped() classification wrong")
	}
	if Outcome(99).String() != "outcome(99)" {
		t.Errorf("unknown outcome = %s", Outcome(99))
	}
}

func ptr(s string) *string { return &s }

func TestInsert_DropsUnsafeLinks(t *testing.T) {
	db, _ := newTestDB(t, defaultProvider(), false)
	res := db.Insert(context.Background(), entity.Project{
		Name:       "Alpha",
		Handle:     "alpha",
		Website:    "javascript:alert(1)",
		MetricsURL: " https://dune.com/alpha ",
	})
	if res.Outcome != Inserted {
		t.Fatalf("outcome = %s, want inserted", res.Outcome)
	}

	d, err := db.Detail(context.Background(), "Alpha")
	if err != nil {
		t.Fatal(err)
	}
	if d.Website != "" {
		t.Errorf("website = %q, want dropped", d.Website)
	}
	if d.MetricsURL != "https://dune.com/alpha" {
		t.Errorf("metrics_url = %q", d.MetricsURL)
	}
}
