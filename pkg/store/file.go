package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofrs/flock"

	"github.com/matzehuels/impactgraph/pkg/entity"
	errs "github.com/matzehuels/impactgraph/pkg/errors"
)

const lockRetryDelay = 50 * time.Millisecond

// FileOptions configures a FileBackend.
type FileOptions struct {
	// Strict turns a corrupt document into ErrCorrupt instead of moving it
	// aside.
	Strict bool
	Logger *log.Logger
	// Now stamps quarantined files. Defaults to time.Now.
	Now func() time.Time
}

// FileBackend stores all records in a single JSON document.
type FileBackend struct {
	path   string
	lock   *flock.Flock
	strict bool
	logger *log.Logger
	now    func() time.Time
}

// NewFileBackend creates a backend for the document at path. The file is
// created on first insert.
func NewFileBackend(path string, opts FileOptions) *FileBackend {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &FileBackend{
		path:   path,
		lock:   flock.New(path + ".lock"),
		strict: opts.Strict,
		logger: logger,
		now:    now,
	}
}

// Path returns the document path.
func (b *FileBackend) Path() string { return b.path }

// Load reads the document without taking the lock; writers replace it
// atomically. A corrupt document is reported but left in place. Only
// InsertIfAbsent moves it aside.
func (b *FileBackend) Load(context.Context) ([]entity.Record, error) {
	recs, err := readRecords(b.path)
	if !errors.Is(err, ErrCorrupt) {
		return recs, err
	}
	if b.strict {
		return nil, errs.Wrap(errs.ErrCodePersistenceCorrupt, err, "load %s", b.path)
	}
	b.logger.Warn("corrupt database read as empty", "path", b.path, "error", err)
	return nil, nil
}

// InsertIfAbsent appends rec under the exclusive lock.
func (b *FileBackend) InsertIfAbsent(ctx context.Context, rec entity.Record) (bool, error) {
	if err := b.acquire(ctx); err != nil {
		return false, err
	}
	defer b.release()

	recs, err := b.readLocked()
	if err != nil {
		return false, err
	}
	for _, r := range recs {
		if r.ID == rec.ID {
			return false, nil
		}
	}
	if err := writeRecords(b.path, append(recs, rec)); err != nil {
		return false, errs.Wrap(errs.ErrCodePersistenceWrite, err, "write %s", b.path)
	}
	return true, nil
}

// Close releases nothing; the lock is only held during inserts.
func (b *FileBackend) Close() error { return nil }

func (b *FileBackend) acquire(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return fmt.Errorf("create database dir: %w", err)
	}
	ok, err := b.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("lock %s: %w", b.lock.Path(), err)
	}
	if !ok {
		return fmt.Errorf("lock %s: not acquired", b.lock.Path())
	}
	return nil
}

func (b *FileBackend) release() {
	if err := b.lock.Unlock(); err != nil {
		b.logger.Warn("unlock database", "path", b.lock.Path(), "error", err)
	}
}

// readLocked reads the document and applies the corrupt-document policy.
// The caller must hold the lock.
func (b *FileBackend) readLocked() ([]entity.Record, error) {
	recs, err := readRecords(b.path)
	if !errors.Is(err, ErrCorrupt) {
		return recs, err
	}
	if b.strict {
		return nil, errs.Wrap(errs.ErrCodePersistenceCorrupt, err, "load %s", b.path)
	}
	aside := fmt.Sprintf("%s.corrupt-%d", b.path, b.now().Unix())
	if rerr := os.Rename(b.path, aside); rerr != nil {
		return nil, errs.Wrap(errs.ErrCodePersistenceCorrupt, rerr, "move corrupt %s aside", b.path)
	}
	b.logger.Warn("corrupt database moved aside", "path", b.path, "moved_to", aside, "error", err)
	return nil, nil
}

func readRecords(path string) ([]entity.Record, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var recs []entity.Record
	if err := dec.Decode(&recs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data", ErrCorrupt)
	}
	return recs, nil
}

func writeRecords(path string, recs []entity.Record) error {
	if recs == nil {
		recs = []entity.Record{}
	}
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	cleanup := func() { os.Remove(tmp.Name()) }
	if err := tmp.Chmod(fileMode(path)); err != nil {
		tmp.Close()
		cleanup()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		cleanup()
		return err
	}
	return nil
}

// fileMode keeps the permissions of an existing document across rewrites.
func fileMode(path string) os.FileMode {
	if fi, err := os.Stat(path); err == nil {
		return fi.Mode().Perm()
	}
	return 0o644
}
