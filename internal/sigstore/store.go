package sigstore

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"vidsync/internal/logging"
	"vidsync/internal/signature"
)

// ErrLocked is returned by Open when another process holds the store.
var ErrLocked = errors.New("signature store is locked by another process")

const histogramBytes = signature.HistogramLen * 8

// Store manages signature persistence backed by SQLite.
type Store struct {
	db     *sql.DB
	path   string
	lock   *flock.Flock
	logger *slog.Logger
}

// Stats describes the store contents.
type Stats struct {
	Signatures int64
	Files      int64
}

// Open initializes or connects to the database at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire store lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{
		db:     db,
		path:   path,
		lock:   lock,
		logger: logging.NewComponentLogger(logger, "sigstore"),
	}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}
	return store, nil
}

// Close closes the database and releases the lock.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	if unlockErr := s.lock.Unlock(); unlockErr != nil && err == nil {
		err = fmt.Errorf("release store lock: %w", unlockErr)
	}
	return err
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

type fileKey struct {
	size    int64
	mtimeNS int64
}

func statFile(path string) (fileKey, error) {
	info, err := os.Stat(path)
	if err != nil {
		return fileKey{}, err
	}
	return fileKey{size: info.Size(), mtimeNS: info.ModTime().UnixNano()}, nil
}

// Lookup returns the stored signature for path at timestampMS if the file is
// unchanged since it was saved.
func (s *Store) Lookup(ctx context.Context, path string, timestampMS int64) (signature.Signature, bool, error) {
	key, err := statFile(path)
	if err != nil {
		return signature.Signature{}, false, fmt.Errorf("stat %s: %w", path, err)
	}

	var (
		present int
		phash   int64
		hist    []byte
		edges   float64
	)
	err = s.db.QueryRowContext(ctx,
		`SELECT present, phash, histogram, edge_density FROM signatures
         WHERE path = ? AND size = ? AND mtime_ns = ? AND timestamp_ms = ?`,
		path, key.size, key.mtimeNS, timestampMS,
	).Scan(&present, &phash, &hist, &edges)
	if errors.Is(err, sql.ErrNoRows) {
		return signature.Signature{}, false, nil
	}
	if err != nil {
		return signature.Signature{}, false, fmt.Errorf("query signature: %w", err)
	}

	histogram, err := decodeHistogram(hist)
	if err != nil {
		return signature.Signature{}, false, err
	}
	return signature.Signature{
		Present:     present != 0,
		Hash:        uint64(phash),
		Histogram:   histogram,
		EdgeDensity: edges,
	}, true, nil
}

// Save records sig for path at timestampMS, dropping rows left from earlier
// versions of the file.
func (s *Store) Save(ctx context.Context, path string, timestampMS int64, sig signature.Signature) error {
	key, err := statFile(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM signatures WHERE path = ? AND (size != ? OR mtime_ns != ?)`,
		path, key.size, key.mtimeNS,
	); err != nil {
		return fmt.Errorf("drop stale signatures: %w", err)
	}

	present := 0
	if sig.Present {
		present = 1
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO signatures (
            path, size, mtime_ns, timestamp_ms, present, phash, histogram, edge_density, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		path,
		key.size,
		key.mtimeNS,
		timestampMS,
		present,
		int64(sig.Hash),
		encodeHistogram(sig.Histogram),
		sig.EdgeDensity,
		time.Now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("insert signature: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit signature: %w", err)
	}
	return nil
}

// Purge removes every row recorded for path and returns the number removed.
func (s *Store) Purge(ctx context.Context, path string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM signatures WHERE path = ?`, path)
	if err != nil {
		return 0, fmt.Errorf("purge signatures: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	s.logger.Info("purged stored signatures",
		logging.String(logging.FieldPath, path),
		logging.Int64("rows", n))
	return n, nil
}

// Stats counts stored signatures and distinct files.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1), COUNT(DISTINCT path) FROM signatures`,
	).Scan(&stats.Signatures, &stats.Files)
	if err != nil {
		return Stats{}, fmt.Errorf("count signatures: %w", err)
	}
	return stats, nil
}

func encodeHistogram(h signature.Histogram) []byte {
	buf := make([]byte, histogramBytes)
	for i, v := range h {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

func decodeHistogram(buf []byte) (signature.Histogram, error) {
	var h signature.Histogram
	if len(buf) != histogramBytes {
		return h, fmt.Errorf("histogram blob has %d bytes, expected %d", len(buf), histogramBytes)
	}
	for i := range h {
		h[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
	}
	return h, nil
}
