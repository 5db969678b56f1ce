package store

import (
	"context"
	"crypto/md5"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	_ "modernc.org/sqlite"

	"github.com/amishk599/jobscout/internal/model"
)

// DefaultNeighbors is the number of nearest captions averaged by Similarity.
const DefaultNeighbors = 5

// SQLiteCaptionStore keeps captions and their embeddings in SQLite and scores
// new text by its distance to the nearest stored captions.
type SQLiteCaptionStore struct {
	db       *sql.DB
	embedder model.Embedder
}

var _ model.CaptionStore = (*SQLiteCaptionStore)(nil)

// NewSQLiteCaptionStore opens (or creates) a SQLite database at dbPath and
// ensures the captions table exists.
func NewSQLiteCaptionStore(dbPath string, embedder model.Embedder) (*SQLiteCaptionStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS captions (
		id         TEXT PRIMARY KEY,
		text       TEXT NOT NULL,
		embedding  TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating captions table: %w", err)
	}

	return &SQLiteCaptionStore{db: db, embedder: embedder}, nil
}

// CaptionID is the md5 hex digest of text.
func CaptionID(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}

// AddCaption embeds and stores text. Adding the same text twice is a no-op.
func (s *SQLiteCaptionStore) AddCaption(ctx context.Context, text string) error {
	id := CaptionID(text)

	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM captions WHERE id = ?", id).Scan(&exists)
	if err == nil {
		return nil
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("checking caption %s: %w", id, err)
	}

	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embedding caption %s: %w", id, err)
	}
	raw, err := json.Marshal(vec)
	if err != nil {
		return fmt.Errorf("encoding embedding: %w", err)
	}

	_, err = s.db.ExecContext(ctx, "INSERT OR IGNORE INTO captions (id, text, embedding) VALUES (?, ?, ?)", id, text, string(raw))
	if err != nil {
		return fmt.Errorf("inserting caption %s: %w", id, err)
	}
	return nil
}

// Similarity returns 1/(1+d) rounded to three decimals, where d is the mean
// squared L2 distance from text to its k nearest stored captions. An empty
// store scores 0.
func (s *SQLiteCaptionStore) Similarity(ctx context.Context, text string, k int) (float64, error) {
	if k <= 0 {
		k = DefaultNeighbors
	}

	n, err := s.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}

	query, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return 0, fmt.Errorf("embedding query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT embedding FROM captions")
	if err != nil {
		return 0, fmt.Errorf("loading captions: %w", err)
	}
	defer rows.Close()

	dists := make([]float64, 0, n)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return 0, fmt.Errorf("scanning caption: %w", err)
		}
		var vec []float64
		if err := json.Unmarshal([]byte(raw), &vec); err != nil {
			return 0, fmt.Errorf("decoding embedding: %w", err)
		}
		dists = append(dists, squaredL2(query, vec))
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterating captions: %w", err)
	}

	return score(dists, k), nil
}

// score averages the k smallest distances and maps the mean into (0, 1].
func score(dists []float64, k int) float64 {
	if len(dists) == 0 {
		return 0
	}
	sort.Float64s(dists)
	if k > len(dists) {
		k = len(dists)
	}

	var sum float64
	for _, d := range dists[:k] {
		sum += d
	}
	mean := sum / float64(k)
	return math.Round(1/(1+mean)*1000) / 1000
}

// squaredL2 treats missing trailing components as zero.
func squaredL2(a, b []float64) float64 {
	if len(a) < len(b) {
		a, b = b, a
	}
	var sum float64
	for i := range a {
		var y float64
		if i < len(b) {
			y = b[i]
		}
		d := a[i] - y
		sum += d * d
	}
	return sum
}

// Count returns the number of stored captions.
func (s *SQLiteCaptionStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM captions").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting captions: %w", err)
	}
	return count, nil
}

// Cleanup deletes captions added more than olderThan ago.
func (s *SQLiteCaptionStore) Cleanup(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan).Format("2006-01-02 15:04:05")
	res, err := s.db.ExecContext(ctx, "DELETE FROM captions WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleaning up captions older than %v: %w", olderThan, err)
	}
	return res.RowsAffected()
}

// Close closes the underlying database connection.
func (s *SQLiteCaptionStore) Close() error {
	return s.db.Close()
}
