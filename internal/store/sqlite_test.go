package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

// fakeEmbedder maps known texts to fixed vectors and counts calls.
type fakeEmbedder struct {
	vectors map[string][]float64
	calls   int
	err     error
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return []float64{0, 0}, nil
}

func newTestStore(t *testing.T, emb *fakeEmbedder) *SQLiteCaptionStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "captions.db")
	s, err := NewSQLiteCaptionStore(dbPath, emb)
	if err != nil {
		t.Fatalf("NewSQLiteCaptionStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSimilarity_EmptyStoreIsZero(t *testing.T) {
	emb := &fakeEmbedder{}
	s := newTestStore(t, emb)

	got, err := s.Similarity(context.Background(), "anything", 5)
	if err != nil {
		t.Fatalf("Similarity: %v", err)
	}
	if got != 0 {
		t.Errorf("Similarity = %v, want 0", got)
	}
	if emb.calls != 0 {
		t.Errorf("empty store should not embed, got %d calls", emb.calls)
	}
}

func TestAddCaption_DuplicateIgnored(t *testing.T) {
	emb := &fakeEmbedder{}
	s := newTestStore(t, emb)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := s.AddCaption(ctx, "Hiring data analysts!"); err != nil {
			t.Fatalf("AddCaption #%d: %v", i, err)
		}
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
	if emb.calls != 1 {
		t.Errorf("embedder calls = %d, want 1", emb.calls)
	}
}

func TestSimilarity_ExactMatchIsOne(t *testing.T) {
	emb := &fakeEmbedder{vectors: map[string][]float64{
		"a": {1, 0},
		"b": {0, 1},
	}}
	s := newTestStore(t, emb)
	ctx := context.Background()

	for _, c := range []string{"a", "b"} {
		if err := s.AddCaption(ctx, c); err != nil {
			t.Fatal(err)
		}
	}

	// Nearest k=1 to "a" is "a" itself at distance 0.
	got, err := s.Similarity(ctx, "a", 1)
	if err != nil {
		t.Fatalf("Similarity: %v", err)
	}
	if got != 1 {
		t.Errorf("Similarity = %v, want 1", got)
	}

	// k=5 clamps to the 2 stored captions: distances 0 and 2, mean 1.
	got, err = s.Similarity(ctx, "a", 5)
	if err != nil {
		t.Fatalf("Similarity: %v", err)
	}
	if got != 0.5 {
		t.Errorf("Similarity = %v, want 0.5", got)
	}
}

func TestSimilarity_EmbedErrorPropagates(t *testing.T) {
	emb := &fakeEmbedder{}
	s := newTestStore(t, emb)
	ctx := context.Background()
	if err := s.AddCaption(ctx, "x"); err != nil {
		t.Fatal(err)
	}

	emb.err = errors.New("quota")
	if _, err := s.Similarity(ctx, "y", 5); err == nil {
		t.Fatal("expected error when embedding fails")
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		dists []float64
		k     int
		want  float64
	}{
		{nil, 5, 0},
		{[]float64{0}, 5, 1},
		{[]float64{3, 1, 2}, 2, 0.4},
		{[]float64{0.5, 0.5}, 2, 0.667},
	}
	for _, tt := range tests {
		if got := score(tt.dists, tt.k); got != tt.want {
			t.Errorf("score(%v, %d) = %v, want %v", tt.dists, tt.k, got, tt.want)
		}
	}
}

func TestCaptionID(t *testing.T) {
	// md5("hello")
	if got := CaptionID("hello"); got != "5d41402abc4b2a76b9719d911017c592" {
		t.Errorf("CaptionID = %q", got)
	}
}

func TestCleanup_KeepsRecentCaptions(t *testing.T) {
	s := newTestStore(t, &fakeEmbedder{})
	ctx := context.Background()
	if err := s.AddCaption(ctx, "fresh"); err != nil {
		t.Fatal(err)
	}

	removed, err := s.Cleanup(ctx, time.Hour)
	if err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if removed != 0 {
		t.Errorf("removed = %d, want 0", removed)
	}
}

func TestNopCaptionStore(t *testing.T) {
	s := NewNopCaptionStore()
	if err := s.AddCaption(context.Background(), "x"); err != nil {
		t.Fatal(err)
	}
	got, err := s.Similarity(context.Background(), "x", 5)
	if err != nil || got != 0 {
		t.Errorf("Similarity = %v, %v", got, err)
	}
}
