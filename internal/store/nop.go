package store

import "context"

// NopCaptionStore is used when captions are disabled. It stores nothing and
// scores everything 0.
type NopCaptionStore struct{}

func NewNopCaptionStore() *NopCaptionStore { return &NopCaptionStore{} }

func (s *NopCaptionStore) AddCaption(_ context.Context, _ string) error { return nil }
func (s *NopCaptionStore) Similarity(_ context.Context, _ string, _ int) (float64, error) {
	return 0, nil
}
func (s *NopCaptionStore) Close() error { return nil }
