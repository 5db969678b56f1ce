package ai

import (
	"context"
	"fmt"
)

// UnavailableGenerator fails every call. It stands in for a provider when no
// credentials are configured, so runs that tolerate generation failures can
// still search for jobs and posts.
type UnavailableGenerator struct {
	reason string
}

// NewUnavailableGenerator returns a generator that always fails with reason.
func NewUnavailableGenerator(reason string) *UnavailableGenerator {
	return &UnavailableGenerator{reason: reason}
}

// Complete always returns an error.
func (g *UnavailableGenerator) Complete(_ context.Context, _ string, _ int) (string, error) {
	return "", fmt.Errorf("llm unavailable: %s", g.reason)
}
