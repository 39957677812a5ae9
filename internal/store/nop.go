package store

import (
	"context"
	"time"

	"github.com/amishk599/jobsweep/internal/model"
)

// NopStore is a no-op store used for one-shot runs. It stores nothing, so
// every job is new every time.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) SaveCandidates(_ context.Context, jobs []model.ScrapedJob) ([]model.ScrapedJob, error) {
	return jobs, nil
}

func (s *NopStore) Cleanup(olderThan time.Duration) error { return nil }
