package services

import "context"

// TestingRepository defines the state wipe used between browser test runs.
type TestingRepository interface {
	Reset(ctx context.Context) error
}

// TestingService backs the test-only reset endpoint.
type TestingService struct {
	repo TestingRepository
}

func NewTestingService(repo TestingRepository) *TestingService {
	return &TestingService{repo: repo}
}

// Reset wipes all users, sessions, and blog entries.
func (s *TestingService) Reset(ctx context.Context) error {
	return s.repo.Reset(ctx)
}
