package service

import (
	"context"
	"fmt"
	"strings"

	"fasttrack/internal/modules/backend/domain"
	backendout "fasttrack/internal/modules/backend/port/out"
	"fasttrack/internal/platform/clock"
	apperrors "fasttrack/internal/platform/errors"
	"fasttrack/internal/platform/id"
)

type RecordService struct {
	clock clock.Clock
	ids   id.Generator
	repo  backendout.RecordRepository
}

func NewRecordService(clock clock.Clock, ids id.Generator, repo backendout.RecordRepository) *RecordService {
	return &RecordService{clock: clock, ids: ids, repo: repo}
}

func (s *RecordService) List(ctx context.Context, userID string) ([]domain.Record, error) {
	return s.repo.List(ctx, userID)
}

func (s *RecordService) Get(ctx context.Context, userID, recordID string) (domain.Record, error) {
	if strings.TrimSpace(recordID) == "" {
		return domain.Record{}, fmt.Errorf("%w: id is required", apperrors.ErrInvalidInput)
	}
	return s.repo.Get(ctx, userID, recordID)
}

// Create inserts a row, or replaces the caller's row with the same id. The server assigns
// an id when none is given; created_at is kept from the first write.
func (s *RecordService) Create(ctx context.Context, record domain.Record) (domain.Record, error) {
	record.ID = strings.TrimSpace(record.ID)
	if record.ID == "" {
		record.ID = s.ids.New()
	}
	now := s.clock.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	if err := record.Validate(); err != nil {
		return domain.Record{}, err
	}
	return s.repo.Upsert(ctx, record)
}

func (s *RecordService) Update(ctx context.Context, record domain.Record) (domain.Record, error) {
	if strings.TrimSpace(record.ID) == "" {
		return domain.Record{}, fmt.Errorf("%w: id is required", apperrors.ErrInvalidInput)
	}
	existing, err := s.repo.Get(ctx, record.UserID, record.ID)
	if err != nil {
		return domain.Record{}, err
	}
	record.CreatedAt = existing.CreatedAt
	record.UpdatedAt = s.clock.Now().UTC()
	if err := record.Validate(); err != nil {
		return domain.Record{}, err
	}
	if err := s.repo.Update(ctx, record); err != nil {
		return domain.Record{}, err
	}
	return record, nil
}

func (s *RecordService) Delete(ctx context.Context, userID, recordID string) error {
	if strings.TrimSpace(recordID) == "" {
		return fmt.Errorf("%w: id is required", apperrors.ErrInvalidInput)
	}
	return s.repo.Delete(ctx, userID, recordID)
}
