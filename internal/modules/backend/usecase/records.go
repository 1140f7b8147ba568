package usecase

import (
	"context"
	"fmt"
	"time"

	"fasttrack/internal/modules/backend/domain"
	backendin "fasttrack/internal/modules/backend/port/in"
	"fasttrack/internal/modules/backend/service"
	fastingdto "fasttrack/internal/modules/fasting/dto"
	apperrors "fasttrack/internal/platform/errors"
)

const timeLayout = time.RFC3339Nano

type Interactor struct {
	svc *service.RecordService
}

func NewInteractor(svc *service.RecordService) backendin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) List(ctx context.Context, userID string) ([]fastingdto.Row, error) {
	records, err := i.svc.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	rows := make([]fastingdto.Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, toRow(r))
	}
	return rows, nil
}

func (i *Interactor) Get(ctx context.Context, userID, id string) (fastingdto.Row, error) {
	r, err := i.svc.Get(ctx, userID, id)
	if err != nil {
		return fastingdto.Row{}, err
	}
	return toRow(r), nil
}

func (i *Interactor) Create(ctx context.Context, userID string, row fastingdto.Row) (fastingdto.Row, error) {
	record, err := fromRow(userID, row)
	if err != nil {
		return fastingdto.Row{}, err
	}
	saved, err := i.svc.Create(ctx, record)
	if err != nil {
		return fastingdto.Row{}, err
	}
	return toRow(saved), nil
}

// Update takes the id from the path; an id in the body is ignored.
func (i *Interactor) Update(ctx context.Context, userID, id string, row fastingdto.Row) (fastingdto.Row, error) {
	record, err := fromRow(userID, row)
	if err != nil {
		return fastingdto.Row{}, err
	}
	record.ID = id
	saved, err := i.svc.Update(ctx, record)
	if err != nil {
		return fastingdto.Row{}, err
	}
	return toRow(saved), nil
}

func (i *Interactor) Delete(ctx context.Context, userID, id string) error {
	return i.svc.Delete(ctx, userID, id)
}

func fromRow(userID string, row fastingdto.Row) (domain.Record, error) {
	r := domain.Record{
		ID:             row.ID,
		UserID:         userID,
		Type:           row.Type,
		TargetDuration: row.TargetDuration,
		ActualDuration: row.ActualDuration,
		Completed:      row.Completed,
		ManuallyAdded:  row.ManuallyAdded,
	}
	if row.StartTime != "" {
		start, err := time.Parse(timeLayout, row.StartTime)
		if err != nil {
			return domain.Record{}, fmt.Errorf("%w: start_time: %v", apperrors.ErrInvalidInput, err)
		}
		r.StartTime = start.UTC()
	}
	if row.EndTime != nil && *row.EndTime != "" {
		end, err := time.Parse(timeLayout, *row.EndTime)
		if err != nil {
			return domain.Record{}, fmt.Errorf("%w: end_time: %v", apperrors.ErrInvalidInput, err)
		}
		end = end.UTC()
		r.EndTime = &end
	}
	if row.CreatedAt != "" {
		if created, err := time.Parse(timeLayout, row.CreatedAt); err == nil {
			r.CreatedAt = created.UTC()
		}
	}
	return r, nil
}

func toRow(r domain.Record) fastingdto.Row {
	row := fastingdto.Row{
		ID:             r.ID,
		UserID:         r.UserID,
		Type:           r.Type,
		StartTime:      r.StartTime.UTC().Format(timeLayout),
		TargetDuration: r.TargetDuration,
		ActualDuration: r.ActualDuration,
		Completed:      r.Completed,
		ManuallyAdded:  r.ManuallyAdded,
	}
	if r.EndTime != nil {
		end := r.EndTime.UTC().Format(timeLayout)
		row.EndTime = &end
	}
	if !r.CreatedAt.IsZero() {
		row.CreatedAt = r.CreatedAt.UTC().Format(timeLayout)
	}
	return row
}
