package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"door_controller/internal/models"
	"door_controller/internal/repository"
)

type OperationLogService struct {
	ops repository.OperationRepo
}

func NewOperationLogService(ops repository.OperationRepo) *OperationLogService {
	return &OperationLogService{ops: ops}
}

var errInvalidTimeRange = errors.New("invalid time range: From must be <= To")

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeAndValidateFilter prepares query parameters and validates the
// time range.
func normalizeAndValidateFilter(f LogFilter) (time.Time, time.Time, string, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, "", errInvalidTimeRange
	}

	kind := strings.TrimSpace(strings.ToUpper(f.Kind))
	return from, to, kind, nil
}

func (s *OperationLogService) List(ctx context.Context, f LogFilter) ([]models.Operation, error) {
	from, to, kind, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.ops.List(ctx, from, to, kind)
}
