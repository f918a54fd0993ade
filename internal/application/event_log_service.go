package application

import (
	"context"
	"fmt"

	"github.com/sales-platform/sales-service/internal/domain"
	"github.com/sales-platform/sales-service/pkg/logging"
)

// EventLogApplicationService serves the read side of the audit log
type EventLogApplicationService struct {
	repo   domain.EventLogRepository
	logger *logging.Logger
}

// NewEventLogApplicationService creates a new EventLogApplicationService
func NewEventLogApplicationService(repo domain.EventLogRepository, logger *logging.Logger) *EventLogApplicationService {
	return &EventLogApplicationService{
		repo:   repo,
		logger: logger,
	}
}

// ListEventLogs retrieves audit log entries matching the query
func (s *EventLogApplicationService) ListEventLogs(ctx context.Context, query ListEventLogsQuery) ([]*EventLogDTO, int64, error) {
	filter := domain.EventLogFilter{
		EventID:   query.EventID,
		EventType: query.EventType,
		FromDate:  query.FromDate,
		ToDate:    query.ToDate,
	}

	pagination := domain.Pagination{
		Page:     query.Page,
		PageSize: query.PageSize,
		SortBy:   "createdAt",
		SortDesc: query.SortDesc,
	}
	if pagination.Page < 1 || pagination.PageSize < 1 {
		pagination.Page = 1
		pagination.PageSize = 20
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count event logs: %w", err)
	}

	logs, err := s.repo.List(ctx, filter, pagination)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list event logs: %w", err)
	}

	dtos := make([]*EventLogDTO, 0, len(logs))
	for _, log := range logs {
		dtos = append(dtos, ToEventLogDTO(log))
	}

	return dtos, total, nil
}
