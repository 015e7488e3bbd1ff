package report

import (
	"log/slog"

	"github.com/workstack/workforce-management/internal"
	"github.com/workstack/workforce-management/internal/auth"
)

// Source fetches the flattened rows the aggregator consumes. A nil owner
// list means the whole tenant.
type Source interface {
	LeaveRecords(tenantID int64, year int, ownerIDs []int64) ([]LeaveRecord, error)
	ExpenseRecords(tenantID int64, year int, ownerIDs []int64) ([]ExpenseRecord, error)
	// LeaveAllocations returns each employee's total allocated days for
	// the year, keyed by employee id.
	LeaveAllocations(tenantID int64, year int, ownerIDs []int64) (map[int64]int64, error)
}

// EmployeeDirectory scopes a manager's report to their direct reports.
type EmployeeDirectory interface {
	DirectReportIDs(tenantID, managerID int64) ([]int64, error)
}

// Service builds reports scoped to the caller: HR sees the tenant, a
// manager sees their direct reports.
type Service struct {
	source    Source
	directory EmployeeDirectory
	logger    *slog.Logger
}

func NewService(source Source, directory EmployeeDirectory, logger *slog.Logger) *Service {
	return &Service{source: source, directory: directory, logger: logger}
}

func (s *Service) LeaveReport(actor auth.Identity, year int) (*LeaveReport, error) {
	ownerIDs, err := s.scope(actor)
	if err != nil {
		return nil, err
	}

	records, err := s.source.LeaveRecords(actor.TenantID, year, ownerIDs)
	if err != nil {
		s.logger.Error("failed to fetch leave records", "error", err, "year", year)
		return nil, internal.NewInternalError("failed to build leave report", err)
	}
	allocations, err := s.source.LeaveAllocations(actor.TenantID, year, ownerIDs)
	if err != nil {
		s.logger.Error("failed to fetch leave allocations", "error", err, "year", year)
		return nil, internal.NewInternalError("failed to build leave report", err)
	}

	report := BuildLeaveReport(year, records, allocations)
	return &report, nil
}

func (s *Service) ExpenseReport(actor auth.Identity, year int) (*ExpenseReport, error) {
	ownerIDs, err := s.scope(actor)
	if err != nil {
		return nil, err
	}

	records, err := s.source.ExpenseRecords(actor.TenantID, year, ownerIDs)
	if err != nil {
		s.logger.Error("failed to fetch expense records", "error", err, "year", year)
		return nil, internal.NewInternalError("failed to build expense report", err)
	}

	report := BuildExpenseReport(year, records)
	return &report, nil
}

// scope returns the owner ids the caller may aggregate over. HR gets the
// whole tenant (nil); a manager gets their direct reports plus themselves;
// plain employees only themselves.
func (s *Service) scope(actor auth.Identity) ([]int64, error) {
	if actor.Role == auth.RoleHR {
		return nil, nil
	}
	if actor.Role == auth.RoleManager {
		ids, err := s.directory.DirectReportIDs(actor.TenantID, actor.EmployeeID)
		if err != nil {
			return nil, err
		}
		return append(ids, actor.EmployeeID), nil
	}
	return []int64{actor.EmployeeID}, nil
}
