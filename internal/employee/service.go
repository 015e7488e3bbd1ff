package employee

import (
	"log/slog"

	"github.com/workstack/workforce-management/internal"
)

// Service is the hierarchy resolver: it answers who reports to whom so
// approval queues can be scoped to a manager's own team. Scoping is to
// DIRECT reports only; org-wide views must recurse explicitly.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) GetEmployee(tenantID, id int64) (*Employee, error) {
	emp, err := s.repo.GetByID(tenantID, id)
	if err != nil {
		s.logger.Error("failed to get employee", "error", err, "employee_id", id, "tenant_id", tenantID)
		return nil, internal.ErrEmployeeNotFound
	}
	return emp, nil
}

// DirectReports returns the manager's team. An empty team is a valid
// result, not an error.
func (s *Service) DirectReports(tenantID, managerID int64) ([]*Employee, error) {
	reports, err := s.repo.DirectReports(tenantID, managerID)
	if err != nil {
		s.logger.Error("failed to resolve direct reports", "error", err, "manager_id", managerID)
		return nil, internal.NewInternalError("failed to resolve direct reports", err)
	}
	if reports == nil {
		reports = []*Employee{}
	}
	return reports, nil
}

// DirectReportIDs is the id-only variant used to scope pending queries.
func (s *Service) DirectReportIDs(tenantID, managerID int64) ([]int64, error) {
	reports, err := s.DirectReports(tenantID, managerID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(reports))
	for _, r := range reports {
		ids = append(ids, r.ID)
	}
	return ids, nil
}
