package leave

import (
	"context"
	"log/slog"
	"time"

	"github.com/workstack/workforce-management/internal"
	"github.com/workstack/workforce-management/internal/auth"
	"github.com/workstack/workforce-management/internal/calendar"
	"github.com/workstack/workforce-management/internal/core/events"
	"github.com/workstack/workforce-management/internal/employee"
	"github.com/workstack/workforce-management/internal/workflow"
)

// Repository defines the data access methods for leave requests.
// UpdateWithBalance persists the request and the adjusted balance row in
// one transaction; a nil balance degrades to a plain request update.
type Repository interface {
	Create(r *Request) error
	GetByID(tenantID, id int64) (*Request, error)
	ListByOwner(tenantID, ownerID int64, limit, offset int) ([]*Request, error)
	Update(r *Request) error
	UpdateWithBalance(r *Request, b *Balance) error
	Delete(tenantID, id int64) error
	PendingByOwners(tenantID int64, ownerIDs []int64, q internal.PageQuery) ([]*Request, int64, error)
	SummarizePending(tenantID int64, ownerIDs []int64, q internal.PageQuery) (LeaveSummary, error)
}

// EmployeeDirectory is the slice of the hierarchy resolver this service
// needs.
type EmployeeDirectory interface {
	GetEmployee(tenantID, id int64) (*employee.Employee, error)
	DirectReportIDs(tenantID, managerID int64) ([]int64, error)
}

// WorkingDayCalendar computes working days and per-day classifications for
// a tenant's holiday configuration.
type WorkingDayCalendar interface {
	WorkingDays(tenantID int64, start, end time.Time) (int, error)
	ClassifyRange(tenantID int64, start, end time.Time) ([]calendar.DayClassification, error)
}

// Service handles leave request business logic.
type Service struct {
	repo      Repository
	directory EmployeeDirectory
	calendar  WorkingDayCalendar
	ledger    *Ledger
	bus       *events.Bus
	logger    *slog.Logger
}

func NewService(repo Repository, directory EmployeeDirectory, cal WorkingDayCalendar, ledger *Ledger, bus *events.Bus, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		directory: directory,
		calendar:  cal,
		ledger:    ledger,
		bus:       bus,
		logger:    logger,
	}
}

// CreateRequest creates a DRAFT leave request owned by the caller. The
// working-day count is computed here; a range with no working days is
// rejected, never silently created.
func (s *Service) CreateRequest(actor auth.Identity, dto CreateRequestDTO) (*Request, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	days, err := s.workingDays(actor.TenantID, dto.StartDate, dto.EndDate)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	request := &Request{
		TenantID:    actor.TenantID,
		OwnerID:     actor.EmployeeID,
		Type:        dto.Type,
		StartDate:   dto.StartDate,
		EndDate:     dto.EndDate,
		WorkingDays: days,
		Reason:      dto.Reason,
		Status:      workflow.StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(request); err != nil {
		s.logger.Error("failed to create leave request", "error", err, "owner_id", actor.EmployeeID)
		return nil, internal.NewInternalError("failed to create leave request", err)
	}

	s.logger.Info("leave request created",
		"request_id", request.ID,
		"owner_id", actor.EmployeeID,
		"type", dto.Type,
		"working_days", days)
	return request, nil
}

func (s *Service) GetRequest(actor auth.Identity, id int64) (*Request, error) {
	request, err := s.repo.GetByID(actor.TenantID, id)
	if err != nil {
		return nil, internal.ErrRecordNotFound
	}

	owner, err := s.directory.GetEmployee(actor.TenantID, request.OwnerID)
	if err != nil {
		return nil, err
	}
	if !auth.CanViewRecord(actor, owner.ID, owner.ManagerID) {
		s.logger.Warn("unauthorized leave access", "request_id", id, "actor_id", actor.EmployeeID)
		return nil, internal.ErrRecordNotFound
	}
	return request, nil
}

func (s *Service) ListOwn(actor auth.Identity, limit, offset int) ([]*Request, error) {
	requests, err := s.repo.ListByOwner(actor.TenantID, actor.EmployeeID, limit, offset)
	if err != nil {
		s.logger.Error("failed to list leave requests", "error", err, "owner_id", actor.EmployeeID)
		return nil, internal.NewInternalError("failed to list leave requests", err)
	}
	return requests, nil
}

// UpdateRequest edits a DRAFT or REJECTED request owned by the caller and
// recomputes its working days.
func (s *Service) UpdateRequest(actor auth.Identity, id int64, dto CreateRequestDTO) (*Request, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	request, err := s.repo.GetByID(actor.TenantID, id)
	if err != nil {
		return nil, internal.ErrRecordNotFound
	}
	if request.OwnerID != actor.EmployeeID {
		return nil, internal.ErrNotRecordOwner
	}
	if !request.Status.Editable() {
		return nil, internal.NewConflictError("cannot edit a request in status "+string(request.Status), internal.ErrCodeInvalidTransition)
	}

	days, err := s.workingDays(actor.TenantID, dto.StartDate, dto.EndDate)
	if err != nil {
		return nil, err
	}

	request.Type = dto.Type
	request.StartDate = dto.StartDate
	request.EndDate = dto.EndDate
	request.WorkingDays = days
	request.Reason = dto.Reason
	request.UpdatedAt = time.Now()

	if err := s.repo.Update(request); err != nil {
		s.logger.Error("failed to update leave request", "error", err, "request_id", id)
		return nil, internal.NewInternalError("failed to update leave request", err)
	}
	return request, nil
}

func (s *Service) DeleteRequest(actor auth.Identity, id int64) error {
	request, err := s.repo.GetByID(actor.TenantID, id)
	if err != nil {
		return internal.ErrRecordNotFound
	}

	relations := auth.RelationsFor(actor, request.OwnerID, nil)
	if _, err := workflow.Authorize(workflow.ActionDelete, request.Status, relations, ""); err != nil {
		return err
	}

	if err := s.repo.Delete(actor.TenantID, id); err != nil {
		s.logger.Error("failed to delete leave request", "error", err, "request_id", id)
		return internal.NewInternalError("failed to delete leave request", err)
	}
	return nil
}

func (s *Service) Submit(actor auth.Identity, id int64) (*Request, error) {
	request, owner, err := s.load(actor, id)
	if err != nil {
		return nil, err
	}

	relations := auth.RelationsFor(actor, owner.ID, owner.ManagerID)
	next, err := workflow.Authorize(workflow.ActionSubmit, request.Status, relations, "")
	if err != nil {
		return nil, err
	}

	now := time.Now()
	from := request.Status
	request.Status = next
	request.SubmittedAt = &now
	request.DecidedAt = nil
	request.ApproverID = nil
	request.RejectionReason = nil
	request.RejectionCategory = nil
	request.UpdatedAt = now

	if err := s.repo.Update(request); err != nil {
		s.logger.Error("failed to submit leave request", "error", err, "request_id", id)
		return nil, internal.NewInternalError("failed to submit leave request", err)
	}

	s.publishStatusChange(request, actor.EmployeeID, from)
	return request, nil
}

// Approve moves a SUBMITTED request to APPROVED and debits the owner's
// balance. The status change and the debit are persisted in one
// transaction.
func (s *Service) Approve(actor auth.Identity, id int64) (*Request, error) {
	return s.decide(actor, id, workflow.ActionApprove, RejectRequestDTO{})
}

func (s *Service) AutoApprove(actor auth.Identity, id int64) (*Request, error) {
	return s.decide(actor, id, workflow.ActionAutoApprove, RejectRequestDTO{})
}

// Reject moves a SUBMITTED request to REJECTED. A request that had already
// debited the balance gets its days credited back in the same transaction.
func (s *Service) Reject(actor auth.Identity, id int64, dto RejectRequestDTO) (*Request, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	return s.decide(actor, id, workflow.ActionReject, dto)
}

func (s *Service) PendingForManager(actor auth.Identity, q internal.PageQuery) (*PendingPage, error) {
	var ownerIDs []int64
	if actor.Role != auth.RoleHR {
		ids, err := s.directory.DirectReportIDs(actor.TenantID, actor.EmployeeID)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return &PendingPage{
				Requests: []*Request{},
				Page:     q.Page,
				Limit:    q.Limit,
				Summary:  LeaveSummary{ByType: map[string]int64{}},
			}, nil
		}
		ownerIDs = ids
	}

	requests, total, err := s.repo.PendingByOwners(actor.TenantID, ownerIDs, q)
	if err != nil {
		s.logger.Error("failed to fetch pending leave requests", "error", err, "manager_id", actor.EmployeeID)
		return nil, internal.NewInternalError("failed to fetch pending leave requests", err)
	}
	summary, err := s.repo.SummarizePending(actor.TenantID, ownerIDs, q)
	if err != nil {
		s.logger.Error("failed to summarize pending leave requests", "error", err, "manager_id", actor.EmployeeID)
		return nil, internal.NewInternalError("failed to summarize pending leave requests", err)
	}

	if requests == nil {
		requests = []*Request{}
	}
	if summary.ByType == nil {
		summary.ByType = map[string]int64{}
	}
	return &PendingPage{
		Requests: requests,
		Total:    total,
		Page:     q.Page,
		Limit:    q.Limit,
		Summary:  summary,
	}, nil
}

// Balances returns the employee's balances for the year, visible to the
// employee, their manager, and HR.
func (s *Service) Balances(actor auth.Identity, employeeID int64, year int) ([]*Balance, error) {
	emp, err := s.directory.GetEmployee(actor.TenantID, employeeID)
	if err != nil {
		return nil, err
	}
	if !auth.CanViewRecord(actor, emp.ID, emp.ManagerID) {
		return nil, internal.ErrEmployeeNotFound
	}
	return s.ledger.Balances(actor.TenantID, employeeID, year)
}

// ResetBalances overwrites an employee's balances with the org defaults for
// the given year and the next. HR only.
func (s *Service) ResetBalances(actor auth.Identity, dto ResetBalanceDTO) ([]BalanceAdjustment, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if actor.Role != auth.RoleHR {
		return nil, internal.NewForbiddenError("only HR may reset leave balances", internal.ErrCodeNotInChain)
	}
	if _, err := s.directory.GetEmployee(actor.TenantID, dto.EmployeeID); err != nil {
		return nil, err
	}

	adjustments, err := s.ledger.ResetToOrgDefault(actor.TenantID, dto.EmployeeID, dto.Year)
	if err != nil {
		return nil, err
	}
	s.logger.Info("leave balances reset",
		"employee_id", dto.EmployeeID, "year", dto.Year, "actor_id", actor.EmployeeID)
	return adjustments, nil
}

// PreviewRange classifies each day of a candidate range so clients can show
// which days would count before a request is created.
func (s *Service) PreviewRange(actor auth.Identity, start, end time.Time) ([]calendar.DayClassification, int, error) {
	if start.IsZero() || end.IsZero() || start.After(end) {
		return nil, 0, internal.NewValidationFieldError("start_date", "a valid date range is required", internal.ErrCodeInvalidDateRange)
	}
	days, err := s.calendar.ClassifyRange(actor.TenantID, start, end)
	if err != nil {
		return nil, 0, internal.NewInternalError("failed to classify date range", err)
	}
	working := 0
	for _, d := range days {
		if d.Kind == calendar.DayWorkday {
			working++
		}
	}
	return days, working, nil
}

func (s *Service) decide(actor auth.Identity, id int64, action workflow.Action, dto RejectRequestDTO) (*Request, error) {
	request, owner, err := s.load(actor, id)
	if err != nil {
		return nil, err
	}

	relations := auth.RelationsFor(actor, owner.ID, owner.ManagerID)
	next, err := workflow.Authorize(action, request.Status, relations, dto.Reason)
	if err != nil {
		return nil, err
	}

	var balance *Balance
	year := request.StartDate.Year()
	switch action {
	case workflow.ActionApprove, workflow.ActionAutoApprove:
		balance, err = s.ledger.Reserve(actor.TenantID, request.OwnerID, request.Type, year, request.WorkingDays)
		if err != nil {
			return nil, err
		}
		request.BalanceDebited = balance != nil
	case workflow.ActionReject:
		if request.BalanceDebited {
			balance, err = s.ledger.Release(actor.TenantID, request.OwnerID, request.Type, year, request.WorkingDays)
			if err != nil {
				return nil, err
			}
			request.BalanceDebited = false
		}
	}

	now := time.Now()
	from := request.Status
	request.Status = next
	request.DecidedAt = &now
	request.ApproverID = &actor.EmployeeID
	request.UpdatedAt = now
	if action == workflow.ActionReject {
		request.RejectionReason = &dto.Reason
		if dto.Category != "" {
			request.RejectionCategory = &dto.Category
		}
	}

	if err := s.repo.UpdateWithBalance(request, balance); err != nil {
		s.logger.Error("failed to update leave request status", "error", err, "request_id", id, "action", action)
		return nil, internal.NewInternalError("failed to update leave request status", err)
	}

	s.logger.Info("leave request status changed",
		"request_id", id,
		"actor_id", actor.EmployeeID,
		"from", from,
		"to", request.Status,
		"working_days", request.WorkingDays)
	s.publishStatusChange(request, actor.EmployeeID, from)
	return request, nil
}

func (s *Service) workingDays(tenantID int64, start, end time.Time) (int, error) {
	days, err := s.calendar.WorkingDays(tenantID, start, end)
	if err != nil {
		return 0, internal.NewInternalError("failed to compute working days", err)
	}
	if days == 0 {
		return 0, internal.NewValidationError(
			"the requested range contains no working days", internal.ErrCodeNoWorkingDays)
	}
	return days, nil
}

func (s *Service) load(actor auth.Identity, id int64) (*Request, *employee.Employee, error) {
	request, err := s.repo.GetByID(actor.TenantID, id)
	if err != nil {
		return nil, nil, internal.ErrRecordNotFound
	}
	owner, err := s.directory.GetEmployee(actor.TenantID, request.OwnerID)
	if err != nil {
		return nil, nil, err
	}
	return request, owner, nil
}

func (s *Service) publishStatusChange(request *Request, actorID int64, from workflow.Status) {
	s.bus.Publish(context.Background(), events.NewStatusChanged(
		"leave", request.ID, request.TenantID, request.OwnerID, actorID,
		string(from), string(request.Status)))
}
