package timesheet

import (
	"context"
	"log/slog"
	"time"

	"github.com/workstack/workforce-management/internal"
	"github.com/workstack/workforce-management/internal/auth"
	"github.com/workstack/workforce-management/internal/core/events"
	"github.com/workstack/workforce-management/internal/employee"
	"github.com/workstack/workforce-management/internal/workflow"
)

// Repository defines the data access methods for timesheet entries.
type Repository interface {
	Create(e *Entry) error
	GetByID(tenantID, id int64) (*Entry, error)
	ListByOwner(tenantID, ownerID int64, limit, offset int) ([]*Entry, error)
	Update(e *Entry) error
	Delete(tenantID, id int64) error
	// PendingByOwners returns SUBMITTED entries for the given owners plus
	// the total match count. A nil owner list means all owners in tenant.
	PendingByOwners(tenantID int64, ownerIDs []int64, q internal.PageQuery) ([]*Entry, int64, error)
	SummarizePending(tenantID int64, ownerIDs []int64, q internal.PageQuery) (TeamSummary, error)
}

// EmployeeDirectory is the slice of the hierarchy resolver this service
// needs.
type EmployeeDirectory interface {
	GetEmployee(tenantID, id int64) (*employee.Employee, error)
	DirectReportIDs(tenantID, managerID int64) ([]int64, error)
}

// Service handles timesheet business logic.
type Service struct {
	repo      Repository
	directory EmployeeDirectory
	bus       *events.Bus
	logger    *slog.Logger
}

func NewService(repo Repository, directory EmployeeDirectory, bus *events.Bus, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		directory: directory,
		bus:       bus,
		logger:    logger,
	}
}

// CreateEntry creates a DRAFT entry owned by the caller.
func (s *Service) CreateEntry(actor auth.Identity, dto CreateEntryDTO) (*Entry, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	entry := &Entry{
		TenantID:    actor.TenantID,
		OwnerID:     actor.EmployeeID,
		WorkDate:    dto.WorkDate,
		Hours:       dto.Hours,
		Billable:    dto.Billable,
		ProjectRef:  dto.ProjectRef,
		TaskRef:     dto.TaskRef,
		Description: dto.Description,
		Status:      workflow.StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(entry); err != nil {
		s.logger.Error("failed to create timesheet entry", "error", err, "owner_id", actor.EmployeeID)
		return nil, internal.NewInternalError("failed to create timesheet entry", err)
	}

	s.logger.Info("timesheet entry created",
		"entry_id", entry.ID,
		"owner_id", actor.EmployeeID,
		"work_date", dto.WorkDate.Format("2006-01-02"),
		"hours", dto.Hours)
	return entry, nil
}

// GetEntry fetches an entry the caller may view.
func (s *Service) GetEntry(actor auth.Identity, id int64) (*Entry, error) {
	entry, err := s.repo.GetByID(actor.TenantID, id)
	if err != nil {
		return nil, internal.ErrRecordNotFound
	}

	owner, err := s.directory.GetEmployee(actor.TenantID, entry.OwnerID)
	if err != nil {
		return nil, err
	}
	if !auth.CanViewRecord(actor, owner.ID, owner.ManagerID) {
		s.logger.Warn("unauthorized timesheet access", "entry_id", id, "actor_id", actor.EmployeeID)
		return nil, internal.ErrRecordNotFound
	}
	return entry, nil
}

// ListOwn returns the caller's own entries, newest first.
func (s *Service) ListOwn(actor auth.Identity, limit, offset int) ([]*Entry, error) {
	entries, err := s.repo.ListByOwner(actor.TenantID, actor.EmployeeID, limit, offset)
	if err != nil {
		s.logger.Error("failed to list timesheet entries", "error", err, "owner_id", actor.EmployeeID)
		return nil, internal.NewInternalError("failed to list timesheet entries", err)
	}
	return entries, nil
}

// UpdateEntry edits a DRAFT or REJECTED entry owned by the caller.
func (s *Service) UpdateEntry(actor auth.Identity, id int64, dto CreateEntryDTO) (*Entry, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	entry, err := s.repo.GetByID(actor.TenantID, id)
	if err != nil {
		return nil, internal.ErrRecordNotFound
	}
	if entry.OwnerID != actor.EmployeeID {
		return nil, internal.ErrNotRecordOwner
	}
	if !entry.Status.Editable() {
		return nil, internal.NewConflictError("cannot edit an entry in status "+string(entry.Status), internal.ErrCodeInvalidTransition)
	}

	entry.WorkDate = dto.WorkDate
	entry.Hours = dto.Hours
	entry.Billable = dto.Billable
	entry.ProjectRef = dto.ProjectRef
	entry.TaskRef = dto.TaskRef
	entry.Description = dto.Description
	entry.UpdatedAt = time.Now()

	if err := s.repo.Update(entry); err != nil {
		s.logger.Error("failed to update timesheet entry", "error", err, "entry_id", id)
		return nil, internal.NewInternalError("failed to update timesheet entry", err)
	}
	return entry, nil
}

// DeleteEntry removes a DRAFT entry owned by the caller.
func (s *Service) DeleteEntry(actor auth.Identity, id int64) error {
	entry, err := s.repo.GetByID(actor.TenantID, id)
	if err != nil {
		return internal.ErrRecordNotFound
	}

	relations := auth.RelationsFor(actor, entry.OwnerID, nil)
	if _, err := workflow.Authorize(workflow.ActionDelete, entry.Status, relations, ""); err != nil {
		return err
	}

	if err := s.repo.Delete(actor.TenantID, id); err != nil {
		s.logger.Error("failed to delete timesheet entry", "error", err, "entry_id", id)
		return internal.NewInternalError("failed to delete timesheet entry", err)
	}
	s.logger.Info("timesheet entry deleted", "entry_id", id, "owner_id", actor.EmployeeID)
	return nil
}

// Submit moves a DRAFT or REJECTED entry to SUBMITTED.
func (s *Service) Submit(actor auth.Identity, id int64) (*Entry, error) {
	entry, owner, err := s.load(actor, id)
	if err != nil {
		return nil, err
	}

	relations := auth.RelationsFor(actor, owner.ID, owner.ManagerID)
	next, err := workflow.Authorize(workflow.ActionSubmit, entry.Status, relations, "")
	if err != nil {
		return nil, err
	}

	now := time.Now()
	from := entry.Status
	entry.Status = next
	entry.SubmittedAt = &now
	entry.DecidedAt = nil
	entry.ApproverID = nil
	entry.RejectionReason = nil
	entry.RejectionCategory = nil
	entry.UpdatedAt = now

	if err := s.repo.Update(entry); err != nil {
		s.logger.Error("failed to submit timesheet entry", "error", err, "entry_id", id)
		return nil, internal.NewInternalError("failed to submit timesheet entry", err)
	}

	s.publishStatusChange(entry, actor.EmployeeID, from)
	return entry, nil
}

// Approve moves a SUBMITTED entry to APPROVED via a manager or HR.
func (s *Service) Approve(actor auth.Identity, id int64) (*Entry, error) {
	return s.decide(actor, id, workflow.ActionApprove, RejectDTO{})
}

// AutoApprove is the explicit self-approval path for root-level employees.
func (s *Service) AutoApprove(actor auth.Identity, id int64) (*Entry, error) {
	return s.decide(actor, id, workflow.ActionAutoApprove, RejectDTO{})
}

// Reject moves a SUBMITTED entry to REJECTED with mandatory reason.
func (s *Service) Reject(actor auth.Identity, id int64, dto RejectDTO) (*Entry, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	return s.decide(actor, id, workflow.ActionReject, dto)
}

// BulkApprove approves each entry independently and reports per-entry
// outcomes. Partial failure is an expected result, never an abort.
func (s *Service) BulkApprove(actor auth.Identity, dto BulkApproveDTO) ([]workflow.Outcome, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	outcomes := make([]workflow.Outcome, 0, len(dto.EntryIDs))
	for _, id := range dto.EntryIDs {
		if _, err := s.decide(actor, id, workflow.ActionApprove, RejectDTO{}); err != nil {
			outcomes = append(outcomes, workflow.FailureOutcome(id, err))
			continue
		}
		outcomes = append(outcomes, workflow.SuccessOutcome(id))
	}

	s.logger.Info("bulk approval finished",
		"actor_id", actor.EmployeeID,
		"requested", len(dto.EntryIDs),
		"succeeded", countSuccesses(outcomes))
	return outcomes, nil
}

// PendingForManager returns the SUBMITTED entries of the caller's direct
// reports with an aggregate team summary. HR sees the whole tenant. A
// manager with no reports gets an empty page, not an error.
func (s *Service) PendingForManager(actor auth.Identity, q internal.PageQuery) (*PendingPage, error) {
	var ownerIDs []int64
	if actor.Role != auth.RoleHR {
		ids, err := s.directory.DirectReportIDs(actor.TenantID, actor.EmployeeID)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return &PendingPage{Entries: []*Entry{}, Page: q.Page, Limit: q.Limit}, nil
		}
		ownerIDs = ids
	}

	entries, total, err := s.repo.PendingByOwners(actor.TenantID, ownerIDs, q)
	if err != nil {
		s.logger.Error("failed to fetch pending timesheets", "error", err, "manager_id", actor.EmployeeID)
		return nil, internal.NewInternalError("failed to fetch pending timesheets", err)
	}

	summary, err := s.repo.SummarizePending(actor.TenantID, ownerIDs, q)
	if err != nil {
		s.logger.Error("failed to summarize pending timesheets", "error", err, "manager_id", actor.EmployeeID)
		return nil, internal.NewInternalError("failed to summarize pending timesheets", err)
	}

	if entries == nil {
		entries = []*Entry{}
	}
	return &PendingPage{
		Entries: entries,
		Total:   total,
		Page:    q.Page,
		Limit:   q.Limit,
		Summary: summary,
	}, nil
}

func (s *Service) decide(actor auth.Identity, id int64, action workflow.Action, dto RejectDTO) (*Entry, error) {
	entry, owner, err := s.load(actor, id)
	if err != nil {
		return nil, err
	}

	relations := auth.RelationsFor(actor, owner.ID, owner.ManagerID)
	next, err := workflow.Authorize(action, entry.Status, relations, dto.Reason)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	from := entry.Status
	entry.Status = next
	entry.DecidedAt = &now
	entry.ApproverID = &actor.EmployeeID
	entry.UpdatedAt = now
	if action == workflow.ActionReject {
		entry.RejectionReason = &dto.Reason
		if dto.Category != "" {
			entry.RejectionCategory = &dto.Category
		}
	}

	if err := s.repo.Update(entry); err != nil {
		s.logger.Error("failed to update timesheet status", "error", err, "entry_id", id, "action", action)
		return nil, internal.NewInternalError("failed to update timesheet status", err)
	}

	s.logger.Info("timesheet status changed",
		"entry_id", id,
		"actor_id", actor.EmployeeID,
		"from", from,
		"to", entry.Status)
	s.publishStatusChange(entry, actor.EmployeeID, from)
	return entry, nil
}

func (s *Service) load(actor auth.Identity, id int64) (*Entry, *employee.Employee, error) {
	entry, err := s.repo.GetByID(actor.TenantID, id)
	if err != nil {
		return nil, nil, internal.ErrRecordNotFound
	}
	owner, err := s.directory.GetEmployee(actor.TenantID, entry.OwnerID)
	if err != nil {
		return nil, nil, err
	}
	return entry, owner, nil
}

func (s *Service) publishStatusChange(entry *Entry, actorID int64, from workflow.Status) {
	s.bus.Publish(context.Background(), events.NewStatusChanged(
		"timesheet", entry.ID, entry.TenantID, entry.OwnerID, actorID,
		string(from), string(entry.Status)))
}

func countSuccesses(outcomes []workflow.Outcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Success {
			n++
		}
	}
	return n
}
