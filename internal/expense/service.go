package expense

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/workstack/workforce-management/internal"
	"github.com/workstack/workforce-management/internal/auth"
	"github.com/workstack/workforce-management/internal/core/events"
	"github.com/workstack/workforce-management/internal/employee"
	"github.com/workstack/workforce-management/internal/workflow"
)

// Repository defines the data access methods for expense claims.
type Repository interface {
	Create(c *Claim) error
	GetByID(tenantID, id int64) (*Claim, error)
	ListByOwner(tenantID, ownerID int64, limit, offset int) ([]*Claim, error)
	Update(c *Claim) error
	Delete(tenantID, id int64) error
	PendingByOwners(tenantID int64, ownerIDs []int64, q internal.PageQuery) ([]*Claim, int64, error)
	SummarizePending(tenantID int64, ownerIDs []int64, q internal.PageQuery) (ClaimSummary, error)
	CountSimilar(tenantID, ownerID int64, normalizedTitle string, amount decimal.Decimal, createdAfter time.Time) (int64, error)
}

// EmployeeDirectory is the slice of the hierarchy resolver this service
// needs.
type EmployeeDirectory interface {
	GetEmployee(tenantID, id int64) (*employee.Employee, error)
	DirectReportIDs(tenantID, managerID int64) ([]int64, error)
}

// Service handles expense claim business logic.
type Service struct {
	repo      Repository
	directory EmployeeDirectory
	guard     *DuplicateGuard
	rules     Rules
	bus       *events.Bus
	logger    *slog.Logger
}

func NewService(repo Repository, directory EmployeeDirectory, rules Rules, bus *events.Bus, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		directory: directory,
		guard:     NewDuplicateGuard(repo, rules.DuplicateWindow, logger),
		rules:     rules,
		bus:       bus,
		logger:    logger,
	}
}

// CreateClaim creates a DRAFT claim owned by the caller. Near-duplicate
// submissions are refused with a structured conflict.
func (s *Service) CreateClaim(actor auth.Identity, dto CreateClaimDTO) (*Claim, error) {
	if err := dto.Validate(s.rules); err != nil {
		return nil, err
	}
	if err := s.guard.Check(actor.TenantID, actor.EmployeeID, dto.Title, dto.Amount); err != nil {
		return nil, err
	}

	now := time.Now()
	currency := dto.Currency
	if currency == "" {
		currency = "USD"
	}
	claim := &Claim{
		TenantID:    actor.TenantID,
		OwnerID:     actor.EmployeeID,
		ClaimNumber: NewClaimNumber(now),
		Title:       dto.Title,
		Category:    dto.Category,
		Amount:      dto.Amount,
		Currency:    currency,
		ExpenseDate: dto.ExpenseDate,
		Description: dto.Description,
		ReceiptURLs: dto.ReceiptURLs,
		Status:      workflow.StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(claim); err != nil {
		s.logger.Error("failed to create expense claim", "error", err, "owner_id", actor.EmployeeID)
		return nil, internal.NewInternalError("failed to create expense claim", err)
	}

	s.logger.Info("expense claim created",
		"claim_id", claim.ID,
		"claim_number", claim.ClaimNumber,
		"owner_id", actor.EmployeeID,
		"amount", dto.Amount.String())
	return claim, nil
}

func (s *Service) GetClaim(actor auth.Identity, id int64) (*Claim, error) {
	claim, err := s.repo.GetByID(actor.TenantID, id)
	if err != nil {
		return nil, internal.ErrRecordNotFound
	}

	owner, err := s.directory.GetEmployee(actor.TenantID, claim.OwnerID)
	if err != nil {
		return nil, err
	}
	if !auth.CanViewRecord(actor, owner.ID, owner.ManagerID) {
		s.logger.Warn("unauthorized expense access", "claim_id", id, "actor_id", actor.EmployeeID)
		return nil, internal.ErrRecordNotFound
	}
	return claim, nil
}

func (s *Service) ListOwn(actor auth.Identity, limit, offset int) ([]*Claim, error) {
	claims, err := s.repo.ListByOwner(actor.TenantID, actor.EmployeeID, limit, offset)
	if err != nil {
		s.logger.Error("failed to list expense claims", "error", err, "owner_id", actor.EmployeeID)
		return nil, internal.NewInternalError("failed to list expense claims", err)
	}
	return claims, nil
}

// UpdateClaim edits a DRAFT or REJECTED claim owned by the caller.
func (s *Service) UpdateClaim(actor auth.Identity, id int64, dto CreateClaimDTO) (*Claim, error) {
	if err := dto.Validate(s.rules); err != nil {
		return nil, err
	}

	claim, err := s.repo.GetByID(actor.TenantID, id)
	if err != nil {
		return nil, internal.ErrRecordNotFound
	}
	if claim.OwnerID != actor.EmployeeID {
		return nil, internal.ErrNotRecordOwner
	}
	if !claim.Status.Editable() {
		return nil, internal.NewConflictError("cannot edit a claim in status "+string(claim.Status), internal.ErrCodeInvalidTransition)
	}

	claim.Title = dto.Title
	claim.Category = dto.Category
	claim.Amount = dto.Amount
	if dto.Currency != "" {
		claim.Currency = dto.Currency
	}
	claim.ExpenseDate = dto.ExpenseDate
	claim.Description = dto.Description
	claim.ReceiptURLs = dto.ReceiptURLs
	claim.UpdatedAt = time.Now()

	if err := s.repo.Update(claim); err != nil {
		s.logger.Error("failed to update expense claim", "error", err, "claim_id", id)
		return nil, internal.NewInternalError("failed to update expense claim", err)
	}
	return claim, nil
}

func (s *Service) DeleteClaim(actor auth.Identity, id int64) error {
	claim, err := s.repo.GetByID(actor.TenantID, id)
	if err != nil {
		return internal.ErrRecordNotFound
	}

	relations := auth.RelationsFor(actor, claim.OwnerID, nil)
	if _, err := workflow.Authorize(workflow.ActionDelete, claim.Status, relations, ""); err != nil {
		return err
	}

	if err := s.repo.Delete(actor.TenantID, id); err != nil {
		s.logger.Error("failed to delete expense claim", "error", err, "claim_id", id)
		return internal.NewInternalError("failed to delete expense claim", err)
	}
	return nil
}

func (s *Service) Submit(actor auth.Identity, id int64) (*Claim, error) {
	claim, owner, err := s.load(actor, id)
	if err != nil {
		return nil, err
	}

	relations := auth.RelationsFor(actor, owner.ID, owner.ManagerID)
	next, err := workflow.Authorize(workflow.ActionSubmit, claim.Status, relations, "")
	if err != nil {
		return nil, err
	}

	now := time.Now()
	from := claim.Status
	claim.Status = next
	claim.SubmittedAt = &now
	claim.DecidedAt = nil
	claim.ApproverID = nil
	claim.RejectionReason = nil
	claim.RejectionCategory = nil
	claim.UpdatedAt = now

	if err := s.repo.Update(claim); err != nil {
		s.logger.Error("failed to submit expense claim", "error", err, "claim_id", id)
		return nil, internal.NewInternalError("failed to submit expense claim", err)
	}

	s.publishStatusChange(claim, actor.EmployeeID, from)
	return claim, nil
}

func (s *Service) Approve(actor auth.Identity, id int64) (*Claim, error) {
	return s.decide(actor, id, workflow.ActionApprove, RejectClaimDTO{})
}

func (s *Service) AutoApprove(actor auth.Identity, id int64) (*Claim, error) {
	return s.decide(actor, id, workflow.ActionAutoApprove, RejectClaimDTO{})
}

func (s *Service) Reject(actor auth.Identity, id int64, dto RejectClaimDTO) (*Claim, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	return s.decide(actor, id, workflow.ActionReject, dto)
}

// PendingForManager mirrors the timesheet pending queue for claims.
func (s *Service) PendingForManager(actor auth.Identity, q internal.PageQuery) (*PendingPage, error) {
	var ownerIDs []int64
	if actor.Role != auth.RoleHR {
		ids, err := s.directory.DirectReportIDs(actor.TenantID, actor.EmployeeID)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return &PendingPage{
				Claims:  []*Claim{},
				Page:    q.Page,
				Limit:   q.Limit,
				Summary: ClaimSummary{TotalAmount: decimal.Zero, ByCategory: map[string]decimal.Decimal{}},
			}, nil
		}
		ownerIDs = ids
	}

	claims, total, err := s.repo.PendingByOwners(actor.TenantID, ownerIDs, q)
	if err != nil {
		s.logger.Error("failed to fetch pending claims", "error", err, "manager_id", actor.EmployeeID)
		return nil, internal.NewInternalError("failed to fetch pending claims", err)
	}
	summary, err := s.repo.SummarizePending(actor.TenantID, ownerIDs, q)
	if err != nil {
		s.logger.Error("failed to summarize pending claims", "error", err, "manager_id", actor.EmployeeID)
		return nil, internal.NewInternalError("failed to summarize pending claims", err)
	}

	if claims == nil {
		claims = []*Claim{}
	}
	if summary.ByCategory == nil {
		summary.ByCategory = map[string]decimal.Decimal{}
	}
	return &PendingPage{
		Claims:  claims,
		Total:   total,
		Page:    q.Page,
		Limit:   q.Limit,
		Summary: summary,
	}, nil
}

func (s *Service) decide(actor auth.Identity, id int64, action workflow.Action, dto RejectClaimDTO) (*Claim, error) {
	claim, owner, err := s.load(actor, id)
	if err != nil {
		return nil, err
	}

	relations := auth.RelationsFor(actor, owner.ID, owner.ManagerID)
	next, err := workflow.Authorize(action, claim.Status, relations, dto.Reason)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	from := claim.Status
	claim.Status = next
	claim.DecidedAt = &now
	claim.ApproverID = &actor.EmployeeID
	claim.UpdatedAt = now
	if action == workflow.ActionReject {
		claim.RejectionReason = &dto.Reason
		if dto.Category != "" {
			claim.RejectionCategory = &dto.Category
		}
	}

	if err := s.repo.Update(claim); err != nil {
		s.logger.Error("failed to update claim status", "error", err, "claim_id", id, "action", action)
		return nil, internal.NewInternalError("failed to update claim status", err)
	}

	s.logger.Info("expense claim status changed",
		"claim_id", id,
		"claim_number", claim.ClaimNumber,
		"actor_id", actor.EmployeeID,
		"from", from,
		"to", claim.Status)
	s.publishStatusChange(claim, actor.EmployeeID, from)
	return claim, nil
}

func (s *Service) load(actor auth.Identity, id int64) (*Claim, *employee.Employee, error) {
	claim, err := s.repo.GetByID(actor.TenantID, id)
	if err != nil {
		return nil, nil, internal.ErrRecordNotFound
	}
	owner, err := s.directory.GetEmployee(actor.TenantID, claim.OwnerID)
	if err != nil {
		return nil, nil, err
	}
	return claim, owner, nil
}

func (s *Service) publishStatusChange(claim *Claim, actorID int64, from workflow.Status) {
	s.bus.Publish(context.Background(), events.NewStatusChanged(
		"expense", claim.ID, claim.TenantID, claim.OwnerID, actorID,
		string(from), string(claim.Status)))
}
