package expense_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/workstack/workforce-management/internal"
	"github.com/workstack/workforce-management/internal/auth"
	"github.com/workstack/workforce-management/internal/core/events"
	"github.com/workstack/workforce-management/internal/employee"
	"github.com/workstack/workforce-management/internal/expense"
	"github.com/workstack/workforce-management/internal/workflow"
)

func TestExpense(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Expense Suite")
}

type mockRepository struct {
	claims map[int64]*expense.Claim
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{claims: make(map[int64]*expense.Claim), nextID: 1}
}

func (m *mockRepository) Create(c *expense.Claim) error {
	c.ID = m.nextID
	m.nextID++
	m.claims[c.ID] = c
	return nil
}

func (m *mockRepository) GetByID(tenantID, id int64) (*expense.Claim, error) {
	c, ok := m.claims[id]
	if !ok || c.TenantID != tenantID {
		return nil, errors.New("record not found")
	}
	clone := *c
	return &clone, nil
}

func (m *mockRepository) ListByOwner(tenantID, ownerID int64, limit, offset int) ([]*expense.Claim, error) {
	var out []*expense.Claim
	for _, c := range m.claims {
		if c.TenantID == tenantID && c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockRepository) Update(c *expense.Claim) error {
	m.claims[c.ID] = c
	return nil
}

func (m *mockRepository) Delete(tenantID, id int64) error {
	delete(m.claims, id)
	return nil
}

func (m *mockRepository) PendingByOwners(tenantID int64, ownerIDs []int64, q internal.PageQuery) ([]*expense.Claim, int64, error) {
	var out []*expense.Claim
	for _, c := range m.claims {
		if c.TenantID == tenantID && c.Status == workflow.StatusSubmitted && (ownerIDs == nil || containsID(ownerIDs, c.OwnerID)) {
			out = append(out, c)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockRepository) SummarizePending(tenantID int64, ownerIDs []int64, q internal.PageQuery) (expense.ClaimSummary, error) {
	summary := expense.ClaimSummary{TotalAmount: decimal.Zero, ByCategory: map[string]decimal.Decimal{}}
	for _, c := range m.claims {
		if c.TenantID == tenantID && c.Status == workflow.StatusSubmitted && (ownerIDs == nil || containsID(ownerIDs, c.OwnerID)) {
			summary.ClaimCount++
			summary.TotalAmount = summary.TotalAmount.Add(c.Amount)
			cat := string(c.Category)
			summary.ByCategory[cat] = summary.ByCategory[cat].Add(c.Amount)
		}
	}
	return summary, nil
}

func (m *mockRepository) CountSimilar(tenantID, ownerID int64, normalizedTitle string, amount decimal.Decimal, createdAfter time.Time) (int64, error) {
	var count int64
	for _, c := range m.claims {
		if c.TenantID == tenantID && c.OwnerID == ownerID &&
			expense.NormalizeTitle(c.Title) == normalizedTitle &&
			c.Amount.Equal(amount) &&
			c.CreatedAt.After(createdAfter) {
			count++
		}
	}
	return count, nil
}

func containsID(ids []int64, want int64) bool {
	for _, id := range ids {
		if id == want {
			return true
		}
	}
	return false
}

type mockDirectory struct {
	employees map[int64]*employee.Employee
	reports   map[int64][]int64
}

func newMockDirectory() *mockDirectory {
	return &mockDirectory{
		employees: make(map[int64]*employee.Employee),
		reports:   make(map[int64][]int64),
	}
}

func (m *mockDirectory) GetEmployee(tenantID, id int64) (*employee.Employee, error) {
	emp, ok := m.employees[id]
	if !ok {
		return nil, internal.ErrEmployeeNotFound
	}
	return emp, nil
}

func (m *mockDirectory) DirectReportIDs(tenantID, managerID int64) ([]int64, error) {
	return m.reports[managerID], nil
}

var _ = Describe("ExpenseService", func() {
	var (
		service   *expense.Service
		repo      *mockRepository
		directory *mockDirectory

		manager auth.Identity
		worker  auth.Identity
	)

	const tenantID = int64(1)

	defaultRules := func() expense.Rules {
		return expense.Rules{
			ReceiptRequiredThreshold: decimal.NewFromInt(50),
			DescriptionMinLength:     10,
			DuplicateWindow:          time.Hour,
		}
	}

	BeforeEach(func() {
		repo = newMockRepository()
		directory = newMockDirectory()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		bus := events.NewBus(logger)
		service = expense.NewService(repo, directory, defaultRules(), bus, logger)

		managerID := int64(10)
		manager = auth.Identity{EmployeeID: managerID, TenantID: tenantID, Role: auth.RoleManager}
		worker = auth.Identity{EmployeeID: 20, TenantID: tenantID, Role: auth.RoleEmployee}

		directory.employees[10] = &employee.Employee{ID: 10, TenantID: tenantID, Name: "Mara"}
		directory.employees[20] = &employee.Employee{ID: 20, TenantID: tenantID, Name: "Ken", ManagerID: &managerID}
		directory.reports[10] = []int64{20}
	})

	yesterday := func() time.Time { return time.Now().AddDate(0, 0, -1) }

	claimDTO := func(title string, amount float64) expense.CreateClaimDTO {
		return expense.CreateClaimDTO{
			Title:       title,
			Category:    expense.CategoryTravel,
			Amount:      decimal.NewFromFloat(amount),
			ExpenseDate: yesterday(),
			Description: "taxi from the airport",
			ReceiptURLs: []string{"https://receipts.example/r1.pdf"},
		}
	}

	Describe("CreateClaim", func() {
		It("creates a draft claim with a claim number", func() {
			claim, err := service.CreateClaim(worker, claimDTO("airport taxi", 32.50))
			Expect(err).ToNot(HaveOccurred())
			Expect(claim.Status).To(Equal(workflow.StatusDraft))
			Expect(claim.ClaimNumber).To(HavePrefix("EXP-"))
			Expect(claim.Currency).To(Equal("USD"))
		})

		It("allows a small claim without receipts", func() {
			dto := claimDTO("team lunch", 45.50)
			dto.Category = expense.CategoryMeals
			dto.ReceiptURLs = nil

			claim, err := service.CreateClaim(worker, dto)
			Expect(err).ToNot(HaveOccurred())
			Expect(claim.ReceiptURLs).To(BeEmpty())
		})

		It("requires receipts above the threshold", func() {
			dto := claimDTO("hotel night", 100)
			dto.ReceiptURLs = []string{}

			_, err := service.CreateClaim(worker, dto)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))

			details, ok := appErr.Details.(internal.ValidationErrors)
			Expect(ok).To(BeTrue())
			Expect(details.Errors).To(HaveLen(1))
			Expect(details.Errors[0].Message).To(Equal("Receipts are required"))
		})

		It("rejects a short description", func() {
			dto := claimDTO("taxi", 20)
			dto.Description = "taxi"

			_, err := service.CreateClaim(worker, dto)
			Expect(err).To(HaveOccurred())
		})

		It("rejects a non-positive amount", func() {
			_, err := service.CreateClaim(worker, claimDTO("nothing", 0))
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
		})

		It("refuses a near-duplicate inside the window", func() {
			_, err := service.CreateClaim(worker, claimDTO("Airport Taxi", 32.50))
			Expect(err).ToNot(HaveOccurred())

			// same normalized title and amount, minutes later
			_, err = service.CreateClaim(worker, claimDTO("  airport taxi ", 32.50))
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(409))
			Expect(appErr.Details).To(HaveKeyWithValue("duplicate", true))
		})

		It("does not flag the same title at a different amount", func() {
			_, err := service.CreateClaim(worker, claimDTO("airport taxi", 32.50))
			Expect(err).ToNot(HaveOccurred())

			_, err = service.CreateClaim(worker, claimDTO("airport taxi", 28.00))
			Expect(err).ToNot(HaveOccurred())
		})
	})

	Describe("approval flow", func() {
		submit := func(owner auth.Identity, id int64) {
			_, err := service.Submit(owner, id)
			Expect(err).ToNot(HaveOccurred())
		}

		It("lets the manager approve a submitted claim", func() {
			claim, err := service.CreateClaim(worker, claimDTO("conference ticket", 40))
			Expect(err).ToNot(HaveOccurred())
			submit(worker, claim.ID)

			approved, err := service.Approve(manager, claim.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(approved.Status).To(Equal(workflow.StatusApproved))
			Expect(*approved.ApproverID).To(Equal(manager.EmployeeID))
		})

		It("requires a reason to reject", func() {
			claim, err := service.CreateClaim(worker, claimDTO("conference ticket", 40))
			Expect(err).ToNot(HaveOccurred())
			submit(worker, claim.ID)

			_, err = service.Reject(manager, claim.ID, expense.RejectClaimDTO{})
			Expect(err).To(HaveOccurred())

			rejected, err := service.Reject(manager, claim.ID, expense.RejectClaimDTO{Reason: "personal expense"})
			Expect(err).ToNot(HaveOccurred())
			Expect(rejected.Status).To(Equal(workflow.StatusRejected))
		})

		It("clears rejection metadata on resubmission", func() {
			claim, err := service.CreateClaim(worker, claimDTO("conference ticket", 40))
			Expect(err).ToNot(HaveOccurred())
			submit(worker, claim.ID)
			_, err = service.Reject(manager, claim.ID, expense.RejectClaimDTO{Reason: "redo"})
			Expect(err).ToNot(HaveOccurred())

			resubmitted, err := service.Submit(worker, claim.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(resubmitted.Status).To(Equal(workflow.StatusSubmitted))
			Expect(resubmitted.RejectionReason).To(BeNil())
		})

		It("refuses decisions from an unrelated manager", func() {
			claim, err := service.CreateClaim(worker, claimDTO("conference ticket", 40))
			Expect(err).ToNot(HaveOccurred())
			submit(worker, claim.ID)

			outsider := auth.Identity{EmployeeID: 99, TenantID: tenantID, Role: auth.RoleManager}
			_, err = service.Approve(outsider, claim.ID)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(403))
		})
	})

	Describe("PendingForManager", func() {
		It("summarizes the pending queue by category", func() {
			claim, err := service.CreateClaim(worker, claimDTO("airport taxi", 32.50))
			Expect(err).ToNot(HaveOccurred())
			_, err = service.Submit(worker, claim.ID)
			Expect(err).ToNot(HaveOccurred())

			page, err := service.PendingForManager(manager, internal.PageQuery{Page: 1, Limit: 20})
			Expect(err).ToNot(HaveOccurred())
			Expect(page.Claims).To(HaveLen(1))
			Expect(page.Summary.ClaimCount).To(Equal(int64(1)))
			Expect(page.Summary.TotalAmount.Equal(decimal.NewFromFloat(32.50))).To(BeTrue())
			Expect(page.Summary.ByCategory).To(HaveKey(string(expense.CategoryTravel)))
		})

		It("returns an empty page for a manager with no reports", func() {
			lonely := auth.Identity{EmployeeID: 77, TenantID: tenantID, Role: auth.RoleManager}
			page, err := service.PendingForManager(lonely, internal.PageQuery{Page: 1, Limit: 20})
			Expect(err).ToNot(HaveOccurred())
			Expect(page.Claims).To(BeEmpty())
			Expect(page.Summary.ClaimCount).To(BeZero())
		})
	})

	Describe("DeleteClaim", func() {
		It("deletes a draft", func() {
			claim, err := service.CreateClaim(worker, claimDTO("airport taxi", 32.50))
			Expect(err).ToNot(HaveOccurred())
			Expect(service.DeleteClaim(worker, claim.ID)).To(Succeed())
		})

		It("refuses to delete a submitted claim", func() {
			claim, err := service.CreateClaim(worker, claimDTO("airport taxi", 32.50))
			Expect(err).ToNot(HaveOccurred())
			_, err = service.Submit(worker, claim.ID)
			Expect(err).ToNot(HaveOccurred())

			err = service.DeleteClaim(worker, claim.ID)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(409))
		})
	})
})
