package leave_test

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/workstack/workforce-management/internal"
	"github.com/workstack/workforce-management/internal/auth"
	"github.com/workstack/workforce-management/internal/calendar"
	"github.com/workstack/workforce-management/internal/core/events"
	"github.com/workstack/workforce-management/internal/employee"
	"github.com/workstack/workforce-management/internal/leave"
	"github.com/workstack/workforce-management/internal/workflow"
)

func TestLeave(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Leave Suite")
}

type mockBalanceRepo struct {
	balances map[string]*leave.Balance
	nextID   int64
}

func newMockBalanceRepo() *mockBalanceRepo {
	return &mockBalanceRepo{balances: make(map[string]*leave.Balance), nextID: 1}
}

func balanceKey(tenantID, employeeID int64, t leave.Type, year int) string {
	return fmt.Sprintf("%d/%d/%s/%d", tenantID, employeeID, t, year)
}

func (m *mockBalanceRepo) Get(tenantID, employeeID int64, t leave.Type, year int) (*leave.Balance, error) {
	b, ok := m.balances[balanceKey(tenantID, employeeID, t, year)]
	if !ok {
		return nil, internal.ErrRecordNotFound
	}
	clone := *b
	return &clone, nil
}

func (m *mockBalanceRepo) Create(b *leave.Balance) error {
	b.ID = m.nextID
	m.nextID++
	clone := *b
	m.balances[balanceKey(b.TenantID, b.EmployeeID, b.Type, b.Year)] = &clone
	return nil
}

func (m *mockBalanceRepo) Update(b *leave.Balance) error {
	clone := *b
	m.balances[balanceKey(b.TenantID, b.EmployeeID, b.Type, b.Year)] = &clone
	return nil
}

func (m *mockBalanceRepo) ListByEmployee(tenantID, employeeID int64, year int) ([]*leave.Balance, error) {
	var out []*leave.Balance
	for _, b := range m.balances {
		if b.TenantID == tenantID && b.EmployeeID == employeeID && b.Year == year {
			out = append(out, b)
		}
	}
	return out, nil
}

type mockRepository struct {
	requests map[int64]*leave.Request
	balances *mockBalanceRepo
	nextID   int64
}

func newMockRepository(balances *mockBalanceRepo) *mockRepository {
	return &mockRepository{requests: make(map[int64]*leave.Request), balances: balances, nextID: 1}
}

func (m *mockRepository) Create(r *leave.Request) error {
	r.ID = m.nextID
	m.nextID++
	m.requests[r.ID] = r
	return nil
}

func (m *mockRepository) GetByID(tenantID, id int64) (*leave.Request, error) {
	r, ok := m.requests[id]
	if !ok || r.TenantID != tenantID {
		return nil, errors.New("record not found")
	}
	clone := *r
	return &clone, nil
}

func (m *mockRepository) ListByOwner(tenantID, ownerID int64, limit, offset int) ([]*leave.Request, error) {
	var out []*leave.Request
	for _, r := range m.requests {
		if r.TenantID == tenantID && r.OwnerID == ownerID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockRepository) Update(r *leave.Request) error {
	m.requests[r.ID] = r
	return nil
}

func (m *mockRepository) UpdateWithBalance(r *leave.Request, b *leave.Balance) error {
	m.requests[r.ID] = r
	if b != nil {
		return m.balances.Update(b)
	}
	return nil
}

func (m *mockRepository) Delete(tenantID, id int64) error {
	delete(m.requests, id)
	return nil
}

func (m *mockRepository) PendingByOwners(tenantID int64, ownerIDs []int64, q internal.PageQuery) ([]*leave.Request, int64, error) {
	var out []*leave.Request
	for _, r := range m.requests {
		if r.TenantID == tenantID && r.Status == workflow.StatusSubmitted && (ownerIDs == nil || containsID(ownerIDs, r.OwnerID)) {
			out = append(out, r)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockRepository) SummarizePending(tenantID int64, ownerIDs []int64, q internal.PageQuery) (leave.LeaveSummary, error) {
	summary := leave.LeaveSummary{ByType: map[string]int64{}}
	for _, r := range m.requests {
		if r.TenantID == tenantID && r.Status == workflow.StatusSubmitted && (ownerIDs == nil || containsID(ownerIDs, r.OwnerID)) {
			summary.RequestCount++
			summary.TotalWorkingDays += int64(r.WorkingDays)
			summary.ByType[string(r.Type)] += int64(r.WorkingDays)
		}
	}
	return summary, nil
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

// fakeCalendar applies the real counting logic against a fixed holiday set.
type fakeCalendar struct {
	holidays calendar.HolidaySet
}

func (f *fakeCalendar) WorkingDays(tenantID int64, start, end time.Time) (int, error) {
	return calendar.CountWorkingDays(start, end, f.holidays), nil
}

func (f *fakeCalendar) ClassifyRange(tenantID int64, start, end time.Time) ([]calendar.DayClassification, error) {
	return calendar.ClassifyRange(start, end, f.holidays), nil
}

var _ = Describe("LeaveService", func() {
	var (
		service     *leave.Service
		repo        *mockRepository
		balanceRepo *mockBalanceRepo
		ledger      *leave.Ledger
		directory   *mockDirectory

		manager auth.Identity
		worker  auth.Identity
	)

	const tenantID = int64(1)

	// 2026-03-02 is a Monday
	monday := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	friday := time.Date(2026, time.March, 6, 0, 0, 0, 0, time.UTC)
	saturday := time.Date(2026, time.March, 7, 0, 0, 0, 0, time.UTC)
	sunday := time.Date(2026, time.March, 8, 0, 0, 0, 0, time.UTC)

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		balanceRepo = newMockBalanceRepo()
		repo = newMockRepository(balanceRepo)
		directory = newMockDirectory()
		ledger = leave.NewLedger(balanceRepo, logger)
		bus := events.NewBus(logger)
		service = leave.NewService(repo, directory, &fakeCalendar{holidays: calendar.HolidaySet{}}, ledger, bus, logger)

		managerID := int64(10)
		manager = auth.Identity{EmployeeID: managerID, TenantID: tenantID, Role: auth.RoleManager}
		worker = auth.Identity{EmployeeID: 20, TenantID: tenantID, Role: auth.RoleEmployee}

		directory.employees[10] = &employee.Employee{ID: 10, TenantID: tenantID, Name: "Mara"}
		directory.employees[20] = &employee.Employee{ID: 20, TenantID: tenantID, Name: "Ken", ManagerID: &managerID}
		directory.reports[10] = []int64{20}
	})

	createRequest := func(owner auth.Identity, t leave.Type, start, end time.Time) *leave.Request {
		request, err := service.CreateRequest(owner, leave.CreateRequestDTO{
			Type:      t,
			StartDate: start,
			EndDate:   end,
			Reason:    "family visit",
		})
		Expect(err).ToNot(HaveOccurred())
		return request
	}

	submitted := func(owner auth.Identity, t leave.Type, start, end time.Time) *leave.Request {
		request := createRequest(owner, t, start, end)
		request, err := service.Submit(owner, request.ID)
		Expect(err).ToNot(HaveOccurred())
		return request
	}

	Describe("CreateRequest", func() {
		It("computes working days for a full work week", func() {
			request := createRequest(worker, leave.TypeAnnual, monday, friday)
			Expect(request.WorkingDays).To(Equal(5))
			Expect(request.Status).To(Equal(workflow.StatusDraft))
		})

		It("rejects a weekend-only range", func() {
			_, err := service.CreateRequest(worker, leave.CreateRequestDTO{
				Type:      leave.TypeAnnual,
				StartDate: saturday,
				EndDate:   sunday,
				Reason:    "family visit",
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
			Expect(appErr.Code).To(Equal(internal.ErrCodeNoWorkingDays))
		})

		It("rejects an inverted range", func() {
			_, err := service.CreateRequest(worker, leave.CreateRequestDTO{
				Type:      leave.TypeAnnual,
				StartDate: friday,
				EndDate:   monday,
				Reason:    "family visit",
			})
			Expect(err).To(HaveOccurred())
		})

		It("excludes holidays inside the range", func() {
			wednesday := time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC)
			logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
			holidays := calendar.NewHolidaySet([]time.Time{wednesday})
			service = leave.NewService(repo, directory, &fakeCalendar{holidays: holidays}, ledger, events.NewBus(logger), logger)

			request := createRequest(worker, leave.TypeAnnual, monday, friday)
			Expect(request.WorkingDays).To(Equal(4))
		})
	})

	Describe("approval and the balance ledger", func() {
		It("debits the seeded balance on approval", func() {
			request := submitted(worker, leave.TypeAnnual, monday, friday)

			approved, err := service.Approve(manager, request.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(approved.Status).To(Equal(workflow.StatusApproved))
			Expect(approved.BalanceDebited).To(BeTrue())

			balance, err := ledger.GetBalance(tenantID, worker.EmployeeID, leave.TypeAnnual, 2026)
			Expect(err).ToNot(HaveOccurred())
			Expect(balance.RemainingDays).To(Equal(15))
		})

		It("refuses approval when the balance is too low", func() {
			Expect(balanceRepo.Create(&leave.Balance{
				TenantID: tenantID, EmployeeID: worker.EmployeeID,
				Type: leave.TypeAnnual, Year: 2026,
				AllocatedDays: 20, RemainingDays: 3,
			})).To(Succeed())

			request := submitted(worker, leave.TypeAnnual, monday, friday)

			_, err := service.Approve(manager, request.ID)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
			Expect(appErr.Code).To(Equal(internal.ErrCodeInsufficientBalance))
			Expect(appErr.Details).To(HaveKeyWithValue("remaining_days", 3))

			// the request stays SUBMITTED and the balance untouched
			unchanged, err := service.GetRequest(worker, request.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(unchanged.Status).To(Equal(workflow.StatusSubmitted))
		})

		It("reserves nothing for unpaid leave", func() {
			request := submitted(worker, leave.TypeUnpaid, monday, friday)

			approved, err := service.Approve(manager, request.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(approved.BalanceDebited).To(BeFalse())
		})

		It("requires a reason to reject", func() {
			request := submitted(worker, leave.TypeAnnual, monday, friday)

			_, err := service.Reject(manager, request.ID, leave.RejectRequestDTO{})
			Expect(err).To(HaveOccurred())

			rejected, err := service.Reject(manager, request.ID, leave.RejectRequestDTO{Reason: "quarter close"})
			Expect(err).ToNot(HaveOccurred())
			Expect(rejected.Status).To(Equal(workflow.StatusRejected))
		})

		It("leaves the balance alone when rejecting a never-debited request", func() {
			request := submitted(worker, leave.TypeAnnual, monday, friday)
			_, err := service.Reject(manager, request.ID, leave.RejectRequestDTO{Reason: "quarter close"})
			Expect(err).ToNot(HaveOccurred())

			balance, err := ledger.GetBalance(tenantID, worker.EmployeeID, leave.TypeAnnual, 2026)
			Expect(err).ToNot(HaveOccurred())
			Expect(balance.RemainingDays).To(Equal(20))
		})
	})

	Describe("Ledger", func() {
		It("round-trips reserve then release back to the prior balance", func() {
			before, err := ledger.GetBalance(tenantID, worker.EmployeeID, leave.TypeAnnual, 2026)
			Expect(err).ToNot(HaveOccurred())

			reserved, err := ledger.Reserve(tenantID, worker.EmployeeID, leave.TypeAnnual, 2026, 5)
			Expect(err).ToNot(HaveOccurred())
			Expect(balanceRepo.Update(reserved)).To(Succeed())

			released, err := ledger.Release(tenantID, worker.EmployeeID, leave.TypeAnnual, 2026, 5)
			Expect(err).ToNot(HaveOccurred())
			Expect(balanceRepo.Update(released)).To(Succeed())

			after, err := ledger.GetBalance(tenantID, worker.EmployeeID, leave.TypeAnnual, 2026)
			Expect(err).ToNot(HaveOccurred())
			Expect(after.RemainingDays).To(Equal(before.RemainingDays))
		})

		It("resets drifted balances for the year and the next, idempotently", func() {
			Expect(balanceRepo.Create(&leave.Balance{
				TenantID: tenantID, EmployeeID: worker.EmployeeID,
				Type: leave.TypeAnnual, Year: 2026,
				AllocatedDays: 20, RemainingDays: -3,
			})).To(Succeed())

			first, err := ledger.ResetToOrgDefault(tenantID, worker.EmployeeID, 2026)
			Expect(err).ToNot(HaveOccurred())
			// every type, both years
			Expect(first).To(HaveLen(len(leave.AllTypes()) * 2))

			var annual leave.BalanceAdjustment
			for _, adj := range first {
				if adj.Type == leave.TypeAnnual && adj.Year == 2026 {
					annual = adj
				}
			}
			Expect(annual.PreviousDays).To(Equal(-3))
			Expect(annual.NewDays).To(Equal(20))

			second, err := ledger.ResetToOrgDefault(tenantID, worker.EmployeeID, 2026)
			Expect(err).ToNot(HaveOccurred())
			for _, adj := range second {
				Expect(adj.PreviousDays).To(Equal(adj.NewDays))
			}
		})
	})

	Describe("ResetBalances", func() {
		It("is HR-only", func() {
			_, err := service.ResetBalances(manager, leave.ResetBalanceDTO{EmployeeID: worker.EmployeeID, Year: 2026})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(403))

			hr := auth.Identity{EmployeeID: 50, TenantID: tenantID, Role: auth.RoleHR}
			adjustments, err := service.ResetBalances(hr, leave.ResetBalanceDTO{EmployeeID: worker.EmployeeID, Year: 2026})
			Expect(err).ToNot(HaveOccurred())
			Expect(adjustments).ToNot(BeEmpty())
		})
	})

	Describe("PendingForManager", func() {
		It("summarizes pending requests by type", func() {
			submitted(worker, leave.TypeAnnual, monday, friday)

			page, err := service.PendingForManager(manager, internal.PageQuery{Page: 1, Limit: 20})
			Expect(err).ToNot(HaveOccurred())
			Expect(page.Requests).To(HaveLen(1))
			Expect(page.Summary.RequestCount).To(Equal(int64(1)))
			Expect(page.Summary.ByType).To(HaveKeyWithValue(string(leave.TypeAnnual), int64(5)))
		})
	})
})
