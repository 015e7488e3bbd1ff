package postgres_test

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/workstack/workforce-management/internal"
	"github.com/workstack/workforce-management/internal/leave"
	leavePostgres "github.com/workstack/workforce-management/internal/leave/postgres"
	"github.com/workstack/workforce-management/internal/workflow"
)

func TestLeavePostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Leave Postgres Suite")
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func submitted(t time.Time) *time.Time { return &t }

var _ = Describe("Leave PostgreSQL Repository", func() {
	var (
		db       *gorm.DB
		repo     leave.Repository
		balances leave.BalanceRepository
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&leave.Request{}, &leave.Balance{})
		Expect(err).NotTo(HaveOccurred())

		repo = leavePostgres.NewLeaveRepository(db)
		balances = leavePostgres.NewBalanceRepository(db)
	})

	newRequest := func(owner int64, start, end time.Time, days int, status workflow.Status, reason string) *leave.Request {
		req := &leave.Request{
			TenantID:    1,
			OwnerID:     owner,
			Type:        leave.TypeAnnual,
			StartDate:   start,
			EndDate:     end,
			WorkingDays: days,
			Reason:      reason,
			Status:      status,
		}
		if status == workflow.StatusSubmitted {
			req.SubmittedAt = submitted(start.Add(-72 * time.Hour))
		}
		Expect(repo.Create(req)).To(Succeed())
		return req
	}

	Describe("UpdateWithBalance", func() {
		It("persists the request and the balance together", func() {
			req := newRequest(10, date(2026, 6, 1), date(2026, 6, 5), 5, workflow.StatusSubmitted, "summer break")
			Expect(balances.Create(&leave.Balance{
				TenantID: 1, EmployeeID: 10, Type: leave.TypeAnnual, Year: 2026,
				AllocatedDays: 20, RemainingDays: 20,
			})).To(Succeed())

			balance, err := balances.Get(1, 10, leave.TypeAnnual, 2026)
			Expect(err).NotTo(HaveOccurred())
			balance.RemainingDays -= req.WorkingDays

			req.Status = workflow.StatusApproved
			req.BalanceDebited = true
			Expect(repo.UpdateWithBalance(req, balance)).To(Succeed())

			reloaded, err := repo.GetByID(1, req.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(reloaded.Status).To(Equal(workflow.StatusApproved))
			Expect(reloaded.BalanceDebited).To(BeTrue())

			after, err := balances.Get(1, 10, leave.TypeAnnual, 2026)
			Expect(err).NotTo(HaveOccurred())
			Expect(after.RemainingDays).To(Equal(15))
		})

		It("updates only the request when no balance row is involved", func() {
			req := newRequest(10, date(2026, 6, 1), date(2026, 6, 5), 5, workflow.StatusSubmitted, "unpaid stretch")
			req.Status = workflow.StatusApproved
			Expect(repo.UpdateWithBalance(req, nil)).To(Succeed())

			reloaded, err := repo.GetByID(1, req.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(reloaded.Status).To(Equal(workflow.StatusApproved))
		})
	})

	Describe("PendingByOwners", func() {
		It("returns submitted requests oldest-first and scoped to the owners", func() {
			first := newRequest(10, date(2026, 3, 2), date(2026, 3, 6), 5, workflow.StatusSubmitted, "spring trip")
			second := newRequest(11, date(2026, 4, 6), date(2026, 4, 8), 3, workflow.StatusSubmitted, "moving house")
			second.SubmittedAt = submitted(first.SubmittedAt.Add(time.Hour))
			Expect(repo.Update(second)).To(Succeed())
			newRequest(12, date(2026, 3, 9), date(2026, 3, 10), 2, workflow.StatusSubmitted, "outside team")
			newRequest(10, date(2026, 5, 4), date(2026, 5, 5), 2, workflow.StatusDraft, "not submitted yet")

			requests, total, err := repo.PendingByOwners(1, []int64{10, 11}, internal.PageQuery{Page: 1, Limit: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(2)))
			Expect(requests).To(HaveLen(2))
			Expect(requests[0].ID).To(Equal(first.ID))
			Expect(requests[1].ID).To(Equal(second.ID))
		})

		It("matches requests whose range overlaps the filter window", func() {
			overlapping := newRequest(10, date(2026, 3, 30), date(2026, 4, 2), 4, workflow.StatusSubmitted, "straddles april")
			newRequest(10, date(2026, 5, 11), date(2026, 5, 12), 2, workflow.StatusSubmitted, "later in may")

			from := date(2026, 4, 1)
			to := date(2026, 4, 30)
			requests, total, err := repo.PendingByOwners(1, []int64{10}, internal.PageQuery{
				Page: 1, Limit: 10, From: &from, To: &to,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(1)))
			Expect(requests[0].ID).To(Equal(overlapping.ID))
		})

		It("lists tenant-wide when owners is nil", func() {
			newRequest(10, date(2026, 3, 2), date(2026, 3, 6), 5, workflow.StatusSubmitted, "one")
			newRequest(12, date(2026, 3, 9), date(2026, 3, 10), 2, workflow.StatusSubmitted, "two")

			_, total, err := repo.PendingByOwners(1, nil, internal.PageQuery{Page: 1, Limit: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(2)))
		})
	})

	Describe("SummarizePending", func() {
		It("totals working days per leave type", func() {
			newRequest(10, date(2026, 3, 2), date(2026, 3, 6), 5, workflow.StatusSubmitted, "annual one")
			newRequest(11, date(2026, 3, 9), date(2026, 3, 11), 3, workflow.StatusSubmitted, "annual two")
			sick := newRequest(10, date(2026, 3, 16), date(2026, 3, 17), 2, workflow.StatusSubmitted, "flu")
			sick.Type = leave.TypeSick
			Expect(repo.Update(sick)).To(Succeed())

			summary, err := repo.SummarizePending(1, nil, internal.PageQuery{Page: 1, Limit: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(summary.RequestCount).To(Equal(int64(3)))
			Expect(summary.TotalWorkingDays).To(Equal(int64(10)))
			Expect(summary.ByType).To(HaveKeyWithValue("ANNUAL", int64(8)))
			Expect(summary.ByType).To(HaveKeyWithValue("SICK", int64(2)))
		})
	})

	Describe("BalanceRepository", func() {
		It("maps a missing row to the shared sentinel", func() {
			_, err := balances.Get(1, 99, leave.TypeAnnual, 2026)
			Expect(err).To(Equal(internal.ErrRecordNotFound))
		})

		It("lists all types for an employee's year", func() {
			for _, t := range leave.AllTypes() {
				Expect(balances.Create(&leave.Balance{
					TenantID: 1, EmployeeID: 10, Type: t, Year: 2026,
					AllocatedDays: leave.DefaultAllocation(t), RemainingDays: leave.DefaultAllocation(t),
				})).To(Succeed())
			}

			rows, err := balances.ListByEmployee(1, 10, 2026)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(len(leave.AllTypes())))
		})
	})
})
