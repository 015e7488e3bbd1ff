package timesheet_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/workstack/workforce-management/internal/auth"
	"github.com/workstack/workforce-management/internal/core/events"
	"github.com/workstack/workforce-management/internal/employee"
	"github.com/workstack/workforce-management/internal/timesheet"
	timesheetPostgres "github.com/workstack/workforce-management/internal/timesheet/postgres"
	"github.com/workstack/workforce-management/internal/workflow"
)

var _ = Describe("Timesheet Handler Integration", func() {
	var (
		db        *gorm.DB
		repo      timesheet.Repository
		directory *mockDirectory
		handler   *timesheet.Handler

		manager auth.Identity
	)

	const tenantID = int64(1)

	pendingRequest := func(query string, actor auth.Identity) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/timesheets/pending"+query, nil)
		req = req.WithContext(auth.ContextWithIdentity(req.Context(), &actor))
		w := httptest.NewRecorder()
		handler.Pending(w, req)
		return w
	}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&timesheet.Entry{})
		Expect(err).NotTo(HaveOccurred())

		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = timesheetPostgres.NewTimesheetRepository(db)
		directory = newMockDirectory()
		service := timesheet.NewService(repo, directory, events.NewBus(slogger), slogger)
		handler = timesheet.NewHandler(service, 100)

		managerID := int64(10)
		manager = auth.Identity{EmployeeID: managerID, TenantID: tenantID, Role: auth.RoleManager}
		directory.employees[managerID] = &employee.Employee{ID: managerID, TenantID: tenantID, Role: "MANAGER"}
		directory.employees[20] = &employee.Employee{ID: 20, TenantID: tenantID, ManagerID: &managerID, Role: "EMPLOYEE"}
		directory.reports[managerID] = []int64{20}

		submittedAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
		entries := []*timesheet.Entry{
			{
				TenantID: tenantID, OwnerID: 20,
				WorkDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
				Hours:    8, Billable: true,
				Description: "sprint feature work",
				Status:      workflow.StatusSubmitted,
				SubmittedAt: &submittedAt,
			},
			{
				TenantID: tenantID, OwnerID: 20,
				WorkDate: time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
				Hours: 2, Billable: false,
				Description: "team standups",
				Status:      workflow.StatusSubmitted,
				SubmittedAt: &submittedAt,
			},
		}
		for _, e := range entries {
			Expect(repo.Create(e)).To(Succeed())
		}
	})

	It("returns the pending page with the team summary", func() {
		w := pendingRequest("", manager)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))

		var page timesheet.PendingPage
		Expect(json.NewDecoder(w.Body).Decode(&page)).To(Succeed())
		Expect(page.Entries).To(HaveLen(2))
		Expect(page.Total).To(Equal(int64(2)))
		Expect(page.Summary.EntryCount).To(Equal(int64(2)))
		Expect(page.Summary.TotalHours).To(Equal(10.0))
		Expect(page.Summary.BillableHours).To(Equal(8.0))
	})

	It("rejects page below 1 with a field-level validation body", func() {
		w := pendingRequest("?page=0", manager)

		Expect(w.Code).To(Equal(http.StatusBadRequest))

		var body struct {
			Error struct {
				Type    string `json:"type"`
				Code    string `json:"code"`
				Message string `json:"message"`
				Details struct {
					Errors []struct {
						Field string `json:"field"`
						Code  string `json:"code"`
					} `json:"errors"`
				} `json:"details"`
			} `json:"error"`
		}
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		Expect(body.Error.Code).To(Equal("VALIDATION_FAILED"))
		Expect(body.Error.Details.Errors).To(HaveLen(1))
		Expect(body.Error.Details.Errors[0].Field).To(Equal("page"))
		Expect(body.Error.Details.Errors[0].Code).To(Equal("INVALID_PAGING"))
	})

	It("rejects limit above the configured maximum", func() {
		w := pendingRequest("?limit=101", manager)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("rejects limit below 1", func() {
		w := pendingRequest("?limit=0", manager)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("accepts the maximum limit", func() {
		w := pendingRequest("?page=1&limit=100", manager)
		Expect(w.Code).To(Equal(http.StatusOK))
	})

	It("answers an empty page for a manager with no reports", func() {
		lone := auth.Identity{EmployeeID: 30, TenantID: tenantID, Role: auth.RoleManager}
		directory.employees[30] = &employee.Employee{ID: 30, TenantID: tenantID, Role: "MANAGER"}

		w := pendingRequest("", lone)

		Expect(w.Code).To(Equal(http.StatusOK))
		var page timesheet.PendingPage
		Expect(json.NewDecoder(w.Body).Decode(&page)).To(Succeed())
		Expect(page.Entries).To(BeEmpty())
		Expect(page.Total).To(BeZero())
		Expect(page.Summary.EntryCount).To(BeZero())
	})

	It("answers 401 when no identity is attached", func() {
		req := httptest.NewRequest(http.MethodGet, "/timesheets/pending", nil)
		w := httptest.NewRecorder()
		handler.Pending(w, req)
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})
})
