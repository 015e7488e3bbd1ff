package report

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/workstack/workforce-management/internal/workflow"
)

// LeaveRecord is the flattened row the aggregator consumes: one decided or
// pending leave request joined with its owner's name and department.
type LeaveRecord struct {
	OwnerID     int64
	OwnerName   string
	Department  string
	Type        string
	WorkingDays int
	StartDate   time.Time
	Status      workflow.Status
	SubmittedAt *time.Time
	DecidedAt   *time.Time
}

// ExpenseRecord is the flattened claim row for expense reporting.
type ExpenseRecord struct {
	OwnerID     int64
	Department  string
	Category    string
	Amount      decimal.Decimal
	ExpenseDate time.Time
	Status      workflow.Status
	SubmittedAt *time.Time
	DecidedAt   *time.Time
}

// StatusBreakdown counts records per outcome. The approval rate is
// approved/(approved+rejected) as a percentage; with no decided records it
// is zero, not NaN.
type StatusBreakdown struct {
	Approved     int64   `json:"approved"`
	Rejected     int64   `json:"rejected"`
	Pending      int64   `json:"pending"`
	ApprovalRate float64 `json:"approval_rate"`
}

// EmployeeUtilization is days taken against the year's total allocation.
type EmployeeUtilization struct {
	EmployeeID     int64   `json:"employee_id"`
	Name           string  `json:"name"`
	Department     string  `json:"department"`
	DaysTaken      int64   `json:"days_taken"`
	AllocatedDays  int64   `json:"allocated_days"`
	UtilizationPct float64 `json:"utilization_pct"`
}

// LeaveReport is the full leave aggregation for a tenant and year.
type LeaveReport struct {
	Year              int                   `json:"year"`
	Breakdown         StatusBreakdown       `json:"breakdown"`
	DaysByType        map[string]int64      `json:"days_by_type"`
	DaysByMonth       map[string]int64      `json:"days_by_month"`
	DaysByDepartment  map[string]int64      `json:"days_by_department"`
	AvgTurnaroundDays float64               `json:"avg_turnaround_days"`
	Utilization       []EmployeeUtilization `json:"utilization"`
}

// ExpenseReport is the claim aggregation for a tenant and year.
type ExpenseReport struct {
	Year              int                        `json:"year"`
	Breakdown         StatusBreakdown            `json:"breakdown"`
	AmountByCategory  map[string]decimal.Decimal `json:"amount_by_category"`
	AmountByMonth     map[string]decimal.Decimal `json:"amount_by_month"`
	ApprovedTotal     decimal.Decimal            `json:"approved_total"`
	AvgTurnaroundDays float64                    `json:"avg_turnaround_days"`
}

// Round1 rounds to one decimal place, the precision used throughout the
// reports.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func monthKey(t time.Time) string {
	return t.Format("2006-01")
}

func breakdown(statuses []workflow.Status) StatusBreakdown {
	var b StatusBreakdown
	for _, s := range statuses {
		switch s {
		case workflow.StatusApproved:
			b.Approved++
		case workflow.StatusRejected:
			b.Rejected++
		case workflow.StatusSubmitted:
			b.Pending++
		}
	}
	if decided := b.Approved + b.Rejected; decided > 0 {
		b.ApprovalRate = Round1(float64(b.Approved) / float64(decided) * 100)
	}
	return b
}

func avgTurnaroundDays(submitted, decided []*time.Time) float64 {
	var total float64
	var n int
	for i := range submitted {
		if submitted[i] == nil || decided[i] == nil {
			continue
		}
		total += decided[i].Sub(*submitted[i]).Hours() / 24
		n++
	}
	if n == 0 {
		return 0
	}
	return Round1(total / float64(n))
}

// BuildLeaveReport aggregates leave records. Working days are only summed
// into the dimensional views for APPROVED requests; the breakdown counts
// every status. Allocations maps employee to total allocated days for the
// year and drives utilization.
func BuildLeaveReport(year int, records []LeaveRecord, allocations map[int64]int64) LeaveReport {
	report := LeaveReport{
		Year:             year,
		DaysByType:       map[string]int64{},
		DaysByMonth:      map[string]int64{},
		DaysByDepartment: map[string]int64{},
		Utilization:      []EmployeeUtilization{},
	}

	statuses := make([]workflow.Status, 0, len(records))
	submitted := make([]*time.Time, 0, len(records))
	decided := make([]*time.Time, 0, len(records))
	taken := map[int64]int64{}
	names := map[int64]string{}
	departments := map[int64]string{}

	for _, rec := range records {
		statuses = append(statuses, rec.Status)
		names[rec.OwnerID] = rec.OwnerName
		departments[rec.OwnerID] = rec.Department
		if rec.Status == workflow.StatusApproved {
			submitted = append(submitted, rec.SubmittedAt)
			decided = append(decided, rec.DecidedAt)
			days := int64(rec.WorkingDays)
			report.DaysByType[rec.Type] += days
			report.DaysByMonth[monthKey(rec.StartDate)] += days
			report.DaysByDepartment[rec.Department] += days
			taken[rec.OwnerID] += days
		}
	}

	report.Breakdown = breakdown(statuses)
	report.AvgTurnaroundDays = avgTurnaroundDays(submitted, decided)

	for employeeID, allocation := range allocations {
		util := EmployeeUtilization{
			EmployeeID:    employeeID,
			Name:          names[employeeID],
			Department:    departments[employeeID],
			DaysTaken:     taken[employeeID],
			AllocatedDays: allocation,
		}
		if allocation > 0 {
			util.UtilizationPct = Round1(float64(util.DaysTaken) / float64(allocation) * 100)
		}
		report.Utilization = append(report.Utilization, util)
	}
	sortUtilization(report.Utilization)
	return report
}

// BuildExpenseReport aggregates claim records; amounts are summed into the
// dimensional views for APPROVED claims only.
func BuildExpenseReport(year int, records []ExpenseRecord) ExpenseReport {
	report := ExpenseReport{
		Year:             year,
		AmountByCategory: map[string]decimal.Decimal{},
		AmountByMonth:    map[string]decimal.Decimal{},
		ApprovedTotal:    decimal.Zero,
	}

	statuses := make([]workflow.Status, 0, len(records))
	submitted := make([]*time.Time, 0, len(records))
	decided := make([]*time.Time, 0, len(records))

	for _, rec := range records {
		statuses = append(statuses, rec.Status)
		if rec.Status == workflow.StatusApproved {
			submitted = append(submitted, rec.SubmittedAt)
			decided = append(decided, rec.DecidedAt)
			report.ApprovedTotal = report.ApprovedTotal.Add(rec.Amount)
			key := monthKey(rec.ExpenseDate)
			report.AmountByCategory[rec.Category] = report.AmountByCategory[rec.Category].Add(rec.Amount)
			report.AmountByMonth[key] = report.AmountByMonth[key].Add(rec.Amount)
		}
	}

	report.Breakdown = breakdown(statuses)
	report.AvgTurnaroundDays = avgTurnaroundDays(submitted, decided)
	return report
}

func sortUtilization(utils []EmployeeUtilization) {
	sort.Slice(utils, func(i, j int) bool {
		return utils[i].EmployeeID < utils[j].EmployeeID
	})
}
