package leave

import (
	"errors"
	"log/slog"

	"github.com/workstack/workforce-management/internal"
)

// BalanceRepository is the data access the ledger needs. Get returns
// internal.ErrRecordNotFound when no row exists yet for the key.
type BalanceRepository interface {
	Get(tenantID, employeeID int64, t Type, year int) (*Balance, error)
	Create(b *Balance) error
	Update(b *Balance) error
	ListByEmployee(tenantID, employeeID int64, year int) ([]*Balance, error)
}

// Ledger tracks per-employee, per-type, per-year leave balances. A year's
// row is seeded from the org policy defaults at first access. Reserve and
// Release compute the adjusted row but do not persist it; the caller stores
// it in the same transaction as the request's status change.
type Ledger struct {
	balances BalanceRepository
	logger   *slog.Logger
}

func NewLedger(balances BalanceRepository, logger *slog.Logger) *Ledger {
	return &Ledger{balances: balances, logger: logger}
}

// GetBalance returns the balance row for the key, seeding it from the org
// default on first access.
func (l *Ledger) GetBalance(tenantID, employeeID int64, t Type, year int) (*Balance, error) {
	balance, err := l.balances.Get(tenantID, employeeID, t, year)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, internal.ErrRecordNotFound) {
		return nil, internal.NewInternalError("failed to load leave balance", err)
	}

	allocation := DefaultAllocation(t)
	balance = &Balance{
		TenantID:      tenantID,
		EmployeeID:    employeeID,
		Type:          t,
		Year:          year,
		AllocatedDays: allocation,
		RemainingDays: allocation,
	}
	if err := l.balances.Create(balance); err != nil {
		return nil, internal.NewInternalError("failed to seed leave balance", err)
	}
	l.logger.Info("leave balance seeded",
		"employee_id", employeeID, "type", t, "year", year, "days", allocation)
	return balance, nil
}

// Balances returns every type's balance for the employee and year, seeding
// the missing ones.
func (l *Ledger) Balances(tenantID, employeeID int64, year int) ([]*Balance, error) {
	out := make([]*Balance, 0, len(AllTypes()))
	for _, t := range AllTypes() {
		balance, err := l.GetBalance(tenantID, employeeID, t, year)
		if err != nil {
			return nil, err
		}
		out = append(out, balance)
	}
	return out, nil
}

// Reserve debits the requested days and returns the adjusted row.
// Insufficient balance is a business error carrying the remaining days, not
// a fatal one. UNPAID leave carries no allocation and reserves nothing.
func (l *Ledger) Reserve(tenantID, employeeID int64, t Type, year, days int) (*Balance, error) {
	if t == TypeUnpaid {
		return nil, nil
	}
	balance, err := l.GetBalance(tenantID, employeeID, t, year)
	if err != nil {
		return nil, err
	}
	if balance.RemainingDays < days {
		return nil, internal.NewValidationError("insufficient leave balance", internal.ErrCodeInsufficientBalance).
			WithDetails(map[string]interface{}{
				"type":           t,
				"remaining_days": balance.RemainingDays,
				"requested_days": days,
			})
	}
	balance.RemainingDays -= days
	return balance, nil
}

// Release credits back previously reserved days and returns the adjusted
// row. The caller guards it with the request's debited flag so a never-
// reserved request cannot inflate the balance.
func (l *Ledger) Release(tenantID, employeeID int64, t Type, year, days int) (*Balance, error) {
	if t == TypeUnpaid {
		return nil, nil
	}
	balance, err := l.GetBalance(tenantID, employeeID, t, year)
	if err != nil {
		return nil, err
	}
	balance.RemainingDays += days
	return balance, nil
}

// ResetToOrgDefault overwrites the employee's balances with the org policy
// defaults. It runs for the given year and the next so requests spanning
// New Year are covered, and it is idempotent: a second call is a no-op with
// the same resulting balances.
func (l *Ledger) ResetToOrgDefault(tenantID, employeeID int64, year int) ([]BalanceAdjustment, error) {
	var adjustments []BalanceAdjustment
	for _, y := range []int{year, year + 1} {
		for _, t := range AllTypes() {
			balance, err := l.GetBalance(tenantID, employeeID, t, y)
			if err != nil {
				return nil, err
			}
			allocation := DefaultAllocation(t)
			adjustments = append(adjustments, BalanceAdjustment{
				Type:         t,
				Year:         y,
				PreviousDays: balance.RemainingDays,
				NewDays:      allocation,
			})
			if balance.RemainingDays == allocation && balance.AllocatedDays == allocation {
				continue
			}
			balance.AllocatedDays = allocation
			balance.RemainingDays = allocation
			if err := l.balances.Update(balance); err != nil {
				return nil, internal.NewInternalError("failed to reset leave balance", err)
			}
		}
	}
	l.logger.Info("leave balances reset to org default",
		"employee_id", employeeID, "year", year)
	return adjustments, nil
}
