package expense

import (
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/workstack/workforce-management/internal"
)

// SimilarClaimFinder is the repository slice the duplicate guard needs.
type SimilarClaimFinder interface {
	CountSimilar(tenantID, ownerID int64, normalizedTitle string, amount decimal.Decimal, createdAfter time.Time) (int64, error)
}

// DuplicateGuard flags near-duplicate submissions: same owner, same
// case-normalized title, same amount, created within the window. The window
// anchors on record-creation time, not the expense date, so two claims for
// the same recurring expense a month apart are not flagged.
type DuplicateGuard struct {
	finder SimilarClaimFinder
	window time.Duration
	logger *slog.Logger
}

func NewDuplicateGuard(finder SimilarClaimFinder, window time.Duration, logger *slog.Logger) *DuplicateGuard {
	if window <= 0 {
		window = time.Hour
	}
	return &DuplicateGuard{finder: finder, window: window, logger: logger}
}

// Check returns a conflict error with `duplicate: true` details when a
// similar claim already exists inside the window.
func (g *DuplicateGuard) Check(tenantID, ownerID int64, title string, amount decimal.Decimal) error {
	since := time.Now().Add(-g.window)
	count, err := g.finder.CountSimilar(tenantID, ownerID, NormalizeTitle(title), amount, since)
	if err != nil {
		g.logger.Error("duplicate check failed", "error", err, "owner_id", ownerID)
		return internal.NewInternalError("duplicate check failed", err)
	}
	if count > 0 {
		g.logger.Warn("duplicate expense claim refused",
			"owner_id", ownerID,
			"title", title,
			"amount", amount.String())
		return internal.NewConflictError("A similar expense claim was submitted recently", internal.ErrCodeDuplicateClaim).
			WithDetails(map[string]interface{}{"duplicate": true})
	}
	return nil
}
