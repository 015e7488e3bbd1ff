package internal

import (
	"net/url"
	"strconv"
	"time"
)

// PageQuery is the parsed pending-approvals query string shared by the
// claim domains.
type PageQuery struct {
	Page   int
	Limit  int
	From   *time.Time
	To     *time.Time
	Search string
}

func (q PageQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// ParsePageQuery validates paging bounds strictly: page below 1 or limit
// outside [1, maxLimit] is a client error, not a silent clamp.
func ParsePageQuery(values url.Values, maxLimit int) (PageQuery, error) {
	q := PageQuery{Page: 1, Limit: 20}

	if pageStr := values.Get("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page < 1 {
			return q, NewValidationFieldError("page", "page must be a positive integer", ErrCodeInvalidPaging)
		}
		q.Page = page
	}

	if limitStr := values.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 || limit > maxLimit {
			return q, NewValidationFieldError("limit",
				"limit must be between 1 and "+strconv.Itoa(maxLimit), ErrCodeInvalidPaging)
		}
		q.Limit = limit
	}

	if fromStr := values.Get("from"); fromStr != "" {
		from, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			return q, NewValidationFieldError("from", "from must be a date in YYYY-MM-DD form", ErrCodeInvalidDate)
		}
		q.From = &from
	}

	if toStr := values.Get("to"); toStr != "" {
		to, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			return q, NewValidationFieldError("to", "to must be a date in YYYY-MM-DD form", ErrCodeInvalidDate)
		}
		q.To = &to
	}

	if q.From != nil && q.To != nil && q.From.After(*q.To) {
		return q, NewValidationFieldError("from", "from must not be after to", ErrCodeInvalidDateRange)
	}

	q.Search = values.Get("search")
	return q, nil
}
