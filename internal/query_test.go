package internal

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePageQueryBounds(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantErr bool
		code    ErrorCode
	}{
		{name: "defaults when empty", query: ""},
		{name: "page and limit in bounds", query: "page=2&limit=100"},
		{name: "limit at lower bound", query: "limit=1"},
		{name: "page zero", query: "page=0", wantErr: true, code: ErrCodeInvalidPaging},
		{name: "page negative", query: "page=-2", wantErr: true, code: ErrCodeInvalidPaging},
		{name: "page not a number", query: "page=abc", wantErr: true, code: ErrCodeInvalidPaging},
		{name: "limit zero", query: "limit=0", wantErr: true, code: ErrCodeInvalidPaging},
		{name: "limit above max", query: "limit=101", wantErr: true, code: ErrCodeInvalidPaging},
		{name: "malformed from", query: "from=03-01-2026", wantErr: true, code: ErrCodeInvalidDate},
		{name: "malformed to", query: "to=yesterday", wantErr: true, code: ErrCodeInvalidDate},
		{name: "from after to", query: "from=2026-04-01&to=2026-03-01", wantErr: true, code: ErrCodeInvalidDateRange},
		{name: "valid range", query: "from=2026-03-01&to=2026-03-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			q, err := ParsePageQuery(values, 100)
			if tt.wantErr {
				require.Error(t, err)
				appErr, ok := IsAppError(err)
				require.True(t, ok)
				assert.Equal(t, 400, appErr.StatusCode)
				fieldErrors, ok := appErr.Details.(ValidationErrors)
				require.True(t, ok)
				require.Len(t, fieldErrors.Errors, 1)
				assert.Equal(t, string(tt.code), fieldErrors.Errors[0].Code)
				return
			}
			require.NoError(t, err)
			assert.GreaterOrEqual(t, q.Page, 1)
			assert.GreaterOrEqual(t, q.Limit, 1)
			assert.LessOrEqual(t, q.Limit, 100)
		})
	}
}

func TestParsePageQueryValues(t *testing.T) {
	values, err := url.ParseQuery("page=3&limit=25&from=2026-03-01&to=2026-03-31&search=taxi")
	require.NoError(t, err)

	q, err := ParsePageQuery(values, 100)
	require.NoError(t, err)
	assert.Equal(t, 3, q.Page)
	assert.Equal(t, 25, q.Limit)
	assert.Equal(t, 50, q.Offset())
	assert.Equal(t, "taxi", q.Search)
	require.NotNil(t, q.From)
	require.NotNil(t, q.To)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *q.From)
	assert.Equal(t, time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC), *q.To)
}
