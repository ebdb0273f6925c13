package application

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b2b-portal/opscenter/services/command-center/internal/config"
	apperrors "github.com/b2b-portal/opscenter/shared/pkg/errors"
)

func queryPolicy() *config.Policy {
	policy := config.DefaultPolicy()
	policy.ATP.IncludedWarehouses = []string{"MERKEZ", "DEPO2"}
	return policy
}

func TestSnapshotQuery_Normalize_Defaults(t *testing.T) {
	q, err := SnapshotQuery{}.Normalize(queryPolicy())

	require.NoError(t, err)
	assert.Equal(t, []string{}, q.Series)
	assert.Equal(t, []string{"DEPO2", "MERKEZ"}, q.Warehouses)
	assert.Equal(t, 50, q.OrderLimit)
	assert.Equal(t, 20, q.CustomerLimit)
}

func TestSnapshotQuery_Normalize_DeduplicatesAndSorts(t *testing.T) {
	q, err := SnapshotQuery{
		Series:        []string{"B", " A", "B"},
		Warehouses:    []string{"MERKEZ"},
		OrderLimit:    500,
		CustomerLimit: 1,
	}.Normalize(queryPolicy())

	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, q.Series)
	assert.Equal(t, []string{"MERKEZ"}, q.Warehouses)
	assert.Equal(t, 500, q.OrderLimit)
	assert.Equal(t, 1, q.CustomerLimit)
}

func TestSnapshotQuery_Normalize_Rejects(t *testing.T) {
	tooMany := make([]string, 21)
	for i := range tooMany {
		tooMany[i] = fmt.Sprintf("S%02d", i)
	}

	tests := []struct {
		name  string
		query SnapshotQuery
		field string
	}{
		{name: "malformed series", query: SnapshotQuery{Series: []string{"SIP;DROP"}}, field: "series"},
		{name: "series too long", query: SnapshotQuery{Series: []string{"ABCDEFGHIJKLMNOPQ"}}, field: "series"},
		{name: "empty series token", query: SnapshotQuery{Series: []string{"A", " "}}, field: "series"},
		{name: "too many series", query: SnapshotQuery{Series: tooMany}, field: "series"},
		{name: "excluded warehouse", query: SnapshotQuery{Warehouses: []string{"DEPO9"}}, field: "warehouse"},
		{name: "order limit above max", query: SnapshotQuery{OrderLimit: 501}, field: "orderLimit"},
		{name: "negative order limit", query: SnapshotQuery{OrderLimit: -1}, field: "orderLimit"},
		{name: "customer limit above max", query: SnapshotQuery{CustomerLimit: 201}, field: "customerLimit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.query.Normalize(queryPolicy())

			require.Error(t, err)
			appErr, ok := apperrors.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.CodeInvalidFilter, appErr.Code)
			assert.Contains(t, appErr.Details, tt.field)
		})
	}
}

func TestSnapshotQuery_CacheKey_IgnoresInputOrder(t *testing.T) {
	policy := queryPolicy()

	a, err := SnapshotQuery{Series: []string{"B", "A"}, Warehouses: []string{"MERKEZ", "DEPO2"}}.Normalize(policy)
	require.NoError(t, err)
	b, err := SnapshotQuery{Series: []string{"A", "B", "A"}}.Normalize(policy)
	require.NoError(t, err)
	c, err := SnapshotQuery{Series: []string{"A"}}.Normalize(policy)
	require.NoError(t, err)

	assert.Equal(t, a.CacheKey(), b.CacheKey())
	assert.NotEqual(t, a.CacheKey(), c.CacheKey())
	assert.Equal(t, "series=A,B;warehouse=DEPO2,MERKEZ;orderLimit=50;customerLimit=20", a.CacheKey())
}

func TestSnapshotQuery_Normalize_FieldMessages(t *testing.T) {
	tooMany := make([]string, 21)
	for i := range tooMany {
		tooMany[i] = fmt.Sprintf("S%02d", i)
	}

	_, err := SnapshotQuery{
		Series:        tooMany,
		Warehouses:    []string{"MERKEZ", "DEPO 9"},
		OrderLimit:    501,
		CustomerLimit: -5,
	}.Normalize(queryPolicy())

	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, map[string]string{
		"series":        "must contain at most 20 values",
		"warehouse":     "must contain only warehouse codes of letters, digits, '-' or '_'",
		"orderLimit":    "must be at most 500",
		"customerLimit": "must be at least 1",
	}, appErr.Details)
}
