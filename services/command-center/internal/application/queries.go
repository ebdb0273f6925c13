package application

import (
	"fmt"
	"sort"
	"strings"

	"github.com/b2b-portal/opscenter/shared/pkg/errors"
	"github.com/b2b-portal/opscenter/shared/pkg/middleware"

	"github.com/b2b-portal/opscenter/services/command-center/internal/config"
)

// SnapshotQuery holds the filters and limits of one snapshot request. Zero
// limits take the configured defaults.
type SnapshotQuery struct {
	Series        []string
	Warehouses    []string
	OrderLimit    int
	CustomerLimit int
}

// snapshotQueryInput carries the static rules; configured maxima are checked
// with runtime tags in Normalize
type snapshotQueryInput struct {
	Series        []string `form:"series" validate:"dive,required,series_token"`
	Warehouses    []string `form:"warehouse" validate:"dive,required,warehouse_code"`
	OrderLimit    int      `form:"orderLimit" validate:"min=1"`
	CustomerLimit int      `form:"customerLimit" validate:"min=1"`
}

// Normalize validates the query and fills defaults. Series are deduplicated
// and sorted; an empty warehouse filter expands to every included warehouse.
func (q SnapshotQuery) Normalize(policy *config.Policy) (SnapshotQuery, error) {
	input := snapshotQueryInput{
		Series:        trimTokens(q.Series),
		Warehouses:    trimTokens(q.Warehouses),
		OrderLimit:    q.OrderLimit,
		CustomerLimit: q.CustomerLimit,
	}
	if input.OrderLimit == 0 {
		input.OrderLimit = policy.Query.DefaultOrderLimit
	}
	if input.CustomerLimit == 0 {
		input.CustomerLimit = policy.Query.DefaultCustomerLimit
	}

	fields, err := middleware.ValidateStruct(input)
	if err != nil {
		return SnapshotQuery{}, errors.ErrInternal("query validation failed").Wrap(err)
	}
	if fields == nil {
		fields = make(map[string]string)
	}

	series := dedupeSorted(input.Series)
	warehouses := dedupeSorted(input.Warehouses)

	bounds := []struct {
		field string
		value interface{}
		tag   string
	}{
		{"series", series, fmt.Sprintf("max=%d", policy.Query.MaxSeriesTokens)},
		{"orderLimit", input.OrderLimit, fmt.Sprintf("max=%d", policy.Query.MaxOrderLimit)},
		{"customerLimit", input.CustomerLimit, fmt.Sprintf("max=%d", policy.Query.MaxCustomerLimit)},
	}
	for _, b := range bounds {
		if _, failed := fields[b.field]; failed {
			continue
		}
		if msg := middleware.ValidateVar(b.value, b.tag); msg != "" {
			fields[b.field] = msg
		}
	}

	if _, failed := fields["warehouse"]; !failed {
		for _, w := range warehouses {
			if !policy.WarehouseIncluded(w) {
				fields["warehouse"] = fmt.Sprintf("warehouse %q is not an included warehouse", w)
				break
			}
		}
	}
	if len(warehouses) == 0 {
		warehouses = append([]string(nil), policy.ATP.IncludedWarehouses...)
		sort.Strings(warehouses)
	}

	if len(fields) > 0 {
		return SnapshotQuery{}, errors.ErrInvalidFilter("invalid filter parameters").WithDetails(fields)
	}

	return SnapshotQuery{
		Series:        series,
		Warehouses:    warehouses,
		OrderLimit:    input.OrderLimit,
		CustomerLimit: input.CustomerLimit,
	}, nil
}

// CacheKey identifies a normalized query
func (q SnapshotQuery) CacheKey() string {
	return fmt.Sprintf("series=%s;warehouse=%s;orderLimit=%d;customerLimit=%d",
		strings.Join(q.Series, ","), strings.Join(q.Warehouses, ","), q.OrderLimit, q.CustomerLimit)
}

func trimTokens(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = middleware.SanitizeString(t)
	}
	return out
}

func dedupeSorted(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t != "" && !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}
