package statistics

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm/clause"

	"github.com/inkwell-labs/inkwell/pkg/types"
)

func TestFiltersForDropsProviderOnNonPaymentStats(t *testing.T) {
	req := &StatisticRequest{Filters: []*types.CommonFilter{
		{Field: "provider", Operator: types.CommonFilterOperatorEq, Values: []any{"payos"}},
	}}

	// Payment statistics keep the provider filter.
	expr := req.filtersFor(StatisticTypeDailyRevenue)
	_, passthrough := expr.(clause.Expr)
	require.False(t, passthrough)

	// Usage statistics have no provider column; the filter is dropped and
	// the expression degrades to a tautology.
	expr = req.filtersFor(StatisticTypeDailyJournalCount)
	raw, ok := expr.(clause.Expr)
	require.True(t, ok)
	require.Equal(t, "1=1", raw.SQL)
}

func TestFiltersForEmpty(t *testing.T) {
	req := &StatisticRequest{}
	raw, ok := req.filtersFor(StatisticTypeDailyPaymentCount).(clause.Expr)
	require.True(t, ok)
	require.Equal(t, "1=1", raw.SQL)
}
