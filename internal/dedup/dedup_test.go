package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"webinar-counter-backend/internal/tabular"
)

func TestResolvePrecedence(t *testing.T) {
	testCases := []struct {
		name     string
		columns  []string
		rows     []tabular.Row
		strategy Strategy
		column   string
		keys     []string
	}{
		{
			name:     "email wins over name",
			columns:  []string{"Email", "Name", "Join Time", "Leave Time"},
			rows:     []tabular.Row{{"Email": " A@X.com ", "Name": "Alice"}},
			strategy: StrategyEmail,
			column:   "Email",
			keys:     []string{"a@x.com"},
		},
		{
			name:     "name fallback",
			columns:  []string{"Name", "Join Time", "Leave Time"},
			rows:     []tabular.Row{{"Name": " Alice Smith "}},
			strategy: StrategyName,
			column:   "Name",
			keys:     []string{"alice smith"},
		},
		{
			name:     "original name column",
			columns:  []string{"Name (Original Name)", "Join Time", "Leave Time"},
			rows:     []tabular.Row{{"Name (Original Name)": "Bob"}},
			strategy: StrategyName,
			column:   "Name (Original Name)",
			keys:     []string{"bob"},
		},
		{
			name:     "full name column",
			columns:  []string{"Full Name", "Join Time", "Leave Time"},
			rows:     []tabular.Row{{"Full Name": "Carol"}},
			strategy: StrategyName,
			column:   "Full Name",
			keys:     []string{"carol"},
		},
		{
			name:     "row index fallback",
			columns:  []string{"Join Time", "Leave Time"},
			rows:     []tabular.Row{{}, {}, {}},
			strategy: StrategyRowIndex,
			column:   "",
			keys:     []string{"0", "1", "2"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res := Resolve(&tabular.Table{Columns: tc.columns, Rows: tc.rows})
			assert.Equal(t, tc.strategy, res.Strategy)
			assert.Equal(t, tc.column, res.Column)
			assert.Equal(t, tc.keys, res.Keys)
		})
	}
}

func TestResolveDegraded(t *testing.T) {
	res := Resolve(&tabular.Table{Columns: []string{"Join Time", "Leave Time"}, Rows: []tabular.Row{{}}})
	assert.True(t, res.Degraded())
	assert.Contains(t, res.Describe(), "row index")

	res = Resolve(&tabular.Table{Columns: []string{"Email"}, Rows: []tabular.Row{{"Email": "a@x.com"}}})
	assert.False(t, res.Degraded())
}
