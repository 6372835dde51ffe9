package fiscalpanel_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nulllvoid/fiscalpanel"
)

// gdpFrame builds the absolute-GDP table used across the rebase tests.
func gdpFrame(t *testing.T, obs map[fiscalpanel.Key]float64) *fiscalpanel.Frame {
	t.Helper()
	f := fiscalpanel.NewFrame("gdp_absolute", "gdp")
	for k, v := range obs {
		f.AppendRow(k, numCells("gdp", v))
	}
	f.SortByKey()
	return f
}

func TestRebaseToReferenceYear_SpecExample(t *testing.T) {
	t.Parallel()

	// Country AA: debt 40/42/44 % of GDP over 2000-2002, GDP 100/105/110,
	// reference year 2000.
	debt := fiscalpanel.NewFrame("cg_debt", "cgdebt")
	debt.AppendRow(key("AA", 2000), numCells("cgdebt", 40))
	debt.AppendRow(key("AA", 2001), numCells("cgdebt", 42))
	debt.AppendRow(key("AA", 2002), numCells("cgdebt", 44))

	gdp := gdpFrame(t, map[fiscalpanel.Key]float64{
		key("AA", 2000): 100,
		key("AA", 2001): 105,
		key("AA", 2002): 110,
	})

	require.NoError(t, fiscalpanel.RebaseToReferenceYear(debt, "cgdebt", gdp, "gdp", 2000))
	require.NoError(t, fiscalpanel.AddPercentChange(debt, "cgdebt", "dcgdebt"))

	// year == reference year: rebasing is the identity
	v, _ := debt.Get(key("AA", 2000), "cgdebt")
	f, _ := v.Float()
	assert.InDelta(t, 40.0, f, 1e-9)

	// 2001: (0.42 * 105) / 100 * 100 = 44.1
	v, _ = debt.Get(key("AA", 2001), "cgdebt")
	f, _ = v.Float()
	assert.InDelta(t, 44.1, f, 1e-9)

	// change for 2001: (44.1 - 40) / 40 = 0.1025
	v, _ = debt.Get(key("AA", 2001), "dcgdebt")
	f, _ = v.Float()
	assert.InDelta(t, 0.1025, f, 1e-9)

	// first observation has no defined change
	v, _ = debt.Get(key("AA", 2000), "dcgdebt")
	assert.True(t, v.IsNull())
}

func TestRebaseToReferenceYear_MissingGDP(t *testing.T) {
	t.Parallel()

	debt := fiscalpanel.NewFrame("cg_debt", "cgdebt")
	debt.AppendRow(key("AA", 2000), numCells("cgdebt", 40))
	debt.AppendRow(key("AA", 2001), numCells("cgdebt", 42))
	debt.AppendRow(key("BB", 2000), numCells("cgdebt", 70))

	// AA has no GDP for 2001; BB has no GDP at the reference year at all
	gdp := gdpFrame(t, map[fiscalpanel.Key]float64{
		key("AA", 2000): 100,
		key("BB", 2001): 50,
	})

	require.NoError(t, fiscalpanel.RebaseToReferenceYear(debt, "cgdebt", gdp, "gdp", 2000))

	v, _ := debt.Get(key("AA", 2001), "cgdebt")
	assert.True(t, v.IsNull(), "missing current-year GDP must null the observation")

	v, _ = debt.Get(key("BB", 2000), "cgdebt")
	assert.True(t, v.IsNull(), "missing reference-year GDP must null the observation")
}

func TestRebaseToReferenceYear_UnknownColumn(t *testing.T) {
	t.Parallel()

	debt := fiscalpanel.NewFrame("cg_debt", "cgdebt")
	gdp := gdpFrame(t, nil)

	assert.ErrorIs(t,
		fiscalpanel.RebaseToReferenceYear(debt, "nope", gdp, "gdp", 2000),
		fiscalpanel.ErrUnknownColumn)
}

func TestAddPercentChange_PerCountrySeries(t *testing.T) {
	t.Parallel()

	f := fiscalpanel.NewFrame("t", "v")
	f.AppendRow(key("AA", 2000), numCells("v", 10))
	f.AppendRow(key("AA", 2001), numCells("v", 12))
	f.AppendRow(key("BB", 2001), numCells("v", 5))
	f.AppendRow(key("BB", 2002), numCells("v", 4))

	require.NoError(t, fiscalpanel.AddPercentChange(f, "v", "dv"))

	// each country's first observation is null
	v, _ := f.Get(key("AA", 2000), "dv")
	assert.True(t, v.IsNull())
	v, _ = f.Get(key("BB", 2001), "dv")
	assert.True(t, v.IsNull(), "change must not cross the country boundary")

	v, _ = f.Get(key("AA", 2001), "dv")
	got, _ := v.Float()
	assert.InDelta(t, 0.2, got, 1e-9)

	v, _ = f.Get(key("BB", 2002), "dv")
	got, _ = v.Float()
	assert.InDelta(t, -0.2, got, 1e-9)
}

func TestAddPercentChange_NullPredecessor(t *testing.T) {
	t.Parallel()

	f := fiscalpanel.NewFrame("t", "v")
	f.AppendRow(key("AA", 2000), numCells("v", 10))
	f.AppendRow(key("AA", 2001), map[string]fiscalpanel.Value{"v": fiscalpanel.Null()})
	f.AppendRow(key("AA", 2002), numCells("v", 12))

	require.NoError(t, fiscalpanel.AddPercentChange(f, "v", "dv"))

	v, _ := f.Get(key("AA", 2002), "dv")
	assert.True(t, v.IsNull(), "a null predecessor leaves the change undefined")
}

func TestRebaseStage(t *testing.T) {
	t.Parallel()

	state := fiscalpanel.NewState()

	gdp := gdpFrame(t, map[fiscalpanel.Key]float64{
		key("AA", 2000): 100,
		key("AA", 2001): 105,
	})
	state.SetSource("gdp_absolute", gdp)

	debt := fiscalpanel.NewFrame("cg_debt", "cgdebt")
	debt.AppendRow(key("AA", 2000), numCells("cgdebt", 40))
	debt.AppendRow(key("AA", 2001), numCells("cgdebt", 42))
	state.SetSource("cg_debt", debt)

	stage := fiscalpanel.NewRebaseStage(2000, []string{"cgdebt"})
	require.NoError(t, stage.Execute(context.Background(), state))

	assert.True(t, debt.HasColumn("dcgdebt"))
	v, _ := debt.Get(key("AA", 2001), "cgdebt")
	f, _ := v.Float()
	assert.False(t, math.IsNaN(f))
	assert.InDelta(t, 44.1, f, 1e-9)
}

func TestRebaseStage_MissingVariable(t *testing.T) {
	t.Parallel()

	state := fiscalpanel.NewState()
	state.SetSource("gdp_absolute", gdpFrame(t, nil))

	stage := fiscalpanel.NewRebaseStage(2000, []string{"cgdebt"})
	assert.ErrorIs(t, stage.Execute(context.Background(), state), fiscalpanel.ErrUnknownColumn)
}
