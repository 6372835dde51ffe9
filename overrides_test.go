package fiscalpanel_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nulllvoid/fiscalpanel"
)

func fixedExchPanel(obs map[fiscalpanel.Key]float64) *fiscalpanel.Frame {
	f := fiscalpanel.NewFrame("panel", "fixedexch")
	for k, v := range obs {
		f.AppendRow(k, numCells("fixedexch", v))
	}
	f.SortByKey()
	return f
}

func fixedExchAt(t *testing.T, f *fiscalpanel.Frame, k fiscalpanel.Key) float64 {
	t.Helper()
	v, ok := f.Get(k, "fixedexch")
	require.True(t, ok, "no row for %s", k)
	got, ok := v.Float()
	require.True(t, ok, "fixedexch null for %s", k)
	return got
}

func TestFixedExchangeRules(t *testing.T) {
	t.Parallel()

	f := fixedExchPanel(map[fiscalpanel.Key]float64{
		key("DK", 1985): 0,
		key("DK", 1999): 0,
		key("EE", 2003): 0,
		key("EE", 2004): 0,
		key("GR", 1995): 0,
		key("GR", 1996): 0,
		key("HU", 2003): 0,
		key("HU", 2004): 0,
		key("HU", 2008): 0,
		key("HU", 2009): 0,
		key("CH", 2010): 0,
		key("CH", 2011): 0,
		key("CH", 2014): 0,
		key("SE", 2004): 0,
	})

	d := fiscalpanel.NewOverrideDeriver("fixed-exchange-overrides", fiscalpanel.FixedExchangeRules())
	require.NoError(t, d.Derive(context.Background(), f))

	// Denmark in every year, regardless of the raw indicator
	assert.Equal(t, 1.0, fixedExchAt(t, f, key("DK", 1985)))
	assert.Equal(t, 1.0, fixedExchAt(t, f, key("DK", 1999)))

	// windows with a lower bound
	assert.Equal(t, 0.0, fixedExchAt(t, f, key("EE", 2003)))
	assert.Equal(t, 1.0, fixedExchAt(t, f, key("EE", 2004)))
	assert.Equal(t, 0.0, fixedExchAt(t, f, key("GR", 1995)))
	assert.Equal(t, 1.0, fixedExchAt(t, f, key("GR", 1996)))

	// bounded window: Hungary 2004-2008 only
	assert.Equal(t, 0.0, fixedExchAt(t, f, key("HU", 2003)))
	assert.Equal(t, 1.0, fixedExchAt(t, f, key("HU", 2004)))
	assert.Equal(t, 1.0, fixedExchAt(t, f, key("HU", 2008)))
	assert.Equal(t, 0.0, fixedExchAt(t, f, key("HU", 2009)))

	// Switzerland's franc floor, 2011-2014
	assert.Equal(t, 0.0, fixedExchAt(t, f, key("CH", 2010)))
	assert.Equal(t, 1.0, fixedExchAt(t, f, key("CH", 2011)))
	assert.Equal(t, 1.0, fixedExchAt(t, f, key("CH", 2014)))

	// untouched country
	assert.Equal(t, 0.0, fixedExchAt(t, f, key("SE", 2004)))
}

func TestLossProbabilityRules(t *testing.T) {
	t.Parallel()

	present := map[string]struct{}{"AU": {}, "FR": {}, "GB": {}, "DK": {}}

	f := fiscalpanel.NewFrame("panel", "lossprob", "lossprob2", "election")
	set := func(c string, y int, election fiscalpanel.Value) {
		f.AppendRow(key(c, y), map[string]fiscalpanel.Value{
			"lossprob":  fiscalpanel.Num(0.4),
			"lossprob2": fiscalpanel.Num(0.16),
			"election":  election,
		})
	}
	set("AU", 2006, fiscalpanel.Null())
	set("AU", 2007, fiscalpanel.Null())
	set("FR", 2007, fiscalpanel.Null())
	set("GB", 2009, fiscalpanel.Null())
	set("GB", 2010, fiscalpanel.Null())
	set("US", 2005, fiscalpanel.Null()) // never covered by the source
	set("DK", 2011, fiscalpanel.Num(1)) // post-2010 election year
	set("DK", 2011+1, fiscalpanel.Num(0))
	set("DK", 2009, fiscalpanel.Num(1)) // election year but within window

	d := fiscalpanel.NewOverrideDeriver("loss-probability-blanking", fiscalpanel.LossProbabilityRules(present))
	require.NoError(t, d.Derive(context.Background(), f))

	isNull := func(c string, y int) bool {
		v, _ := f.Get(key(c, y), "lossprob")
		v2, _ := f.Get(key(c, y), "lossprob2")
		return v.IsNull() && v2.IsNull()
	}

	assert.False(t, isNull("AU", 2006))
	assert.True(t, isNull("AU", 2007))
	assert.True(t, isNull("FR", 2007))
	assert.False(t, isNull("GB", 2009))
	assert.True(t, isNull("GB", 2010))
	assert.True(t, isNull("US", 2005), "uncovered countries must be blanked entirely")
	assert.True(t, isNull("DK", 2011), "post-2010 election years must be blanked")
	assert.False(t, isNull("DK", 2012), "non-election post-2010 years keep the series")
	assert.False(t, isNull("DK", 2009), "pre-2011 election years keep the series")
}

func TestOverrideDeriver_SkipsAbsentColumns(t *testing.T) {
	t.Parallel()

	f := fiscalpanel.NewFrame("panel", "cgdebt")
	f.AppendRow(key("DK", 2000), numCells("cgdebt", 50))

	d := fiscalpanel.NewOverrideDeriver("fixed-exchange-overrides", fiscalpanel.FixedExchangeRules())
	require.NoError(t, d.Derive(context.Background(), f))

	v, _ := f.Get(key("DK", 2000), "cgdebt")
	got, _ := v.Float()
	assert.Equal(t, 50.0, got)
}
