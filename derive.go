package fiscalpanel

import (
	"context"
	"fmt"
)

// Deriver computes or adjusts variables on the combined panel after the
// merge. Derivers run strictly in order; a required deriver's error aborts
// the run, a non-required one is recorded and skipped.
type Deriver interface {
	Name() string
	Derive(ctx context.Context, f *Frame) error
	Required() bool
}

type CompositeDeriver struct {
	derivers []Deriver
}

func NewCompositeDeriver(derivers ...Deriver) *CompositeDeriver {
	return &CompositeDeriver{derivers: derivers}
}

func (c *CompositeDeriver) Add(d Deriver) {
	c.derivers = append(c.derivers, d)
}

// Derive runs every deriver sequentially over the frame. Errors from
// non-required derivers are returned after all derivers have run.
func (c *CompositeDeriver) Derive(ctx context.Context, f *Frame) error {
	var deferred error
	for _, d := range c.derivers {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := d.Derive(ctx, f); err != nil {
			wrapped := fmt.Errorf("deriver %s: %w", d.Name(), err)
			if d.Required() {
				return wrapped
			}
			if deferred == nil {
				deferred = wrapped
			}
		}
	}
	return deferred
}

// StockFlowDeriver adds the stock-flow adjustment: the change in
// general-government debt plus the current deficit, both on the rebased
// scale. Null when either input is missing.
type StockFlowDeriver struct{}

func (StockFlowDeriver) Name() string   { return "stock-flow" }
func (StockFlowDeriver) Required() bool { return true }

func (StockFlowDeriver) Derive(ctx context.Context, f *Frame) error {
	if err := f.AddColumn("sfa"); err != nil {
		return err
	}
	rows := f.Rows()
	for i := range rows {
		dd, okD := rows[i].Cells["dggdebt"].Float()
		def, okF := rows[i].Cells["deficit"].Float()
		if okD && okF {
			rows[i].Cells["sfa"] = Num(dd + def)
		}
	}
	return nil
}

// FixedExchangeDeriver seeds the fixed-exchange-rate flag from the
// euro-membership indicator; country-specific corrections are layered on
// by the override rules afterwards. Countries absent from the euro source
// start at zero.
type FixedExchangeDeriver struct{}

func (FixedExchangeDeriver) Name() string   { return "fixed-exchange-base" }
func (FixedExchangeDeriver) Required() bool { return true }

func (FixedExchangeDeriver) Derive(ctx context.Context, f *Frame) error {
	if err := f.AddColumn("fixedexch"); err != nil {
		return err
	}
	rows := f.Rows()
	for i := range rows {
		if euro, ok := rows[i].Cells["euro"].Float(); ok {
			rows[i].Cells["fixedexch"] = Num(euro)
		} else {
			rows[i].Cells["fixedexch"] = Num(0)
		}
	}
	return nil
}

// ForwardFillDeriver fills missing values of slow-changing fields with the
// most recent non-missing value within the same country, ascending year.
// It never fills backward and never crosses a country boundary.
type ForwardFillDeriver struct {
	cols []string
}

func NewForwardFillDeriver(cols ...string) *ForwardFillDeriver {
	return &ForwardFillDeriver{cols: cols}
}

func (d *ForwardFillDeriver) Name() string   { return "forward-fill" }
func (d *ForwardFillDeriver) Required() bool { return true }

func (d *ForwardFillDeriver) Derive(ctx context.Context, f *Frame) error {
	f.SortByKey()
	rows := f.Rows()
	for _, col := range d.cols {
		if !f.HasColumn(col) {
			continue
		}
		var (
			prevCountry string
			last        Value
		)
		for i := range rows {
			if rows[i].Key.Country != prevCountry {
				prevCountry = rows[i].Key.Country
				last = Null()
			}
			if v := rows[i].Cells[col]; !v.IsNull() {
				last = v
			} else if !last.IsNull() {
				rows[i].Cells[col] = last
			}
		}
	}
	return nil
}

// CutoffDeriver drops every observation after the study window.
type CutoffDeriver struct {
	year int
}

func NewCutoffDeriver(year int) *CutoffDeriver {
	return &CutoffDeriver{year: year}
}

func (d *CutoffDeriver) Name() string   { return "cutoff" }
func (d *CutoffDeriver) Required() bool { return true }

func (d *CutoffDeriver) Derive(ctx context.Context, f *Frame) error {
	f.Filter(func(r Row) bool { return r.Key.Year <= d.year })
	return nil
}

// LagDeriver adds an l-prefixed one-year lag column for each configured
// variable: the variable's value from the same country's previous year,
// null when no prior-year row exists. Lags are computed independently per
// variable, never chained.
type LagDeriver struct {
	vars []string
}

func NewLagDeriver(vars ...string) *LagDeriver {
	return &LagDeriver{vars: vars}
}

func (d *LagDeriver) Name() string   { return "lags" }
func (d *LagDeriver) Required() bool { return true }

func (d *LagDeriver) Derive(ctx context.Context, f *Frame) error {
	rows := f.Rows()
	byKey := make(map[Key]int, len(rows))
	for i := range rows {
		byKey[rows[i].Key] = i
	}

	for _, v := range d.vars {
		if !f.HasColumn(v) {
			return fmt.Errorf("%w: lag of %q", ErrUnknownColumn, v)
		}
		if err := f.AddColumn("l" + v); err != nil {
			return err
		}
		for i := range rows {
			prevKey := Key{Country: rows[i].Key.Country, Year: rows[i].Key.Year - 1}
			if j, ok := byKey[prevKey]; ok {
				rows[i].Cells["l"+v] = rows[j].Cells[v]
			}
		}
	}
	return nil
}

// DeriveStage runs the full post-merge derivation in the documented order:
// stock-flow adjustment, fixed-exchange base, country/year override rules,
// forward-fill, loss-probability blanking, study-window cutoff, lags.
type DeriveStage struct {
	cfg Config
}

func NewDeriveStage(cfg Config) *DeriveStage {
	return &DeriveStage{cfg: cfg}
}

func (s *DeriveStage) Name() string   { return "derive" }
func (s *DeriveStage) Required() bool { return true }

func (s *DeriveStage) Execute(ctx context.Context, state *State) error {
	combined := state.Combined()
	if combined == nil {
		return fmt.Errorf("derive ran before merge")
	}

	lossProbCountries := make(map[string]struct{})
	if lp, ok := state.Source("loss_probability"); ok {
		for _, c := range lp.Countries() {
			lossProbCountries[c] = struct{}{}
		}
	}

	composite := NewCompositeDeriver(
		StockFlowDeriver{},
		FixedExchangeDeriver{},
		NewOverrideDeriver("fixed-exchange-overrides", FixedExchangeRules()),
		NewForwardFillDeriver(ForwardFilledVariables()...),
		NewOverrideDeriver("loss-probability-blanking", LossProbabilityRules(lossProbCountries)),
		NewCutoffDeriver(s.cfg.CutoffYear),
		NewLagDeriver(LaggedVariables()...),
	)
	return composite.Derive(ctx, combined)
}
