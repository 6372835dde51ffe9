package fiscalpanel

import (
	"context"
	"fmt"
)

// RebaseToReferenceYear re-expresses a percent-of-current-GDP column as a
// percent of the country's GDP in a fixed reference year:
//
//	raw  = v/100 * gdp[country, year]
//	v_R  = raw / gdp[country, refYear] * 100
//
// This removes year-to-year GDP-denominator drift, so period changes of
// v_R reflect real movement in the numerator. The column is rewritten in
// place; the intermediate absolute value is never materialized as a
// column. Rows missing either GDP observation become null. For rows where
// year == refYear the transform is the identity.
func RebaseToReferenceYear(f *Frame, col string, gdp *Frame, gdpCol string, refYear int) error {
	if !f.HasColumn(col) {
		return fmt.Errorf("%w: %q in frame %s", ErrUnknownColumn, col, f.Name())
	}
	if !gdp.HasColumn(gdpCol) {
		return fmt.Errorf("%w: %q in frame %s", ErrUnknownColumn, gdpCol, gdp.Name())
	}

	refGDP := make(map[string]float64)
	for _, r := range gdp.Rows() {
		if r.Key.Year != refYear {
			continue
		}
		if g, ok := r.Cells[gdpCol].Float(); ok {
			refGDP[r.Key.Country] = g
		}
	}

	rows := f.Rows()
	for i := range rows {
		v, ok := rows[i].Cells[col].Float()
		if !ok {
			continue
		}

		cell, present := gdp.Get(rows[i].Key, gdpCol)
		gdpYear, okYear := cell.Float()
		gdpRef, okRef := refGDP[rows[i].Key.Country]
		if !present || !okYear || !okRef || gdpRef == 0 {
			rows[i].Cells[col] = Null()
			continue
		}

		raw := v / 100 * gdpYear
		rows[i].Cells[col] = Num(raw / gdpRef * 100)
	}
	return nil
}

// AddPercentChange appends a period-over-period change column computed
// within each country's time-ordered series. The first observation per
// country has no defined change and stays null, as does any observation
// whose predecessor is null.
func AddPercentChange(f *Frame, col, out string) error {
	if !f.HasColumn(col) {
		return fmt.Errorf("%w: %q in frame %s", ErrUnknownColumn, col, f.Name())
	}
	if err := f.AddColumn(out); err != nil {
		return err
	}

	f.SortByKey()
	rows := f.Rows()
	var (
		prevCountry string
		prev        Value
	)
	for i := range rows {
		if rows[i].Key.Country != prevCountry {
			prevCountry = rows[i].Key.Country
			prev = Null()
		}
		curr := rows[i].Cells[col]
		if c, okC := curr.Float(); okC {
			if p, okP := prev.Float(); okP && p != 0 {
				rows[i].Cells[out] = Num((c - p) / p)
			}
		}
		prev = curr
	}
	return nil
}

// RebaseStage rebases every configured percent-of-GDP series to the
// reference year and appends its d-prefixed change column, operating on
// each series' source frame before the merge.
type RebaseStage struct {
	refYear int
	vars    []string
}

func NewRebaseStage(refYear int, vars []string) *RebaseStage {
	return &RebaseStage{refYear: refYear, vars: vars}
}

func (s *RebaseStage) Name() string   { return "rebase" }
func (s *RebaseStage) Required() bool { return true }

func (s *RebaseStage) Execute(ctx context.Context, state *State) error {
	gdp, ok := state.Source("gdp_absolute")
	if !ok {
		return fmt.Errorf("gdp_absolute source missing from state")
	}

	for _, v := range s.vars {
		frame, err := s.frameFor(state, v)
		if err != nil {
			return err
		}
		if err := RebaseToReferenceYear(frame, v, gdp, "gdp", s.refYear); err != nil {
			return err
		}
		if err := AddPercentChange(frame, v, "d"+v); err != nil {
			return err
		}
	}
	return nil
}

func (s *RebaseStage) frameFor(state *State, col string) (*Frame, error) {
	for _, name := range state.SourceOrder() {
		f, _ := state.Source(name)
		if f != nil && f.HasColumn(col) {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: no source carries %q", ErrUnknownColumn, col)
}
