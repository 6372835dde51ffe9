package fiscalpanel

import "context"

// OverrideRule is one declarative correction: rows matching the predicate
// get the named fields set to the rule's value. Rules are applied in
// declaration order, so later rules win where they overlap.
type OverrideRule struct {
	Name   string
	Match  func(Row) bool
	Fields []string
	Value  Value
}

// countryYears matches one country over an inclusive year window; zero
// bounds leave that side open.
func countryYears(code string, from, to int) func(Row) bool {
	return func(r Row) bool {
		if r.Key.Country != code {
			return false
		}
		if from != 0 && r.Key.Year < from {
			return false
		}
		if to != 0 && r.Key.Year > to {
			return false
		}
		return true
	}
}

// FixedExchangeRules encodes the fixed-exchange-rate regimes the raw
// euro-membership indicator misses: ERM-style pegs and euro run-ups.
func FixedExchangeRules() []OverrideRule {
	one := Num(1)
	fields := []string{"fixedexch"}
	return []OverrideRule{
		{Name: "denmark-peg", Match: countryYears("DK", 0, 0), Fields: fields, Value: one},
		{Name: "estonia-peg", Match: countryYears("EE", 2004, 0), Fields: fields, Value: one},
		{Name: "greece-peg", Match: countryYears("GR", 1996, 0), Fields: fields, Value: one},
		{Name: "hungary-peg", Match: countryYears("HU", 2004, 2008), Fields: fields, Value: one},
		{Name: "slovakia-peg", Match: countryYears("SK", 2006, 0), Fields: fields, Value: one},
		{Name: "slovenia-peg", Match: countryYears("SI", 2004, 0), Fields: fields, Value: one},
		{Name: "switzerland-floor", Match: countryYears("CH", 2011, 2014), Fields: fields, Value: one},
	}
}

// LossProbabilityRules blanks the loss-probability fields where the source
// series is known unreliable: named country windows, any country the
// source never covered, and post-2010 election years. present is the set
// of countries the loss-probability source actually covers.
func LossProbabilityRules(present map[string]struct{}) []OverrideRule {
	fields := []string{"lossprob", "lossprob2"}
	return []OverrideRule{
		{Name: "australia-unreliable", Match: countryYears("AU", 2007, 0), Fields: fields, Value: Null()},
		{Name: "france-unreliable", Match: countryYears("FR", 2007, 0), Fields: fields, Value: Null()},
		{Name: "uk-unreliable", Match: countryYears("GB", 2010, 0), Fields: fields, Value: Null()},
		{
			Name: "uncovered-country",
			Match: func(r Row) bool {
				_, ok := present[r.Key.Country]
				return !ok
			},
			Fields: fields,
			Value:  Null(),
		},
		{
			Name: "post-2010-election-year",
			Match: func(r Row) bool {
				if r.Key.Year <= 2010 {
					return false
				}
				e, ok := r.Cells["election"].Float()
				return ok && e != 0
			},
			Fields: fields,
			Value:  Null(),
		},
	}
}

// OverrideDeriver applies an ordered rule table to the combined panel.
type OverrideDeriver struct {
	name  string
	rules []OverrideRule
}

func NewOverrideDeriver(name string, rules []OverrideRule) *OverrideDeriver {
	return &OverrideDeriver{name: name, rules: rules}
}

func (d *OverrideDeriver) Name() string   { return d.name }
func (d *OverrideDeriver) Required() bool { return true }

func (d *OverrideDeriver) Derive(ctx context.Context, f *Frame) error {
	rows := f.Rows()
	for _, rule := range d.rules {
		for _, field := range rule.Fields {
			if !f.HasColumn(field) {
				continue
			}
			for i := range rows {
				if rule.Match(rows[i]) {
					rows[i].Cells[field] = rule.Value
				}
			}
		}
	}
	return nil
}
