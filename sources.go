package fiscalpanel

import (
	"net/http"
	"path/filepath"
	"strings"
)

type Layout int

const (
	// LayoutLong sources carry one row per (country, year) with one or
	// more value columns.
	LayoutLong Layout = iota
	// LayoutWide sources carry one row per country with one column per
	// year, holding a single variable.
	LayoutWide
)

type CountryKind int

const (
	CountryByName CountryKind = iota
	CountryByISO2
	CountryByISO3
)

// SourceSpec declares one source: where it lives, how its table is laid
// out, how its country column resolves, and how it joins into the panel.
type SourceSpec struct {
	Name  string
	File  string // relative to Config.DataDir; exclusive with URL
	URL   string
	Comma rune

	Layout       Layout
	Country      CountryKind
	CountryField string
	YearField    string // long layout only

	// Variables maps source headers to panel column names (long layout).
	Variables map[string]string

	// WideVariable is the panel column the year columns hold (wide layout).
	WideVariable string

	// Join is how the normalized frame merges into the combined panel.
	Join JoinKind

	// Merge is false for sources consumed only as transformation inputs
	// (the absolute-GDP table) rather than joined into the panel.
	Merge bool
}

// Location resolves where the source is read from, honoring per-source
// overrides in the config.
func (s SourceSpec) Location(cfg Config) string {
	if loc, ok := cfg.SourceOverrides[s.Name]; ok {
		return loc
	}
	if s.URL != "" {
		return s.URL
	}
	return filepath.Join(cfg.DataDir, s.File)
}

// NewLoader builds the loader for this source's resolved location.
func (s SourceSpec) NewLoader(cfg Config, client *http.Client) Loader {
	loc := s.Location(cfg)
	if strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://") {
		return NewHTTPLoader(s.Name, loc, s.Comma, client)
	}
	return NewFileLoader(s.Name, loc, s.Comma)
}

// RebasedVariables lists the percent-of-GDP series that get rebased to the
// reference year, in processing order. Each also gains a d-prefixed
// period-change column.
func RebasedVariables() []string {
	return []string{
		"cgdebt",      // central-government debt
		"ggdebt",      // general-government debt
		"deficit",     // general-government deficit
		"liabilities", // government liabilities
		"spendtotal",  // total government spending
		"spendecon",   // economic-affairs spending
		"nft",         // net financial transactions
	}
}

// ForwardFilledVariables lists the slow-changing fields filled forward
// within country.
func ForwardFilledVariables() []string {
	return []string{"lossprob", "lossprob2", "sameparty", "parliamentary"}
}

// LaggedVariables lists the columns that gain an l-prefixed one-year lag.
func LaggedVariables() []string {
	return []string{
		"cgdebt", "dcgdebt",
		"ggdebt", "dggdebt",
		"deficit", "ddeficit",
		"liabilities", "dliabilities",
		"spendtotal", "dspendtotal",
		"spendecon", "dspendecon",
		"nft", "sfa", "lossprob",
	}
}

// DefaultSources is the study's source catalogue. Stata-format originals
// are consumed as their CSV exports; layouts below describe the exports.
func DefaultSources() []SourceSpec {
	return []SourceSpec{
		{
			Name:         "gdp_absolute",
			File:         "wdi_gdp_lcu.csv",
			Layout:       LayoutWide,
			Country:      CountryByName,
			CountryField: "Country Name",
			WideVariable: "gdp",
			Merge:        false,
		},
		{
			Name:         "cg_debt",
			File:         "imf_cg_debt.csv",
			Layout:       LayoutWide,
			Country:      CountryByName,
			CountryField: "country",
			WideVariable: "cgdebt",
			Join:         JoinOuter,
			Merge:        true,
		},
		{
			Name:         "gg_debt",
			File:         "imf_gg_debt.csv",
			Layout:       LayoutWide,
			Country:      CountryByName,
			CountryField: "country",
			WideVariable: "ggdebt",
			Join:         JoinOuter,
			Merge:        true,
		},
		{
			Name:         "deficit",
			URL:          "https://www.imf.org/-/media/Files/Publications/WEO/WEOApr-ggxcnl.csv",
			Layout:       LayoutWide,
			Country:      CountryByISO3,
			CountryField: "ISO",
			WideVariable: "deficit",
			Join:         JoinOuter,
			Merge:        true,
		},
		{
			Name:         "liabilities",
			File:         "oecd_gov_liab.csv",
			Layout:       LayoutLong,
			Country:      CountryByISO3,
			CountryField: "LOCATION",
			YearField:    "TIME",
			Variables:    map[string]string{"Value": "liabilities"},
			Join:         JoinOuter,
			Merge:        true,
		},
		{
			Name:         "spending_total",
			File:         "oecd_cofog_total.csv",
			Layout:       LayoutLong,
			Country:      CountryByISO3,
			CountryField: "LOCATION",
			YearField:    "TIME",
			Variables:    map[string]string{"Value": "spendtotal"},
			Join:         JoinOuter,
			Merge:        true,
		},
		{
			Name:         "spending_econ",
			File:         "oecd_cofog_econ.csv",
			Layout:       LayoutLong,
			Country:      CountryByISO3,
			CountryField: "LOCATION",
			YearField:    "TIME",
			Variables:    map[string]string{"Value": "spendecon"},
			Join:         JoinOuter,
			Merge:        true,
		},
		{
			Name:         "net_fin_trans",
			File:         "oecd_net_fin_trans.csv",
			Layout:       LayoutLong,
			Country:      CountryByISO3,
			CountryField: "LOCATION",
			YearField:    "TIME",
			Variables:    map[string]string{"Value": "nft"},
			Join:         JoinOuter,
			Merge:        true,
		},
		{
			Name:         "euro_membership",
			File:         "euro_members.csv",
			Layout:       LayoutLong,
			Country:      CountryByISO2,
			CountryField: "country",
			YearField:    "year",
			Variables:    map[string]string{"euro": "euro"},
			Join:         JoinLeft,
			Merge:        true,
		},
		{
			Name:         "elections",
			File:         "elections.csv",
			Layout:       LayoutLong,
			Country:      CountryByISO2,
			CountryField: "country",
			YearField:    "year",
			Variables:    map[string]string{"election": "election", "electionyear": "electionyear"},
			Join:         JoinLeft,
			Merge:        true,
		},
		{
			Name:         "loss_probability",
			File:         "lossprob.csv",
			Layout:       LayoutLong,
			Country:      CountryByISO3,
			CountryField: "ccode",
			YearField:    "year",
			Variables:    map[string]string{"lossprob": "lossprob", "lossprob2": "lossprob2"},
			Join:         JoinLeft,
			Merge:        true,
		},
		{
			Name:         "government_party",
			File:         "govparty.csv",
			Layout:       LayoutLong,
			Country:      CountryByName,
			CountryField: "country",
			YearField:    "year",
			Variables:    map[string]string{"sameparty": "sameparty"},
			Join:         JoinLeft,
			Merge:        true,
		},
		{
			Name:         "political_system",
			File:         "polsys.csv",
			Layout:       LayoutLong,
			Country:      CountryByName,
			CountryField: "country",
			YearField:    "year",
			Variables:    map[string]string{"parliamentary": "parliamentary"},
			Join:         JoinLeft,
			Merge:        true,
		},
		{
			Name:         "exchange_regime",
			File:         "exchange_regime.csv",
			Layout:       LayoutLong,
			Country:      CountryByISO3,
			CountryField: "code",
			YearField:    "year",
			Variables:    map[string]string{"peg": "pegbase"},
			Join:         JoinLeft,
			Merge:        true,
		},
		{
			Name:         "population",
			URL:          "https://api.worldbank.org/v2/en/indicator/SP.POP.TOTL?downloadformat=csv",
			Layout:       LayoutWide,
			Country:      CountryByName,
			CountryField: "Country Name",
			WideVariable: "pop",
			Join:         JoinLeft,
			Merge:        true,
		},
	}
}
