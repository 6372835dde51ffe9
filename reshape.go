package fiscalpanel

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// iso2Codes is the set of canonical 2-letter codes the panel recognizes.
var iso2Codes = func() map[string]struct{} {
	set := make(map[string]struct{}, len(iso3ToISO2))
	for _, c := range iso3ToISO2 {
		set[c] = struct{}{}
	}
	return set
}()

// Normalize converts a raw source table into a keyed panel frame: it
// resolves the country column to ISO2, reshapes wide-by-year layouts to
// long form, drops rows whose country cannot be resolved (returned as
// warnings), sorts by key, and asserts key uniqueness.
func Normalize(spec SourceSpec, raw *RawTable) (*Frame, []Warning, error) {
	var (
		frame    *Frame
		warnings []Warning
		err      error
	)
	switch spec.Layout {
	case LayoutWide:
		frame, warnings, err = normalizeWide(spec, raw)
	default:
		frame, warnings, err = normalizeLong(spec, raw)
	}
	if err != nil {
		return nil, warnings, err
	}

	frame.SortByKey()
	if err := frame.CheckUnique("normalize"); err != nil {
		return nil, warnings, err
	}
	return frame, warnings, nil
}

// normalizeWide melts one column per year into (key, value) rows carrying
// the source's single variable. Row order ends up (country, year)
// ascending via the caller's sort.
func normalizeWide(spec SourceSpec, raw *RawTable) (*Frame, []Warning, error) {
	countryIdx, err := raw.ColumnIndex(spec.CountryField)
	if err != nil {
		return nil, nil, err
	}

	type yearCol struct {
		idx  int
		year int
	}
	var yearCols []yearCol
	for i, h := range raw.Header {
		if y, ok := parseYearHeader(h); ok {
			yearCols = append(yearCols, yearCol{idx: i, year: y})
		}
	}
	if len(yearCols) == 0 {
		return nil, nil, fmt.Errorf("%w: source %s", ErrNoYearColumns, raw.Source)
	}
	sort.Slice(yearCols, func(i, j int) bool { return yearCols[i].year < yearCols[j].year })

	frame := NewFrame(spec.Name, spec.WideVariable)
	var warnings []Warning
	for _, rec := range raw.Records {
		code, ok := resolveCountry(spec.Country, rec[countryIdx])
		if !ok {
			warnings = append(warnings, Warning{
				Source:  spec.Name,
				Message: fmt.Sprintf("unresolved country %q, row dropped", rec[countryIdx]),
			})
			continue
		}
		for _, yc := range yearCols {
			v := ParseValue(rec[yc.idx])
			if v.IsNull() {
				continue
			}
			frame.AppendRow(Key{Country: code, Year: yc.year}, map[string]Value{spec.WideVariable: v})
		}
	}
	return frame, warnings, nil
}

func normalizeLong(spec SourceSpec, raw *RawTable) (*Frame, []Warning, error) {
	countryIdx, err := raw.ColumnIndex(spec.CountryField)
	if err != nil {
		return nil, nil, err
	}
	yearIdx, err := raw.ColumnIndex(spec.YearField)
	if err != nil {
		return nil, nil, err
	}

	// Panel columns keep the source's header order for determinism.
	type varCol struct {
		idx int
		col string
	}
	var varCols []varCol
	for i, h := range raw.Header {
		if col, ok := spec.Variables[h]; ok {
			varCols = append(varCols, varCol{idx: i, col: col})
		}
	}
	if len(varCols) != len(spec.Variables) {
		return nil, nil, fmt.Errorf("%w: source %s declares %d variables, found %d",
			ErrMissingColumn, raw.Source, len(spec.Variables), len(varCols))
	}

	cols := make([]string, len(varCols))
	for i, vc := range varCols {
		cols[i] = vc.col
	}

	frame := NewFrame(spec.Name, cols...)
	var warnings []Warning
	for n, rec := range raw.Records {
		code, ok := resolveCountry(spec.Country, rec[countryIdx])
		if !ok {
			warnings = append(warnings, Warning{
				Source:  spec.Name,
				Message: fmt.Sprintf("unresolved country %q, row dropped", rec[countryIdx]),
			})
			continue
		}

		year, err := strconv.Atoi(strings.TrimSpace(rec[yearIdx]))
		if err != nil {
			return nil, warnings, fmt.Errorf("source %s record %d: year %q: %w", raw.Source, n+2, rec[yearIdx], err)
		}

		cells := make(map[string]Value, len(varCols))
		any := false
		for _, vc := range varCols {
			v := ParseValue(rec[vc.idx])
			if !v.IsNull() {
				any = true
			}
			cells[vc.col] = v
		}
		if !any {
			continue
		}
		frame.AppendRow(Key{Country: code, Year: year}, cells)
	}
	return frame, warnings, nil
}

func resolveCountry(kind CountryKind, raw string) (string, bool) {
	switch kind {
	case CountryByISO2:
		code := strings.ToUpper(strings.TrimSpace(raw))
		_, ok := iso2Codes[code]
		return code, ok
	case CountryByISO3:
		return ResolveISO3(raw)
	default:
		return ResolveName(raw)
	}
}

// parseYearHeader recognizes year-bearing wide columns: "1995" or "yr1995".
func parseYearHeader(h string) (int, bool) {
	h = strings.TrimSpace(h)
	h = strings.TrimPrefix(h, "yr")
	y, err := strconv.Atoi(h)
	if err != nil || y < 1800 || y > 2100 {
		return 0, false
	}
	return y, true
}
