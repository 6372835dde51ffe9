package fiscalpanel

import "strings"

// codeFixes rewrites non-standard 3-letter codes used by individual
// sources before the regular lookup runs. The electoral-risk source codes
// Australia as "AUL".
var codeFixes = map[string]string{
	"AUL": "AUS",
}

var iso3ToISO2 = map[string]string{
	"AUS": "AU", "AUT": "AT", "BEL": "BE", "CAN": "CA", "CHE": "CH",
	"CZE": "CZ", "DEU": "DE", "DNK": "DK", "ESP": "ES", "EST": "EE",
	"FIN": "FI", "FRA": "FR", "GBR": "GB", "GRC": "GR", "HUN": "HU",
	"IRL": "IE", "ISL": "IS", "ITA": "IT", "JPN": "JP", "KOR": "KR",
	"LUX": "LU", "MEX": "MX", "NLD": "NL", "NOR": "NO", "NZL": "NZ",
	"POL": "PL", "PRT": "PT", "SVK": "SK", "SVN": "SI", "SWE": "SE",
	"TUR": "TR", "USA": "US",
}

// nameToISO2 maps folded country names (see foldName) to ISO2 codes,
// including the spelling variants the statistical sources actually use.
var nameToISO2 = map[string]string{
	"australia":              "AU",
	"austria":                "AT",
	"belgium":                "BE",
	"canada":                 "CA",
	"switzerland":            "CH",
	"czechrepublic":          "CZ",
	"czechia":                "CZ",
	"germany":                "DE",
	"denmark":                "DK",
	"spain":                  "ES",
	"estonia":                "EE",
	"finland":                "FI",
	"france":                 "FR",
	"unitedkingdom":          "GB",
	"uk":                     "GB",
	"greatbritain":           "GB",
	"greece":                 "GR",
	"hungary":                "HU",
	"ireland":                "IE",
	"iceland":                "IS",
	"italy":                  "IT",
	"japan":                  "JP",
	"korea":                  "KR",
	"korearep":               "KR",
	"republicofkorea":        "KR",
	"southkorea":             "KR",
	"luxembourg":             "LU",
	"mexico":                 "MX",
	"netherlands":            "NL",
	"thenetherlands":         "NL",
	"norway":                 "NO",
	"newzealand":             "NZ",
	"poland":                 "PL",
	"portugal":               "PT",
	"slovakia":               "SK",
	"slovakrepublic":         "SK",
	"slovenia":               "SI",
	"sweden":                 "SE",
	"turkey":                 "TR",
	"turkiye":                "TR",
	"unitedstates":           "US",
	"unitedstatesofamerica":  "US",
	"usa":                    "US",
}

// foldName normalizes a free-text country name for lookup: lower case with
// spaces and punctuation removed, so "Korea, Rep." and "korea rep" collide.
func foldName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ResolveName maps a free-text country name to its ISO2 code. An unknown
// name yields ok == false, never an error: such rows are dropped with a
// warning by the normalizer.
func ResolveName(name string) (string, bool) {
	code, ok := nameToISO2[foldName(name)]
	return code, ok
}

// ResolveISO3 maps a 3-letter code to ISO2, applying per-source code fixes
// first.
func ResolveISO3(code string) (string, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if fixed, ok := codeFixes[code]; ok {
		code = fixed
	}
	iso2, ok := iso3ToISO2[code]
	return iso2, ok
}
