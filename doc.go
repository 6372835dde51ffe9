// Package fiscalpanel assembles a country × year panel dataset of
// government liabilities and spending from heterogeneous statistical
// sources, through a strictly sequential pipeline:
//
//   - Loaders: fetch each source (local file or URL) into tabular form
//   - Normalizers: reshape wide-by-year tables to long form and resolve
//     country names to ISO codes
//   - Unit converter: rebase percent-of-GDP series to a fixed reference
//     year and compute within-country period changes
//   - Merger: outer/left-join every source on the (country, year) key,
//     asserting key uniqueness after each join
//   - Derivers: composite variables, forward-fill, declarative
//     country/year overrides, study-window cutoff, one-year lags
//   - Exporter: write the final panel to a single CSV file
//
// A run either produces the complete output file or fails outright; there
// is no retry, no partial output, and no resumption.
package fiscalpanel
