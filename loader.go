package fiscalpanel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
)

// RawTable is a source as loaded: a header and string records, before any
// country resolution or reshaping.
type RawTable struct {
	Source  string
	Header  []string
	Records [][]string
}

// ColumnIndex returns the position of a header column.
func (t *RawTable) ColumnIndex(name string) (int, error) {
	for i, h := range t.Header {
		if h == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q in source %s", ErrMissingColumn, name, t.Source)
}

// Loader fetches one source into tabular form. A loader that cannot reach
// or parse its resource returns a *LoadError; there is no retry and no
// fallback to another loader.
type Loader interface {
	Name() string
	Load(ctx context.Context) (*RawTable, error)
}

// FileLoader reads a delimited file from the local data directory.
type FileLoader struct {
	name  string
	path  string
	comma rune
}

func NewFileLoader(name, path string, comma rune) *FileLoader {
	if comma == 0 {
		comma = ','
	}
	return &FileLoader{name: name, path: path, comma: comma}
}

func (l *FileLoader) Name() string { return l.name }

func (l *FileLoader) Load(ctx context.Context) (*RawTable, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, NewLoadError(l.name, fmt.Sprintf("open %s", l.path), err)
	}
	defer f.Close()

	table, err := readCSV(l.name, f, l.comma)
	if err != nil {
		return nil, NewLoadError(l.name, fmt.Sprintf("parse %s", l.path), err)
	}
	return table, nil
}

// HTTPLoader fetches a delimited file from a URL with a single blocking
// GET. A non-2xx status or transport failure aborts the run.
type HTTPLoader struct {
	name   string
	url    string
	comma  rune
	client *http.Client
}

func NewHTTPLoader(name, url string, comma rune, client *http.Client) *HTTPLoader {
	if comma == 0 {
		comma = ','
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPLoader{name: name, url: url, comma: comma, client: client}
}

func (l *HTTPLoader) Name() string { return l.name }

func (l *HTTPLoader) Load(ctx context.Context) (*RawTable, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, NewLoadError(l.name, "build request", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, NewLoadError(l.name, fmt.Sprintf("fetch %s", l.url), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, NewLoadError(l.name, fmt.Sprintf("fetch %s: status %d", l.url, resp.StatusCode), ErrSourceUnavailable)
	}

	table, err := readCSV(l.name, resp.Body, l.comma)
	if err != nil {
		return nil, NewLoadError(l.name, fmt.Sprintf("parse %s", l.url), err)
	}
	return table, nil
}

func readCSV(source string, r io.Reader, comma rune) (*RawTable, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.TrimLeadingSpace = true
	// Ragged rows show up in hand-collected files; length is validated
	// against the header below instead.
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var records [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		if len(rec) > len(header) {
			return nil, fmt.Errorf("record %d has %d fields, header has %d", len(records)+2, len(rec), len(header))
		}
		// Short rows are padded; trailing columns read as empty.
		for len(rec) < len(header) {
			rec = append(rec, "")
		}
		records = append(records, rec)
	}

	return &RawTable{Source: source, Header: header, Records: records}, nil
}
