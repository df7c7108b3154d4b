// Package importer feeds bulk project lists into the database.
//
// [ReadCSV] parses a survey export with a header row into projects and
// [Run] submits them one at a time. A bad row never aborts the import: blank
// and malformed rows are counted and skipped by the reader, and every other
// row gets its own [store.InsertResult].
package importer

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/matzehuels/impactgraph/pkg/entity"
	errs "github.com/matzehuels/impactgraph/pkg/errors"
)

// ErrMissingColumn is returned when the header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// Header aliases, compared case-insensitively after trimming.
var (
	nameColumns        = []string{"project name", "project", "name"}
	handleColumns      = []string{"twitter handle", "handle", "twitter"}
	descriptionColumns = []string{"description"}
	websiteColumns     = []string{"website", "url"}
	metricsColumns     = []string{"metrics", "metrics url", "metrics_url"}
)

// Stats counts the rows read from an import file.
type Stats struct {
	// Rows is the number of data rows, excluding the header.
	Rows int
	// Blank rows miss the project name or the handle.
	Blank int
	// Malformed rows could not be parsed.
	Malformed int
}

// Accepted returns the number of rows turned into projects.
func (s Stats) Accepted() int { return s.Rows - s.Blank - s.Malformed }

type columns struct {
	name, handle, description, website, metrics int
}

// ReadCSV parses r into projects. The first row is the header; the name and
// handle columns are required, description, website and metrics are
// optional. Rows with a blank name or handle are dropped and counted in
// Stats.Blank; rows the CSV reader rejects are counted in Stats.Malformed.
func ReadCSV(r io.Reader) ([]entity.Project, Stats, error) {
	var stats Stats

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, stats, errs.Wrap(errs.ErrCodeInvalidInput, ErrMissingColumn, "empty import file")
	}
	if err != nil {
		return nil, stats, errs.Wrap(errs.ErrCodeInvalidInput, err, "read header")
	}
	cols, err := findColumns(header)
	if err != nil {
		return nil, stats, err
	}

	var projects []entity.Project
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		stats.Rows++
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				stats.Malformed++
				continue
			}
			return projects, stats, errs.Wrap(errs.ErrCodeInvalidInput, err, "read row %d", stats.Rows)
		}

		p := entity.Project{
			Name:        field(row, cols.name),
			Handle:      field(row, cols.handle),
			Description: field(row, cols.description),
			Website:     field(row, cols.website),
			MetricsURL:  field(row, cols.metrics),
		}
		if p.Name == "" || p.Handle == "" {
			stats.Blank++
			continue
		}
		projects = append(projects, p)
	}
	return projects, stats, nil
}

func findColumns(header []string) (columns, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}
	lookup := func(aliases []string) int {
		for _, a := range aliases {
			if i, ok := index[a]; ok {
				return i
			}
		}
		return -1
	}

	cols := columns{
		name:        lookup(nameColumns),
		handle:      lookup(handleColumns),
		description: lookup(descriptionColumns),
		website:     lookup(websiteColumns),
		metrics:     lookup(metricsColumns),
	}
	if cols.name < 0 {
		return cols, errs.Wrap(errs.ErrCodeInvalidInput, ErrMissingColumn, "no %q column", "Project Name")
	}
	if cols.handle < 0 {
		return cols, errs.Wrap(errs.ErrCodeInvalidInput, ErrMissingColumn, "no %q column", "Twitter Handle")
	}
	return cols, nil
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
