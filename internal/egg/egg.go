// Package egg reads Katydid candidate exports.
//
// An export is a CSV file with a header row. The Group column names the
// Katydid group a row came from (candidates or candidate_tracks); the other
// columns carry Katydid variable names. Known variables land in Candidate
// fields, any other numeric column is kept in Candidate.Extra.
package egg

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/katydid-analysis/eggmatch/internal/seed"
)

// Katydid group and variable names.
const (
	GroupColumn    = "Group"
	GroupEvents    = "candidates"
	GroupTracks    = "candidate_tracks"
	StartTimeField = "StartTimeInAcq"
)

// ErrFormat is wrapped by errors about the file layout.
var ErrFormat = errors.New("egg: bad export format")

// Candidate is one row of a candidates or candidate_tracks table.
type Candidate struct {
	EventID        int64
	StartTimeInAcq float64
	EndTimeInAcq   float64
	StartFrequency float64
	EndFrequency   float64
	Slope          float64
	TotalPower     float64
	Extra          map[string]float64
}

// File is a parsed export.
type File struct {
	Seed       string
	Path       string
	Columns    []string
	Candidates []Candidate
	Tracks     []Candidate
	// groups counts rows per group name, including unknown groups.
	groups map[string]int
}

// HasColumn reports whether the export header carries name.
func (f *File) HasColumn(name string) bool {
	for _, c := range f.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// HasGroup reports whether any row belongs to group.
func (f *File) HasGroup(group string) bool {
	return f.groups[group] > 0
}

// ReadFile parses the export at path. The seed comes from the file name.
func ReadFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	f, err := Parse(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.Path = path
	f.Seed, _ = seed.Extract(filepath.Base(path))
	return f, nil
}

// Parse reads an export from r.
func Parse(r io.Reader) (*File, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", ErrFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	groupCol := -1
	for i, h := range header {
		if h == GroupColumn {
			groupCol = i
		}
	}
	if groupCol < 0 {
		return nil, fmt.Errorf("%w: missing %q column", ErrFormat, GroupColumn)
	}

	f := &File{Columns: header, groups: make(map[string]int)}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading rows: %w", err)
		}
		line, _ := cr.FieldPos(0)

		group := strings.TrimSpace(rec[groupCol])
		c, err := parseCandidate(header, rec, groupCol)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrFormat, line, err)
		}
		f.groups[group]++
		switch group {
		case GroupEvents:
			f.Candidates = append(f.Candidates, c)
		case GroupTracks:
			f.Tracks = append(f.Tracks, c)
		}
	}
	return f, nil
}

func parseCandidate(header, rec []string, groupCol int) (Candidate, error) {
	var c Candidate
	for i, raw := range rec {
		if i == groupCol {
			continue
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		name := header[i]
		if name == "EventID" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return c, fmt.Errorf("EventID %q: %v", raw, err)
			}
			c.EventID = id
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return c, fmt.Errorf("%s %q: %v", name, raw, err)
		}
		if !c.set(name, v) {
			if c.Extra == nil {
				c.Extra = make(map[string]float64)
			}
			c.Extra[name] = v
		}
	}
	return c, nil
}

func (c *Candidate) set(name string, v float64) bool {
	switch name {
	case StartTimeField:
		c.StartTimeInAcq = v
	case "EndTimeInAcq":
		c.EndTimeInAcq = v
	case "StartFrequency":
		c.StartFrequency = v
	case "EndFrequency":
		c.EndFrequency = v
	case "Slope":
		c.Slope = v
	case "TotalPower":
		c.TotalPower = v
	default:
		return false
	}
	return true
}

// Field returns the named variable of c.
func (c Candidate) Field(name string) (float64, bool) {
	switch name {
	case "EventID":
		return float64(c.EventID), true
	case StartTimeField:
		return c.StartTimeInAcq, true
	case "EndTimeInAcq":
		return c.EndTimeInAcq, true
	case "StartFrequency":
		return c.StartFrequency, true
	case "EndFrequency":
		return c.EndFrequency, true
	case "Slope":
		return c.Slope, true
	case "TotalPower":
		return c.TotalPower, true
	}
	v, ok := c.Extra[name]
	return v, ok
}

// Times returns StartTimeInAcq of each candidate.
func Times(cands []Candidate) []float64 {
	out := make([]float64, len(cands))
	for i, c := range cands {
		out[i] = c.StartTimeInAcq
	}
	return out
}

// Values returns the named variable of each candidate that has it.
func Values(cands []Candidate, name string) []float64 {
	out := make([]float64, 0, len(cands))
	for _, c := range cands {
		if v, ok := c.Field(name); ok {
			out = append(out, v)
		}
	}
	return out
}
