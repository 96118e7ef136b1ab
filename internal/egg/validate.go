package egg

import (
	"fmt"
	"strings"
)

// ValidationError lists everything wrong with an export.
type ValidationError struct {
	Path     string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("egg: %s is invalid: %s", e.Path, strings.Join(e.Problems, "; "))
}

// Validate checks that both Katydid groups are present and that the export
// carries StartTimeInAcq, which time matching depends on.
func Validate(f *File) error {
	var problems []string
	for _, g := range []string{GroupEvents, GroupTracks} {
		if !f.HasGroup(g) {
			problems = append(problems, fmt.Sprintf("no %s rows", g))
		}
	}
	if !f.HasColumn(StartTimeField) {
		problems = append(problems, fmt.Sprintf("no %s column", StartTimeField))
	}
	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Path: f.Path, Problems: problems}
}

// ValidateFile reads and validates the export at path. Read errors are
// reported as validation problems so a broken file is treated as invalid.
func ValidateFile(path string) (*File, error) {
	f, err := ReadFile(path)
	if err != nil {
		return nil, &ValidationError{Path: path, Problems: []string{err.Error()}}
	}
	return f, Validate(f)
}
