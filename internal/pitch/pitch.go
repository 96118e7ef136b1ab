// Package pitch reads simulated pitch-angle files: one "time angle" pair per
// line, whitespace separated, time in seconds and angle in degrees.
package pitch

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrMalformed is wrapped by every parse error.
var ErrMalformed = errors.New("pitch: malformed line")

// Event is one simulated electron: its start time and pitch angle.
type Event struct {
	Time  float64
	Angle float64
}

// Parse reads events from r. Blank lines and lines starting with '#' are
// skipped.
func Parse(r io.Reader) ([]Event, error) {
	var events []Event
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w %d: want 2 fields, got %d", ErrMalformed, line, len(fields))
		}
		t, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%w %d: time: %v", ErrMalformed, line, err)
		}
		a, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w %d: angle: %v", ErrMalformed, line, err)
		}
		events = append(events, Event{Time: t, Angle: a})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading pitch data: %w", err)
	}
	return events, nil
}

// ReadFile parses the pitch-angle file at path.
func ReadFile(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	events, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return events, nil
}

// Times returns the event times in file order.
func Times(events []Event) []float64 {
	out := make([]float64, len(events))
	for i, e := range events {
		out[i] = e.Time
	}
	return out
}

// Angles returns the pitch angles in file order.
func Angles(events []Event) []float64 {
	out := make([]float64, len(events))
	for i, e := range events {
		out[i] = e.Angle
	}
	return out
}
