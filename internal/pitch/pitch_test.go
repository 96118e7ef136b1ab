package pitch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	input := `# time angle
0.0100  89.5

0.0250	88.25
3e-2 90
`
	events, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, []float64{0.01, 0.025, 0.03}, Times(events))
	assert.Equal(t, []float64{89.5, 88.25, 90}, Angles(events))
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"one field", "0.1\n", "line 1: want 2 fields"},
		{"three fields", "0.1 2 3\n", "want 2 fields, got 3"},
		{"bad time", "0.1 80\nabc 80\n", "line 2: time"},
		{"bad angle", "0.1 eighty\n", "line 1: angle"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.ErrorIs(t, err, ErrMalformed)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pitchangles_Seed1.txt")
	require.NoError(t, os.WriteFile(path, []byte("1 2\n3 4\n"), 0o644))

	events, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []Event{{1, 2}, {3, 4}}, events)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestEmpty(t *testing.T) {
	events, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Empty(t, Times(events))
}
