package dates

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedPrompter feeds canned answers to Read instead of a console.
type scriptedPrompter struct {
	confirms []bool
	lines    []string
}

func (p *scriptedPrompter) Confirm(string) bool {
	if len(p.confirms) == 0 {
		return false
	}
	v := p.confirms[0]
	p.confirms = p.confirms[1:]
	return v
}

func (p *scriptedPrompter) Line(string) string {
	if len(p.lines) == 0 {
		return ""
	}
	v := p.lines[0]
	p.lines = p.lines[1:]
	return v
}

func writeDatesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "adjusted_dates.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRead(t *testing.T) {
	t.Run("valid date with comment and blank lines", func(t *testing.T) {
		path := writeDatesFile(t, "# test\n\n2025-01-26\n")
		var out bytes.Buffer

		res := Read(path, Options{
			Prompter: &scriptedPrompter{confirms: []bool{true}},
			Out:      &out,
		})

		assert.False(t, res.Cancelled)
		assert.Equal(t, []time.Time{day(2025, time.January, 26)}, res.Dates)
		assert.Empty(t, res.Rejected)
		assert.Contains(t, out.String(), "2025-01-26")
	})

	t.Run("calendrically invalid date offers retry", func(t *testing.T) {
		path := writeDatesFile(t, "2025-02-30\n")

		// Decline the retry prompt.
		res := Read(path, Options{
			Prompter: &scriptedPrompter{confirms: []bool{false}},
			Out:      &bytes.Buffer{},
		})

		assert.Empty(t, res.Dates)
		require.Len(t, res.Rejected, 1)
		assert.Equal(t, "invalid date", res.Rejected[0].Reason)
		assert.Equal(t, 1, res.Rejected[0].Line)
	})

	t.Run("malformed lines are skipped, valid lines kept", func(t *testing.T) {
		path := writeDatesFile(t, "2025-1-26\nnot a date\n2025-02-08\n2025-13-01\n")
		var out bytes.Buffer

		res := Read(path, Options{
			Prompter: &scriptedPrompter{confirms: []bool{true}},
			Out:      &out,
		})

		assert.Equal(t, []time.Time{day(2025, time.February, 8)}, res.Dates)
		require.Len(t, res.Rejected, 3)
		assert.Equal(t, "format error", res.Rejected[0].Reason)
		assert.Equal(t, "format error", res.Rejected[1].Reason)
		assert.Equal(t, "invalid date", res.Rejected[2].Reason)
		assert.Contains(t, out.String(), "Skipped lines:")
	})

	t.Run("dates are deduplicated and sorted", func(t *testing.T) {
		path := writeDatesFile(t, "2025-02-08\n2025-01-26\n2025-02-08\n")

		res := Read(path, Options{
			Prompter: &scriptedPrompter{confirms: []bool{true}},
			Out:      &bytes.Buffer{},
		})

		assert.Equal(t, []time.Time{
			day(2025, time.January, 26),
			day(2025, time.February, 8),
		}, res.Dates)
	})

	t.Run("declined confirmation cancels", func(t *testing.T) {
		path := writeDatesFile(t, "2025-01-26\n")

		res := Read(path, Options{
			Prompter: &scriptedPrompter{confirms: []bool{false}},
			Out:      &bytes.Buffer{},
		})

		assert.True(t, res.Cancelled)
		assert.Empty(t, res.Dates)
	})

	t.Run("missing file retries with a new path", func(t *testing.T) {
		good := writeDatesFile(t, "2025-01-26\n")
		missing := filepath.Join(t.TempDir(), "nope.txt")

		res := Read(missing, Options{
			Prompter: &scriptedPrompter{
				confirms: []bool{true, true}, // retry, then confirm dates
				lines:    []string{good},
			},
			Out: &bytes.Buffer{},
		})

		assert.Equal(t, []time.Time{day(2025, time.January, 26)}, res.Dates)
	})

	t.Run("only one retry is offered", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "nope.txt")

		p := &scriptedPrompter{
			confirms: []bool{true, true, true},
			lines:    []string{missing, missing},
		}
		res := Read(missing, Options{Prompter: p, Out: &bytes.Buffer{}})

		assert.Empty(t, res.Dates)
		// The second empty scan must return without consuming another retry.
		assert.Len(t, p.lines, 1)
	})

	t.Run("comments-only file yields empty result", func(t *testing.T) {
		path := writeDatesFile(t, "# only\n# comments\n\n")

		res := Read(path, Options{
			Prompter: &scriptedPrompter{confirms: []bool{false}},
			Out:      &bytes.Buffer{},
		})

		assert.Empty(t, res.Dates)
		assert.Empty(t, res.Rejected)
		assert.False(t, res.Cancelled)
	})

	t.Run("custom comment prefix", func(t *testing.T) {
		path := writeDatesFile(t, "; note\n2025-01-26\n")

		res := Read(path, Options{
			CommentPrefix: ";",
			Prompter:      &scriptedPrompter{confirms: []bool{true}},
			Out:           &bytes.Buffer{},
		})

		assert.Equal(t, []time.Time{day(2025, time.January, 26)}, res.Dates)
		assert.Empty(t, res.Rejected)
	})
}
