package dates

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"adjcal/internal/prompt"

	appLog "adjcal/internal/log"
)

// DateLayout is the accepted input form, one date per line.
const DateLayout = "2006-01-02"

// datePattern gates lines before parsing: exactly 4-2-2 digits. Lines that
// fail the gate are format errors; lines that pass but do not parse (e.g.
// 2025-02-30) are invalid dates. time.Parse rejects out-of-range components
// rather than normalizing them, so no extra round-trip check is needed.
var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Rejection records a skipped input line and why it was skipped.
type Rejection struct {
	Line   int    // 1-based line number
	Text   string // trimmed line content
	Reason string // "format error" or "invalid date"
}

func (r Rejection) String() string {
	return fmt.Sprintf("L%d: %s (%s)", r.Line, r.Text, r.Reason)
}

// Result is the outcome of reading a dates file.
type Result struct {
	// Dates are the valid dates, deduplicated and sorted ascending.
	// All values are midnight UTC date stamps.
	Dates []time.Time
	// Rejected lists skipped lines in file order.
	Rejected []Rejection
	// Cancelled is true when the user declined the confirmation prompt.
	Cancelled bool
}

// Options control reading and confirmation behavior.
type Options struct {
	// CommentPrefix marks ignored lines (default "#").
	CommentPrefix string
	// Prompter supplies confirmation and retry answers.
	Prompter prompt.Prompter
	// Out receives the date listing and rejection report shown before
	// the confirmation prompt. Defaults to os.Stdout.
	Out io.Writer
}

// Read reads adjusted-workday dates from the file at path.
//
// Per-line failures never abort the scan. After scanning, a non-empty valid
// set is shown to the user for confirmation; declining yields a Cancelled
// result. An empty valid set (missing file, comments only, or all lines
// rejected) offers one retry with a different path. Read never returns an
// error: I/O failures are logged and fold into the empty-result flow.
func Read(path string, opts Options) Result {
	if opts.CommentPrefix == "" {
		opts.CommentPrefix = "#"
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	// One manual re-entry on an empty read, matching the interactive flow.
	for attempt := 0; ; attempt++ {
		res := scanFile(path, opts.CommentPrefix)

		if len(res.Dates) > 0 {
			report(opts.Out, path, res)
			if opts.Prompter.Confirm("Update the calendar with these dates?") {
				return res
			}
			appLog.Info("update cancelled by user")
			return Result{Cancelled: true, Rejected: res.Rejected}
		}

		if attempt > 0 {
			return res
		}
		if !opts.Prompter.Confirm("Try a different dates file?") {
			return res
		}
		next := opts.Prompter.Line("Path to dates file: ")
		if next == "" {
			return res
		}
		path = next
	}
}

// scanFile reads and validates every line of one file.
func scanFile(path, commentPrefix string) Result {
	var res Result

	appLog.Info("reading dates file", "path", path)

	f, err := os.Open(path)
	if err != nil {
		appLog.Error("cannot open dates file", err, "path", path)
		return res
	}
	defer f.Close()

	seen := make(map[string]struct{})
	lineNum := 0

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, commentPrefix) {
			continue
		}

		if !datePattern.MatchString(line) {
			appLog.Warn("skipping malformed line", "path", path, "line", lineNum, "text", line)
			res.Rejected = append(res.Rejected, Rejection{Line: lineNum, Text: line, Reason: "format error"})
			continue
		}

		d, perr := time.Parse(DateLayout, line)
		if perr != nil {
			appLog.Warn("skipping invalid date", "path", path, "line", lineNum, "text", line)
			res.Rejected = append(res.Rejected, Rejection{Line: lineNum, Text: line, Reason: "invalid date"})
			continue
		}

		key := d.Format(DateLayout)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		res.Dates = append(res.Dates, d)
	}
	if err := scanner.Err(); err != nil {
		appLog.Error("error while reading dates file", err, "path", path)
	}

	sort.Slice(res.Dates, func(i, j int) bool { return res.Dates[i].Before(res.Dates[j]) })

	switch {
	case len(res.Dates) == 0 && len(res.Rejected) == 0:
		appLog.Warn("dates file is empty or contains only comments", "path", path)
	case len(res.Dates) == 0:
		appLog.Warn("dates file contains no valid dates", "path", path, "rejected", len(res.Rejected))
	default:
		appLog.Info("dates file scanned", "path", path, "valid", len(res.Dates), "rejected", len(res.Rejected))
	}

	return res
}

// report prints the scan outcome for the user to review before confirming.
func report(w io.Writer, path string, res Result) {
	fmt.Fprintln(w, strings.Repeat("-", 20))
	fmt.Fprintf(w, "Read %d valid adjusted-workday date(s) from %s:\n", len(res.Dates), path)
	for _, d := range res.Dates {
		fmt.Fprintf(w, "- %s\n", d.Format(DateLayout))
	}
	if len(res.Rejected) > 0 {
		fmt.Fprintln(w, "\nSkipped lines:")
		for _, rej := range res.Rejected {
			fmt.Fprintf(w, "- %s\n", rej)
		}
	}
	fmt.Fprintln(w, strings.Repeat("-", 20))
}
