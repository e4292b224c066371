package ics

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "adjcal/internal/log"
)

const dateLayout = "2006-01-02"

// Store wraps an iCalendar document together with the set of dates already
// covered by adjusted-workday events. It is the only place that touches the
// calendar library; callers deal in file paths and time.Time values.
type Store struct {
	cal     *ical.Calendar
	summary string
	covered map[string]struct{}

	// Fresh is true when the store did not come from a parsed file.
	Fresh bool
	// DiscardedContent is true when the target file held non-empty content
	// that was not usable as a calendar. Saving over it loses that content,
	// so callers should ask before overwriting.
	DiscardedContent bool
}

// LoadOrCreate opens the calendar file at path, scanning it for existing
// events whose SUMMARY equals summary and recording their dates.
//
// A missing file yields a fresh empty calendar. A file that does not look
// like a VCALENDAR container, or that fails to parse, also yields a fresh
// calendar (with DiscardedContent set when real content would be lost);
// no failure propagates to the caller.
func LoadOrCreate(path, summary, productID string) *Store {
	s := &Store{
		summary: summary,
		covered: make(map[string]struct{}),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			appLog.Error("cannot read calendar file, starting fresh", err, "path", path)
			s.DiscardedContent = true
		} else {
			appLog.Info("calendar file does not exist, creating a new calendar", "path", path)
		}
		s.cal = newCalendar(productID)
		s.Fresh = true
		return s
	}

	trimmed := strings.TrimSpace(string(data))
	if !strings.HasPrefix(trimmed, "BEGIN:VCALENDAR") || !strings.HasSuffix(trimmed, "END:VCALENDAR") {
		appLog.Warn("calendar file content is not iCalendar, starting fresh", "path", path)
		s.cal = newCalendar(productID)
		s.Fresh = true
		s.DiscardedContent = trimmed != ""
		return s
	}

	cal, err := ical.ParseCalendar(strings.NewReader(string(data)))
	if err != nil {
		appLog.Error("calendar parse failed, starting fresh", err, "path", path)
		s.cal = newCalendar(productID)
		s.Fresh = true
		s.DiscardedContent = true
		return s
	}

	s.cal = cal
	for _, ve := range cal.Events() {
		sumProp := ve.GetProperty(ical.ComponentPropertySummary)
		if sumProp == nil || sumProp.Value != summary {
			// Unrelated events stay in the document but are not tracked.
			continue
		}
		dtProp := ve.GetProperty(ical.ComponentPropertyDtStart)
		if dtProp == nil || dtProp.Value == "" {
			continue
		}
		d, perr := parseICSTime(dtProp.Value)
		if perr != nil {
			// Log and skip this event, but keep scanning others.
			appLog.Error("unreadable DTSTART on existing event", perr, "path", path, "value", dtProp.Value)
			continue
		}
		// A date-with-time value normalizes to its date component.
		s.covered[d.Format(dateLayout)] = struct{}{}
	}

	appLog.Info("calendar loaded", "path", path, "covered", len(s.covered), "summary", summary)
	return s
}

func newCalendar(productID string) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetProductId(productID)
	return cal
}

// Merge adds one all-day event per candidate date not already covered,
// in ascending date order, and returns the number of events added.
// Dates already covered are skipped silently; duplicates within the batch
// are added once.
func (s *Store) Merge(candidates []time.Time) int {
	sorted := make([]time.Time, len(candidates))
	copy(sorted, candidates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	added := 0
	for _, d := range sorted {
		key := d.Format(dateLayout)
		if _, ok := s.covered[key]; ok {
			continue
		}

		ev := s.cal.AddEvent(fmt.Sprintf("adjusted-%s@adjcal", d.Format("20060102")))
		ev.SetSummary(s.summary)
		ev.SetDtStampTime(time.Now().UTC())
		// DTEND is the following day, exclusive, per the all-day convention.
		ev.SetAllDayStartAt(d)
		ev.SetAllDayEndAt(d.AddDate(0, 0, 1))

		s.covered[key] = struct{}{}
		added++
		appLog.Info("event added", "summary", s.summary, "date", key)
	}

	return added
}

// Has reports whether an adjusted-workday event exists for the given date.
func (s *Store) Has(d time.Time) bool {
	_, ok := s.covered[d.Format(dateLayout)]
	return ok
}

// CoveredCount returns the number of dates with a matching event.
func (s *Store) CoveredCount() int {
	return len(s.covered)
}

// EventCount returns the total number of events in the document,
// matching-titled or not.
func (s *Store) EventCount() int {
	return len(s.cal.Events())
}

// Save serializes the calendar and writes it to path atomically
// (temp file in the target directory, then rename), so a failed write
// leaves any previous file untouched.
func (s *Store) Save(path string) error {
	if path == "" {
		return errors.New("calendar path is empty")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".adjcal-calendar-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.WriteString(s.cal.Serialize()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// parseICSTime parses a basic ICS date/date-time string into time.Time.
// DTSTART values come in three shapes: UTC-suffixed, floating local, and
// date-only (all-day).
func parseICSTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, errors.New("empty time value")
	}

	// UTC form, e.g., 20250101T090000Z
	if strings.HasSuffix(v, "Z") {
		const layout = "20060102T150405Z"
		return time.Parse(layout, v)
	}

	// Local date-time, e.g., 20250101T090000
	if strings.Contains(v, "T") {
		const layout = "20060102T150405"
		return time.ParseInLocation(layout, v, time.Local)
	}

	// Date-only (all-day), e.g., 20250101
	const layoutDate = "20060102"
	return time.ParseInLocation(layoutDate, v, time.Local)
}
