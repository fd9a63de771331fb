// Package pid holds the static OBD-II parameter metadata the protocol core
// consults: which mode/PID code a named sensor lives at, how many data bytes
// its reply carries, and the formula that turns those bytes into an
// engineering value.
package pid

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownPID is returned when a lookup names a sensor that is not
// present in the table.
var ErrUnknownPID = errors.New("unknown PID")

// Record describes one parameter the vehicle can report.
type Record struct {
	// Name is the lookup key applications use, e.g. "rpm".
	Name string
	// Mode is the 2-hex-digit service code, e.g. "01" for live data.
	Mode string
	// PID is the 2-hex-digit parameter code within the mode. Empty for
	// whole-mode records such as the stored-DTC request.
	PID string
	// Bytes is how many data bytes the Convert formula consumes.
	Bytes int
	// Unit is the unit of the converted value, informational only.
	Unit string
	// Convert turns exactly Bytes data bytes into an engineering value.
	// Nil for records decoded by a dedicated path (stored DTCs).
	Convert func(data []byte) float64
}

// Command returns the wire command body requesting this record,
// e.g. "010C" for engine RPM.
func (r Record) Command() string {
	return r.Mode + r.PID
}

// Table is an ordered list of parameter records. Lookups are linear; the
// table is small and consulted only on request and decode paths.
type Table []Record

// ByName finds the record whose name matches (case-insensitively).
func (t Table) ByName(name string) (Record, error) {
	for _, rec := range t {
		if strings.EqualFold(rec.Name, name) {
			return rec, nil
		}
	}
	return Record{}, fmt.Errorf("%w: %q", ErrUnknownPID, name)
}

// ByPID finds the record for a mode/PID code pair.
func (t Table) ByPID(mode, pid string) (Record, bool) {
	for _, rec := range t {
		if rec.PID != "" && strings.EqualFold(rec.Mode, mode) && strings.EqualFold(rec.PID, pid) {
			return rec, true
		}
	}
	return Record{}, false
}

// ByMode finds the whole-mode record (one with no PID code) for mode.
func (t Table) ByMode(mode string) (Record, bool) {
	for _, rec := range t {
		if rec.PID == "" && strings.EqualFold(rec.Mode, mode) {
			return rec, true
		}
	}
	return Record{}, false
}
