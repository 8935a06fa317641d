package activitylog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Action names a user-visible dashboard event.
type Action string

const (
	ActionLogin            Action = "login"
	ActionLoginFailed      Action = "login-failed"
	ActionLogout           Action = "logout"
	ActionExpired          Action = "expired"
	ActionAccountClosed    Action = "account-closed"
	ActionCloseRejected    Action = "close-rejected"
	ActionTransfer         Action = "transfer"
	ActionTransferRejected Action = "transfer-rejected"
	ActionLoanRequested    Action = "loan-requested"
	ActionLoanRejected     Action = "loan-rejected"
	ActionLoanPosted       Action = "loan-posted"
)

// Entry is one row in the activity log. Credentials never appear here.
type Entry struct {
	Timestamp time.Time
	SessionID string
	AccountID string
	Action    Action
	Details   string
}

// Header is the CSV header for activity-log.csv.
const Header = "timestamp,session_id,account_id,action,details"

const (
	numFields    = 5
	colTimestamp = 0
	colSession   = 1
	colAccount   = 2
	colAction    = 3
	colDetails   = 4
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colSession] = e.SessionID
	row[colAccount] = e.AccountID
	row[colAction] = string(e.Action)
	row[colDetails] = e.Details
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	return Entry{
		Timestamp: ts,
		SessionID: record[colSession],
		AccountID: record[colAccount],
		Action:    Action(record[colAction]),
		Details:   record[colDetails],
	}, nil
}

// Append writes entries to the log at path, creating the file, its
// directory, and the header if needed.
func Append(path string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating log dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read returns all entries from the log at path.
// Returns nil if the file does not exist.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading activity log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Recorder receives activity entries as they happen.
type Recorder interface {
	Record(e Entry) error
}

// FileRecorder appends every entry to a CSV file immediately.
type FileRecorder struct {
	mu   sync.Mutex
	path string
}

// NewFileRecorder creates a FileRecorder writing to path.
func NewFileRecorder(path string) *FileRecorder {
	return &FileRecorder{path: path}
}

// Record implements Recorder.
func (r *FileRecorder) Record(e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Append(r.path, []Entry{e})
}

// MemoryRecorder keeps entries in memory.
type MemoryRecorder struct {
	mu      sync.Mutex
	entries []Entry
}

// Record implements Recorder.
func (r *MemoryRecorder) Record(e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return nil
}

// Entries returns a copy of the recorded entries.
func (r *MemoryRecorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Actions returns the recorded actions in order.
func (r *MemoryRecorder) Actions() []Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Action, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Action
	}
	return out
}
