// Package realtime fans out "something changed" notifications to dashboard
// clients. A change names the table and the affected record; clients refetch.
package realtime

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	TableAttendances = "attendances"
	TableEmployees   = "employees"
	TableAdvances    = "salary_advances"
	TableSettings    = "attendance_settings"
	TableSessions    = "sessions"
)

// Tables lists every table a client may subscribe to.
var Tables = []string{TableAttendances, TableEmployees, TableAdvances, TableSettings, TableSessions}

// IsKnownTable reports whether table is in Tables.
func IsKnownTable(table string) bool {
	for _, t := range Tables {
		if t == table {
			return true
		}
	}
	return false
}

type Action string

const (
	ActionInsert Action = "insert"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Change is one row-level change event.
type Change struct {
	ID       string    `json:"id"`
	Table    string    `json:"table"`
	Action   Action    `json:"action"`
	RecordID string    `json:"record_id,omitempty"`
	At       time.Time `json:"at"`
}

// NewChange stamps a change with a fresh id and the current time.
func NewChange(table string, action Action, recordID string) Change {
	return Change{
		ID:       uuid.NewString(),
		Table:    table,
		Action:   action,
		RecordID: recordID,
		At:       time.Now().UTC(),
	}
}

// Publisher delivers a change to subscribers, possibly on other instances.
type Publisher interface {
	Publish(ctx context.Context, change Change) error
}

// Nop discards every change.
type Nop struct{}

func (Nop) Publish(context.Context, Change) error { return nil }
