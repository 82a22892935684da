package models

import "time"

// CurrentSchemaVersion is the version of the persisted payload layout.
// Bump it together with a new migration step in the services package.
const CurrentSchemaVersion = 1

// StoredData is the full persisted payload: every tracked record plus the
// preferences and metadata blobs that travel with it through export, import
// and backup restore.
type StoredData struct {
	Records       []PainRecord   `json:"records"`
	Preferences   map[string]any `json:"preferences"`
	SchemaVersion int            `json:"schemaVersion"`
	LastBackup    *time.Time     `json:"lastBackup,omitempty"`
	Metadata      map[string]any `json:"metadata"`
}

// EmptyStoredData returns a payload with all collections initialized, so
// callers never have to distinguish a fresh store from a missing one.
func EmptyStoredData() StoredData {
	return StoredData{
		Records:       []PainRecord{},
		Preferences:   map[string]any{},
		SchemaVersion: CurrentSchemaVersion,
		Metadata:      map[string]any{},
	}
}
