package storage

import (
	"encoding/json"

	"github.com/terraincognita07/selene/internal/apperrors"
	"github.com/terraincognita07/selene/internal/models"
)

// Export assembles the full payload for transfer, stamping the export time
// into the lastBackup field.
func (adapter *LocalStoreAdapter) Export() (models.StoredData, error) {
	data, err := adapter.snapshotStoredData()
	if err != nil {
		return models.StoredData{}, apperrors.Wrap(apperrors.CodeStorageError, "failed to export stored data", err)
	}
	exportedAt := adapter.now().UTC()
	data.LastBackup = &exportedAt
	return data, nil
}

// Restore replaces the live payload with a previously exported one. The
// payload must at least carry a records array.
func (adapter *LocalStoreAdapter) Restore(payload []byte) error {
	var probe struct {
		Records json.RawMessage `json:"records"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return apperrors.Wrap(apperrors.CodeStorageError, "invalid restore data format", err)
	}
	if probe.Records == nil {
		return apperrors.New(apperrors.CodeStorageError, "invalid restore data format")
	}

	var data models.StoredData
	if err := json.Unmarshal(payload, &data); err != nil {
		return apperrors.Wrap(apperrors.CodeStorageError, "invalid restore data format", err)
	}
	if data.Preferences == nil {
		data.Preferences = map[string]any{}
	}
	if data.Metadata == nil {
		data.Metadata = map[string]any{}
	}
	if data.SchemaVersion == 0 {
		data.SchemaVersion = models.CurrentSchemaVersion
	}

	return adapter.writeStoredData(data)
}
