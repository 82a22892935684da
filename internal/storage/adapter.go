package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/terraincognita07/selene/internal/apperrors"
	"github.com/terraincognita07/selene/internal/models"
)

// Storage keys. Every persisted payload lives under one of these, plus the
// timestamped backup keys produced by CreateAutoBackup.
const (
	KeyRecords       = "enhanced_pain_tracker_records"
	KeyPreferences   = "enhanced_pain_tracker_preferences"
	KeySchemaVersion = "enhanced_pain_tracker_schema_version"
	KeyMetadata      = "enhanced_pain_tracker_metadata"

	BackupKeyPrefix = "pain_tracker_backup_"

	availabilityProbeKey = "enhanced_pain_tracker_probe"
)

const (
	DefaultQuotaBytes  = 5 * 1024 * 1024
	maxRetainedBackups = 5
	backupRetention    = 30 * 24 * time.Hour
)

// KeyValueStore is the host storage the adapter writes through. The db
// package provides the sqlite-backed implementation; tests use in-memory
// stubs.
type KeyValueStore interface {
	Get(key string) (string, bool, error)
	Set(key string, value string) error
	SetMany(entries map[string]string) error
	Delete(key string) error
	Keys(prefix string) ([]string, error)
	TotalSize() (int64, error)
}

type QuotaInfo struct {
	Usage     int64 `json:"usage"`
	Quota     int64 `json:"quota"`
	Available int64 `json:"available"`
}

// LocalStoreAdapter wraps a KeyValueStore with JSON serialization, a
// retry-once write policy, quota accounting and backup rotation.
type LocalStoreAdapter struct {
	store      KeyValueStore
	quotaBytes int64
	logger     *zap.Logger
	now        func() time.Time
}

func NewLocalStoreAdapter(store KeyValueStore, quotaBytes int64, logger *zap.Logger) *LocalStoreAdapter {
	if quotaBytes <= 0 {
		quotaBytes = DefaultQuotaBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalStoreAdapter{
		store:      store,
		quotaBytes: quotaBytes,
		logger:     logger,
		now:        time.Now,
	}
}

// Save serializes value to JSON and writes it under key. A failed write is
// retried once before the error is surfaced.
func (adapter *LocalStoreAdapter) Save(key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeStorageError, fmt.Sprintf("failed to save data for key %s", key), err)
	}
	if err := adapter.setWithRetry(key, string(payload)); err != nil {
		return apperrors.Wrap(apperrors.CodeStorageError, fmt.Sprintf("failed to save data for key %s", key), err)
	}
	return nil
}

// Load reads the payload under key into target. It reports false when the
// key has never been written.
func (adapter *LocalStoreAdapter) Load(key string, target any) (bool, error) {
	raw, found, err := adapter.store.Get(key)
	if err != nil {
		raw, found, err = adapter.store.Get(key)
	}
	if err != nil {
		return false, apperrors.Wrap(apperrors.CodeStorageError, fmt.Sprintf("failed to load data for key %s", key), err)
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), target); err != nil {
		return false, apperrors.Wrap(apperrors.CodeStorageError, fmt.Sprintf("failed to load data for key %s", key), err)
	}
	return true, nil
}

func (adapter *LocalStoreAdapter) Remove(key string) error {
	err := adapter.store.Delete(key)
	if err != nil {
		err = adapter.store.Delete(key)
	}
	if err != nil {
		return apperrors.Wrap(apperrors.CodeStorageError, fmt.Sprintf("failed to remove data for key %s", key), err)
	}
	return nil
}

// Clear removes the live payload keys. Backups are left in place so a clear
// can still be undone through RestoreFromBackup.
func (adapter *LocalStoreAdapter) Clear() error {
	for _, key := range liveKeys() {
		if err := adapter.Remove(key); err != nil {
			return apperrors.Wrap(apperrors.CodeStorageError, "failed to clear stored data", err)
		}
	}
	return nil
}

// GetSize reports the combined serialized size of the live payload keys.
func (adapter *LocalStoreAdapter) GetSize() (int64, error) {
	var total int64
	for _, key := range liveKeys() {
		raw, found, err := adapter.store.Get(key)
		if err != nil {
			return 0, apperrors.Wrap(apperrors.CodeStorageError, "failed to measure stored data size", err)
		}
		if found {
			total += int64(len(raw))
		}
	}
	return total, nil
}

// IsAvailable probes the host store with a write/read/delete cycle.
func (adapter *LocalStoreAdapter) IsAvailable() bool {
	if adapter.store == nil {
		return false
	}
	if err := adapter.store.Set(availabilityProbeKey, "probe"); err != nil {
		return false
	}
	if _, found, err := adapter.store.Get(availabilityProbeKey); err != nil || !found {
		return false
	}
	return adapter.store.Delete(availabilityProbeKey) == nil
}

// GetQuotaInfo reports usage against the configured quota. When the host
// store is absent or unreadable, all figures are zero.
func (adapter *LocalStoreAdapter) GetQuotaInfo() QuotaInfo {
	if adapter.store == nil {
		return QuotaInfo{}
	}
	usage, err := adapter.store.TotalSize()
	if err != nil {
		adapter.logger.Warn("quota usage unavailable", zap.Error(err))
		return QuotaInfo{}
	}
	available := adapter.quotaBytes - usage
	if available < 0 {
		available = 0
	}
	return QuotaInfo{Usage: usage, Quota: adapter.quotaBytes, Available: available}
}

func (adapter *LocalStoreAdapter) setWithRetry(key string, value string) error {
	if err := adapter.store.Set(key, value); err != nil {
		adapter.logger.Warn("store write failed, retrying once", zap.String("key", key), zap.Error(err))
		return adapter.store.Set(key, value)
	}
	return nil
}

func liveKeys() []string {
	return []string{KeyRecords, KeyPreferences, KeySchemaVersion, KeyMetadata}
}

// snapshotStoredData assembles the full persisted payload, substituting
// defaults for keys that have never been written.
func (adapter *LocalStoreAdapter) snapshotStoredData() (models.StoredData, error) {
	data := models.EmptyStoredData()

	records := make([]models.PainRecord, 0)
	if found, err := adapter.Load(KeyRecords, &records); err != nil {
		return models.StoredData{}, err
	} else if found {
		data.Records = records
	}

	preferences := map[string]any{}
	if found, err := adapter.Load(KeyPreferences, &preferences); err != nil {
		return models.StoredData{}, err
	} else if found {
		data.Preferences = preferences
	}

	var schemaVersion int
	if found, err := adapter.Load(KeySchemaVersion, &schemaVersion); err != nil {
		return models.StoredData{}, err
	} else if found {
		data.SchemaVersion = schemaVersion
	}

	metadata := map[string]any{}
	if found, err := adapter.Load(KeyMetadata, &metadata); err != nil {
		return models.StoredData{}, err
	} else if found {
		data.Metadata = metadata
	}

	return data, nil
}

// writeStoredData persists the payload across all live keys in one store
// transaction.
func (adapter *LocalStoreAdapter) writeStoredData(data models.StoredData) error {
	entries := make(map[string]string, 4)

	recordsJSON, err := json.Marshal(data.Records)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeStorageError, "failed to serialize records", err)
	}
	entries[KeyRecords] = string(recordsJSON)

	preferencesJSON, err := json.Marshal(data.Preferences)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeStorageError, "failed to serialize preferences", err)
	}
	entries[KeyPreferences] = string(preferencesJSON)

	versionJSON, err := json.Marshal(data.SchemaVersion)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeStorageError, "failed to serialize schema version", err)
	}
	entries[KeySchemaVersion] = string(versionJSON)

	metadataJSON, err := json.Marshal(data.Metadata)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeStorageError, "failed to serialize metadata", err)
	}
	entries[KeyMetadata] = string(metadataJSON)

	if err := adapter.store.SetMany(entries); err != nil {
		return apperrors.Wrap(apperrors.CodeStorageError, "failed to write stored data", err)
	}
	return nil
}
