package storage

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/terraincognita07/selene/internal/apperrors"
)

// Backup keys embed a fixed-width UTC timestamp, so lexicographic key order
// is chronological order.
const backupTimestampLayout = "2006-01-02T15:04:05.000Z"

// CreateAutoBackup snapshots the full payload under a timestamped backup key
// and evicts the oldest backups beyond the retained maximum.
func (adapter *LocalStoreAdapter) CreateAutoBackup() (string, error) {
	snapshot, err := adapter.snapshotStoredData()
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeStorageError, "failed to create backup", err)
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeStorageError, "failed to create backup", err)
	}

	key, err := adapter.nextBackupKey()
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeStorageError, "failed to create backup", err)
	}
	if err := adapter.setWithRetry(key, string(payload)); err != nil {
		return "", apperrors.Wrap(apperrors.CodeStorageError, "failed to create backup", err)
	}

	if err := adapter.enforceBackupLimit(); err != nil {
		adapter.logger.Warn("backup rotation failed", zap.Error(err))
	}
	return key, nil
}

// ListBackups returns all backup keys, newest first.
func (adapter *LocalStoreAdapter) ListBackups() ([]string, error) {
	keys, err := adapter.store.Keys(BackupKeyPrefix)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageError, "failed to list backups", err)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return keys, nil
}

// RestoreFromBackup replaces the live payload with the named backup. The
// write covers every live key in one transaction.
func (adapter *LocalStoreAdapter) RestoreFromBackup(key string) error {
	raw, found, err := adapter.store.Get(key)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeStorageError, "failed to restore from backup", err)
	}
	if !found {
		return apperrors.New(apperrors.CodeBackupNotFound, "backup not found")
	}

	var snapshot struct {
		Records       json.RawMessage `json:"records"`
		Preferences   json.RawMessage `json:"preferences"`
		SchemaVersion json.RawMessage `json:"schemaVersion"`
		Metadata      json.RawMessage `json:"metadata"`
	}
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		return apperrors.Wrap(apperrors.CodeStorageError, "failed to restore from backup", err)
	}
	if snapshot.Records == nil {
		return apperrors.New(apperrors.CodeStorageError, "failed to restore from backup: payload has no records")
	}

	entries := map[string]string{
		KeyRecords:       string(snapshot.Records),
		KeyPreferences:   rawOrDefault(snapshot.Preferences, "{}"),
		KeySchemaVersion: rawOrDefault(snapshot.SchemaVersion, "1"),
		KeyMetadata:      rawOrDefault(snapshot.Metadata, "{}"),
	}
	if err := adapter.store.SetMany(entries); err != nil {
		return apperrors.Wrap(apperrors.CodeStorageError, "failed to restore from backup", err)
	}
	return nil
}

// CleanupOldBackups deletes backups older than the retention window and
// returns how many were removed.
func (adapter *LocalStoreAdapter) CleanupOldBackups() (int, error) {
	keys, err := adapter.store.Keys(BackupKeyPrefix)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeStorageError, "failed to clean up backups", err)
	}

	cutoff := adapter.now().UTC().Add(-backupRetention)
	removed := 0
	for _, key := range keys {
		createdAt, ok := parseBackupTimestamp(key)
		if !ok {
			continue
		}
		if createdAt.Before(cutoff) {
			if err := adapter.store.Delete(key); err != nil {
				return removed, apperrors.Wrap(apperrors.CodeStorageError, "failed to clean up backups", err)
			}
			removed++
		}
	}
	return removed, nil
}

// nextBackupKey stamps the current time, stepping forward a millisecond at a
// time while the key is taken. Two mutations inside the same millisecond get
// distinct backups instead of overwriting one.
func (adapter *LocalStoreAdapter) nextBackupKey() (string, error) {
	at := adapter.now().UTC()
	for {
		key := BackupKeyPrefix + at.Format(backupTimestampLayout)
		_, taken, err := adapter.store.Get(key)
		if err != nil {
			return "", err
		}
		if !taken {
			return key, nil
		}
		at = at.Add(time.Millisecond)
	}
}

func (adapter *LocalStoreAdapter) enforceBackupLimit() error {
	keys, err := adapter.ListBackups()
	if err != nil {
		return err
	}
	for _, key := range keys[minInt(len(keys), maxRetainedBackups):] {
		if err := adapter.store.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

func parseBackupTimestamp(key string) (time.Time, bool) {
	raw, found := strings.CutPrefix(key, BackupKeyPrefix)
	if !found {
		return time.Time{}, false
	}
	createdAt, err := time.Parse(backupTimestampLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return createdAt, true
}

func rawOrDefault(raw json.RawMessage, fallback string) string {
	if raw == nil {
		return fallback
	}
	return string(raw)
}

func minInt(a int, b int) int {
	if a < b {
		return a
	}
	return b
}
