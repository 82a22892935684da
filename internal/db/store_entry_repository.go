package db

import (
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StoreEntry struct {
	Key       string    `gorm:"primaryKey;column:key"`
	Value     string    `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (StoreEntry) TableName() string {
	return "store_entries"
}

// StoreEntryRepository persists opaque key/value payloads. The storage
// adapter layers quota accounting and backup rotation on top of it.
type StoreEntryRepository struct {
	database *gorm.DB
}

func NewStoreEntryRepository(database *gorm.DB) *StoreEntryRepository {
	return &StoreEntryRepository{database: database}
}

func (repo *StoreEntryRepository) Get(key string) (string, bool, error) {
	var entry StoreEntry
	result := repo.database.Where("key = ?", key).Limit(1).Find(&entry)
	if result.Error != nil {
		return "", false, result.Error
	}
	if result.RowsAffected == 0 {
		return "", false, nil
	}
	return entry.Value, true, nil
}

func (repo *StoreEntryRepository) Set(key string, value string) error {
	entry := StoreEntry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return repo.database.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

// SetMany writes all entries in one transaction, so a multi-key restore
// either lands completely or not at all.
func (repo *StoreEntryRepository) SetMany(entries map[string]string) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		for key, value := range entries {
			entry := StoreEntry{Key: key, Value: value, UpdatedAt: now}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(&entry).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (repo *StoreEntryRepository) Delete(key string) error {
	return repo.database.Where("key = ?", key).Delete(&StoreEntry{}).Error
}

func (repo *StoreEntryRepository) Keys(prefix string) ([]string, error) {
	keys := make([]string, 0)
	if err := repo.database.Model(&StoreEntry{}).
		Where(`key LIKE ? ESCAPE '\'`, escapeLikePattern(prefix)+"%").
		Order("key ASC").
		Pluck("key", &keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

func (repo *StoreEntryRepository) TotalSize() (int64, error) {
	var total int64
	if err := repo.database.Model(&StoreEntry{}).
		Select("COALESCE(SUM(LENGTH(value)), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func escapeLikePattern(value string) string {
	return likeEscaper.Replace(value)
}
