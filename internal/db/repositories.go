package db

import "gorm.io/gorm"

type Repositories struct {
	StoreEntries *StoreEntryRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		StoreEntries: NewStoreEntryRepository(database),
	}
}
