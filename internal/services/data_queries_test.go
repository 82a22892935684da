package services

import (
	"testing"
	"time"

	"github.com/terraincognita07/selene/internal/models"
	"github.com/terraincognita07/selene/internal/storage"
)

func seedRecords(t *testing.T, store *stubStore, records []models.PainRecord) {
	t.Helper()
	if err := store.Save(storage.KeyRecords, records); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func queryFixtures() []models.PainRecord {
	return []models.PainRecord{
		{ID: "a", Date: "2024-01-10", Time: "08:00", PainLevel: 3, MenstrualStatus: models.StatusMidCycle, Notes: "light ache", PainTypes: []string{models.PainTypeAching}},
		{ID: "b", Date: "2024-01-15", Time: "14:30", PainLevel: 8, MenstrualStatus: models.StatusDay1, Notes: "cramping badly", PainTypes: []string{models.PainTypeCramping},
			Medications: []models.Medication{{Name: "Ibuprofen"}}},
		{ID: "c", Date: "2024-01-15", Time: "20:00", PainLevel: 6, MenstrualStatus: models.StatusDay1, Notes: "evening flare", PainTypes: []string{models.PainTypeSharp}},
		{ID: "d", Date: "2024-02-02", Time: "09:15", PainLevel: 5, MenstrualStatus: models.StatusBeforePeriod, Notes: "", PainTypes: []string{models.PainTypeCramping}},
	}
}

func TestGetRecordsByDateRangeFiltersAndSorts(t *testing.T) {
	store := newStubStore()
	seedRecords(t, store, queryFixtures())
	manager := newTestManager(store)

	start := time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	records, err := manager.GetRecordsByDateRange(start, end)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != "c" || records[1].ID != "b" {
		t.Fatalf("expected newest first within the day: %s, %s", records[0].ID, records[1].ID)
	}
}

func TestGetRecordsByDateRangeIncludesBounds(t *testing.T) {
	store := newStubStore()
	seedRecords(t, store, queryFixtures())
	manager := newTestManager(store)

	start := time.Date(2024, 1, 10, 23, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 2, 1, 0, 0, 0, time.UTC)
	records, err := manager.GetRecordsByDateRange(start, end)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("bounds must be inclusive, got %d records", len(records))
	}
}

func TestGetRecordsByPainLevel(t *testing.T) {
	store := newStubStore()
	seedRecords(t, store, queryFixtures())
	manager := newTestManager(store)

	records, err := manager.GetRecordsByPainLevel(5, nil)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].PainLevel != 8 || records[2].PainLevel != 5 {
		t.Fatalf("expected most painful first: %#v", records)
	}

	max := 6
	records, err = manager.GetRecordsByPainLevel(5, &max)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records within [5,6], got %d", len(records))
	}
}

func TestGetRecordsByMenstrualStatus(t *testing.T) {
	store := newStubStore()
	seedRecords(t, store, queryFixtures())
	manager := newTestManager(store)

	records, err := manager.GetRecordsByMenstrualStatus(models.StatusDay1)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 day_1 records, got %d", len(records))
	}
}

func TestSearchRecords(t *testing.T) {
	store := newStubStore()
	seedRecords(t, store, queryFixtures())
	manager := newTestManager(store)

	records, err := manager.SearchRecords("CRAMP")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected notes and pain type matches, got %d", len(records))
	}

	records, err = manager.SearchRecords("ibuprofen")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(records) != 1 || records[0].ID != "b" {
		t.Fatalf("expected medication match: %#v", records)
	}

	records, err = manager.SearchRecords("   ")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("empty query must return everything, got %d", len(records))
	}
}
