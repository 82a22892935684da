package services

import (
	"sort"
	"strings"
	"time"

	"github.com/terraincognita07/selene/internal/models"
)

// GetRecordsByDateRange returns records whose date falls within [start, end],
// newest first.
func (manager *DataManager) GetRecordsByDateRange(start time.Time, end time.Time) ([]models.PainRecord, error) {
	records, err := manager.loadRecords()
	if err != nil {
		return nil, err
	}

	startDay := truncateToDay(start)
	endDay := truncateToDay(end)

	matches := make([]models.PainRecord, 0)
	for _, record := range records {
		day := record.EventDate()
		if day.IsZero() {
			continue
		}
		if !day.Before(startDay) && !day.After(endDay) {
			matches = append(matches, record)
		}
	}
	sortByDateDesc(matches)
	return matches, nil
}

// GetRecordsByPainLevel filters by pain level. A nil max means no upper
// bound. Results come back most painful first.
func (manager *DataManager) GetRecordsByPainLevel(min int, max *int) ([]models.PainRecord, error) {
	records, err := manager.loadRecords()
	if err != nil {
		return nil, err
	}

	matches := make([]models.PainRecord, 0)
	for _, record := range records {
		if record.PainLevel < min {
			continue
		}
		if max != nil && record.PainLevel > *max {
			continue
		}
		matches = append(matches, record)
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].PainLevel > matches[j].PainLevel
	})
	return matches, nil
}

// GetRecordsByMenstrualStatus returns records for one cycle phase, newest
// first.
func (manager *DataManager) GetRecordsByMenstrualStatus(status string) ([]models.PainRecord, error) {
	records, err := manager.loadRecords()
	if err != nil {
		return nil, err
	}

	matches := make([]models.PainRecord, 0)
	for _, record := range records {
		if record.MenstrualStatus == status {
			matches = append(matches, record)
		}
	}
	sortByDateDesc(matches)
	return matches, nil
}

// SearchRecords matches the query case-insensitively against notes, pain
// types and medication names. An empty query returns everything.
func (manager *DataManager) SearchRecords(query string) ([]models.PainRecord, error) {
	records, err := manager.loadRecords()
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return records, nil
	}

	matches := make([]models.PainRecord, 0)
	for _, record := range records {
		if recordMatchesQuery(record, needle) {
			matches = append(matches, record)
		}
	}
	return matches, nil
}

func recordMatchesQuery(record models.PainRecord, needle string) bool {
	if strings.Contains(strings.ToLower(record.Notes), needle) {
		return true
	}
	for _, painType := range record.PainTypes {
		if strings.Contains(strings.ToLower(painType), needle) {
			return true
		}
	}
	for _, medication := range record.Medications {
		if strings.Contains(strings.ToLower(medication.Name), needle) {
			return true
		}
	}
	return false
}

func sortByDateDesc(records []models.PainRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Date == records[j].Date {
			return records[i].Time > records[j].Time
		}
		return records[i].Date > records[j].Date
	})
}

func truncateToDay(at time.Time) time.Time {
	return time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC)
}
