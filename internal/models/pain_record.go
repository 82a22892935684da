package models

import (
	"strconv"
	"time"
)

const (
	PainTypeCramping  = "cramping"
	PainTypeAching    = "aching"
	PainTypeSharp     = "sharp"
	PainTypeThrobbing = "throbbing"
	PainTypeBurning   = "burning"
	PainTypePressure  = "pressure"
)

const (
	LocationLowerAbdomen = "lower_abdomen"
	LocationLowerBack    = "lower_back"
	LocationUpperThighs  = "upper_thighs"
	LocationPelvis       = "pelvis"
	LocationSide         = "side"
	LocationWholeAbdomen = "whole_abdomen"
)

const (
	SymptomNausea           = "nausea"
	SymptomHeadache         = "headache"
	SymptomFatigue          = "fatigue"
	SymptomBloating         = "bloating"
	SymptomMoodChanges      = "mood_changes"
	SymptomVomiting         = "vomiting"
	SymptomDiarrhea         = "diarrhea"
	SymptomBreastTenderness = "breast_tenderness"
)

const (
	StatusBeforePeriod = "before_period"
	StatusDay1         = "day_1"
	StatusDay2To3      = "day_2_3"
	StatusDay4Plus     = "day_4_plus"
	StatusAfterPeriod  = "after_period"
	StatusMidCycle     = "mid_cycle"
	StatusIrregular    = "irregular"
)

const (
	FactorStressLevel     = "stress_level"
	FactorSleepHours      = "sleep_hours"
	FactorExerciseMinutes = "exercise_minutes"
)

const (
	MaxPainLevel     = 10
	MaxNotesLength   = 1000
	RecordDateLayout = "2006-01-02"
	RecordTimeLayout = "15:04"
)

type Medication struct {
	Name   string `json:"name"`
	Dosage string `json:"dosage"`
	Timing string `json:"timing"`
}

type LifestyleFactor struct {
	Factor string  `json:"factor"`
	Value  float64 `json:"value"`
}

type PainRecord struct {
	ID               string            `json:"id"`
	Date             string            `json:"date"`
	Time             string            `json:"time"`
	PainLevel        int               `json:"painLevel"`
	PainTypes        []string          `json:"painTypes"`
	Locations        []string          `json:"locations"`
	Symptoms         []string          `json:"symptoms"`
	MenstrualStatus  string            `json:"menstrualStatus"`
	Medications      []Medication      `json:"medications"`
	Effectiveness    int               `json:"effectiveness"`
	LifestyleFactors []LifestyleFactor `json:"lifestyleFactors"`
	Notes            string            `json:"notes"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

func IsValidPainType(value string) bool {
	switch value {
	case PainTypeCramping, PainTypeAching, PainTypeSharp, PainTypeThrobbing, PainTypeBurning, PainTypePressure:
		return true
	default:
		return false
	}
}

func IsValidLocation(value string) bool {
	switch value {
	case LocationLowerAbdomen, LocationLowerBack, LocationUpperThighs, LocationPelvis, LocationSide, LocationWholeAbdomen:
		return true
	default:
		return false
	}
}

func IsValidSymptom(value string) bool {
	switch value {
	case SymptomNausea, SymptomHeadache, SymptomFatigue, SymptomBloating, SymptomMoodChanges, SymptomVomiting, SymptomDiarrhea, SymptomBreastTenderness:
		return true
	default:
		return false
	}
}

func IsValidMenstrualStatus(value string) bool {
	switch value {
	case StatusBeforePeriod, StatusDay1, StatusDay2To3, StatusDay4Plus, StatusAfterPeriod, StatusMidCycle, StatusIrregular:
		return true
	default:
		return false
	}
}

func IsValidLifestyleFactor(value string) bool {
	switch value {
	case FactorStressLevel, FactorSleepHours, FactorExerciseMinutes:
		return true
	default:
		return false
	}
}

// IsMenstrualPhase reports whether the status marks actual menstruation,
// as opposed to the surrounding cycle phases.
func IsMenstrualPhase(status string) bool {
	switch status {
	case StatusDay1, StatusDay2To3, StatusDay4Plus:
		return true
	default:
		return false
	}
}

// EventDate parses the record's calendar date. The zero time is returned for
// malformed dates; validation rejects those before they are persisted.
func (record PainRecord) EventDate() time.Time {
	parsed, err := time.Parse(RecordDateLayout, record.Date)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

// DuplicateKey is the identity used for double-submit detection and cleanup.
func (record PainRecord) DuplicateKey() string {
	return record.Date + "|" + record.Time + "|" + strconv.Itoa(record.PainLevel)
}
