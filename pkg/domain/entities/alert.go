package entities

import (
	"fmt"
	"time"
)

// AlertKind classifies an alert
type AlertKind int

const (
	AlertIngredientLow AlertKind = iota
	AlertUsageSuspicious
)

// String returns the stored form of the kind
func (k AlertKind) String() string {
	switch k {
	case AlertIngredientLow:
		return "ingredient_low"
	case AlertUsageSuspicious:
		return "usage_suspicious"
	default:
		return "unknown"
	}
}

// ParseAlertKind parses the stored form of an alert kind
func ParseAlertKind(s string) (AlertKind, error) {
	switch s {
	case "ingredient_low":
		return AlertIngredientLow, nil
	case "usage_suspicious":
		return AlertUsageSuspicious, nil
	default:
		return 0, fmt.Errorf("unknown alert kind: %q", s)
	}
}

// Alert is a persisted notification about stock or usage
type Alert struct {
	ID                  AlertID
	Kind                AlertKind
	Message             string
	IsRead              bool
	RelatedIngredientID *IngredientID
	RelatedReportID     *ReportID
	CreatedAt           time.Time
}

// RelatedID returns whichever related id is set, or zero
func (a Alert) RelatedID() int64 {
	switch {
	case a.RelatedIngredientID != nil:
		return int64(*a.RelatedIngredientID)
	case a.RelatedReportID != nil:
		return int64(*a.RelatedReportID)
	default:
		return 0
	}
}
