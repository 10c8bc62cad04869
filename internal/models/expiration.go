// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

package models

import (
	"fmt"
	"time"
)

// ExpirationSeverity buckets how close an item is to expiring.
type ExpirationSeverity string

const (
	SeverityExpired ExpirationSeverity = "expired"
	SeverityToday   ExpirationSeverity = "today"
	SeveritySoon    ExpirationSeverity = "soon"
	SeverityOK      ExpirationSeverity = "ok"
)

// soonWindowDays is the look-ahead for the "soon" severity.
const soonWindowDays = 7

// ExpirationStatus is the display form of an item's expiration date.
type ExpirationStatus struct {
	Text     string             `json:"text"`
	Severity ExpirationSeverity `json:"severity"`
	Days     int                `json:"days"` // negative once expired
}

// Expiration computes the status of date relative to the calendar day of now.
// It returns false when date is empty or not a valid YYYY-MM-DD date.
func Expiration(date string, now time.Time) (ExpirationStatus, bool) {
	if date == "" {
		return ExpirationStatus{}, false
	}
	exp, err := time.Parse(DateLayout, date)
	if err != nil {
		return ExpirationStatus{}, false
	}

	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	days := int(exp.Sub(today).Hours() / 24)

	switch {
	case days < 0:
		return ExpirationStatus{
			Text:     fmt.Sprintf("Expired %d day(s) ago", -days),
			Severity: SeverityExpired,
			Days:     days,
		}, true
	case days == 0:
		return ExpirationStatus{Text: "Expires Today!", Severity: SeverityToday}, true
	case days <= soonWindowDays:
		return ExpirationStatus{
			Text:     fmt.Sprintf("Expires in %d day(s)", days),
			Severity: SeveritySoon,
			Days:     days,
		}, true
	default:
		return ExpirationStatus{
			Text:     "Expires: " + exp.Format("Jan 2, 2006"),
			Severity: SeverityOK,
			Days:     days,
		}, true
	}
}
