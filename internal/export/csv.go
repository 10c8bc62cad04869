// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

package export

import (
	"strings"
	"time"

	"github.com/tomtom215/homestock/internal/models"
)

const (
	// Header is the first row of every export.
	Header = "ID,Name,Category,Room,Container,ExpirationDate,CreatedAt"

	// ContentType is the MIME type of an export.
	ContentType = "text/csv;charset=utf-8;"

	// TimestampLayout is RFC 3339 in UTC with millisecond precision.
	TimestampLayout = "2006-01-02T15:04:05.000Z"
)

// File is a rendered export.
type File struct {
	Name        string
	ContentType string
	Data        []byte
	Rows        int
}

// FileName returns the export name for the UTC calendar day of now.
func FileName(now time.Time) string {
	return "home-inventory-" + now.UTC().Format("2006-01-02") + ".csv"
}

// Build renders items, in the given order, as an export file.
func Build(items []models.Item, now time.Time) File {
	return File{
		Name:        FileName(now),
		ContentType: ContentType,
		Data:        []byte(CSV(items)),
		Rows:        len(items),
	}
}

// CSV renders the header and one line per item, joined by "\n".
func CSV(items []models.Item) string {
	var b strings.Builder
	b.WriteString(Header)
	for _, it := range items {
		b.WriteByte('\n')
		b.WriteString(it.ID)
		b.WriteByte(',')
		writeQuoted(&b, it.Name)
		b.WriteByte(',')
		writeQuoted(&b, it.Category)
		b.WriteByte(',')
		writeQuoted(&b, it.Room)
		b.WriteByte(',')
		writeQuoted(&b, it.Container)
		b.WriteByte(',')
		b.WriteString(it.ExpirationDate)
		b.WriteByte(',')
		b.WriteString(Timestamp(it.CreatedAt))
	}
	return b.String()
}

// Timestamp formats t for the CreatedAt column; the zero time is empty.
func Timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimestampLayout)
}

func writeQuoted(b *strings.Builder, s string) {
	b.WriteByte('"')
	b.WriteString(strings.ReplaceAll(s, `"`, `""`))
	b.WriteByte('"')
}
