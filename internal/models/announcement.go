package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DateLayout is the calendar date format used for start and expire dates.
const DateLayout = "2006-01-02"

// CreatedAtLayout renders creation timestamps in UTC with a trailing zone marker.
const CreatedAtLayout = "2006-01-02T15:04:05.000000Z"

// ErrInvalidAnnouncementID is returned when an id is not a well-formed object id.
var ErrInvalidAnnouncementID = errors.New("invalid announcement id")

// AnnouncementID is the store-assigned identifier of an announcement. It is a
// 12-byte object id and renders as its 24-char hex form.
type AnnouncementID primitive.ObjectID

// NewAnnouncementID generates a fresh identifier.
func NewAnnouncementID() AnnouncementID {
	return AnnouncementID(primitive.NewObjectID())
}

// ParseAnnouncementID parses the hex form of an identifier.
func ParseAnnouncementID(raw string) (AnnouncementID, error) {
	oid, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return AnnouncementID{}, ErrInvalidAnnouncementID
	}
	return AnnouncementID(oid), nil
}

// ObjectID exposes the identifier in its store-native form.
func (id AnnouncementID) ObjectID() primitive.ObjectID {
	return primitive.ObjectID(id)
}

// String returns the hex form.
func (id AnnouncementID) String() string {
	return primitive.ObjectID(id).Hex()
}

// IsZero reports whether the identifier is unset.
func (id AnnouncementID) IsZero() bool {
	return primitive.ObjectID(id).IsZero()
}

// MarshalText encodes the identifier as hex so it serialises as a JSON string.
func (id AnnouncementID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText decodes the hex form.
func (id *AnnouncementID) UnmarshalText(b []byte) error {
	parsed, err := ParseAnnouncementID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Announcement is a time-bounded notice published by a teacher.
type Announcement struct {
	ID         AnnouncementID `json:"id"`
	Title      string         `json:"title"`
	Message    string         `json:"message"`
	StartDate  *string        `json:"start_date"`
	ExpireDate string         `json:"expire_date"`
	CreatedBy  string         `json:"created_by"`
	CreatedAt  string         `json:"created_at"`
}

// AnnouncementChanges carries a partial update. Nil fields are left as stored;
// ClearStartDate removes the start date.
type AnnouncementChanges struct {
	Title          *string
	Message        *string
	ExpireDate     *string
	StartDate      *string
	ClearStartDate bool
}

// Empty reports whether the change set touches no field.
func (c AnnouncementChanges) Empty() bool {
	return c.Title == nil && c.Message == nil && c.ExpireDate == nil && c.StartDate == nil && !c.ClearStartDate
}

// ParseDate parses a YYYY-MM-DD calendar date. Malformed or empty input
// yields ok=false.
func ParseDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	d, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// CalendarDay truncates t to its calendar date in t's location, expressed as
// UTC midnight so it compares directly against ParseDate results.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsActiveOn reports whether the announcement's validity window contains day.
// A missing or malformed expire date never qualifies; a missing or malformed
// start date counts as already started.
func (a Announcement) IsActiveOn(day time.Time) bool {
	expire, ok := ParseDate(a.ExpireDate)
	if !ok {
		return false
	}
	if a.StartDate != nil {
		if start, ok := ParseDate(*a.StartDate); ok && start.After(day) {
			return false
		}
	}
	return !expire.Before(day)
}
