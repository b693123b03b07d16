// Package domain defines the event registration record.
package domain

import "time"

// Registration links an attendee (by university uid) to an event. One
// registration per (event, attendee) pair.
type Registration struct {
	EventID       string    `bson:"event_id" json:"event_id"`
	UniversityUID string    `bson:"university_uid" json:"university_uid"`
	RegisteredAt  time.Time `bson:"registered_at" json:"registered_at"`
}
