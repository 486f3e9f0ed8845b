package model

import "time"

// SlotLock is a short-lived advisory lock on a (doctor, date, time) slot.
// The collection has a TTL index on expires_at so abandoned locks clear themselves.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
