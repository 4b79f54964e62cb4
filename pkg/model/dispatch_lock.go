package model

import "time"

// DispatchLock is an advisory per-booking lock. It serializes concurrent
// provider responses against one booking so the cascade check always sees
// the freshly appended rejection. The TTL index on expires_at reclaims
// locks abandoned by a crashed request.
type DispatchLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
