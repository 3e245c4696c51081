package database

import "time"

// CachedAnswer is a previously generated answer stored against the digest of
// the request that produced it. Rows expire after their TTL and are removed
// by the cache purge task.
type CachedAnswer struct {
	Key       string    `db:"key"`
	Question  string    `db:"question"`
	Answer    string    `db:"answer"`
	CreatedAt time.Time `db:"created_at"`
	ExpiresAt time.Time `db:"expires_at"`
}
