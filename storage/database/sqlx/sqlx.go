// Package sqlxrepos implements the core repositories on top of PostgreSQL
// via sqlx.
package sqlxrepos

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func nullTime(t time.Time) null.Time {
	if t.IsZero() {
		return null.Time{}
	}
	return null.TimeFrom(t)
}

func itoa(n int) string { return strconv.Itoa(n) }
