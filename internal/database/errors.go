package database

import (
	"errors"

	"github.com/lib/pq"
)

// PostgreSQL error codes the booking engine branches on.
const (
	pqCodeDeadlockDetected = "40P01"
	pqCodeLockNotAvailable = "55P03"
)

// IsDeadlock reports whether err is a PostgreSQL deadlock abort
func IsDeadlock(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pqCodeDeadlockDetected
	}
	return false
}

// IsLockTimeout reports whether err is a lock_timeout expiry
func IsLockTimeout(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pqCodeLockNotAvailable
	}
	return false
}
