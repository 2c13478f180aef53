package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5"
)

// Business-number prefixes. Numbers are assigned once at creation and are
// immutable afterwards.
const (
	OrderNumberPrefix       = "ORD"
	BookingNumberPrefix     = "HTL"
	ReservationNumberPrefix = "RES"
)

// businessNumberAttempts bounds the insert-retry loop used when a generated
// number collides with an existing row.
const businessNumberAttempts = 5

// businessNumber renders PREFIX-YYYYMMDD-XXXXX with a 5-digit random suffix.
// The random space is not collision-free; callers retry the insert on a
// unique-constraint violation.
func businessNumber(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%s-%05d", prefix, now.Format("20060102"), rand.Intn(100000))
}

// insertNumbered generates a business number and runs insert inside a
// savepoint. A duplicate-number violation aborts only the savepoint, leaving
// the surrounding transaction usable for the next attempt.
func insertNumbered(ctx context.Context, tx pgx.Tx, prefix string, now time.Time, insert func(sp pgx.Tx, number string) error) (string, error) {
	for attempt := 0; attempt < businessNumberAttempts; attempt++ {
		number := businessNumber(prefix, now)
		sp, err := tx.Begin(ctx)
		if err != nil {
			return "", err
		}
		err = insert(sp, number)
		if err == nil {
			if err := sp.Commit(ctx); err != nil {
				return "", err
			}
			return number, nil
		}
		_ = sp.Rollback(ctx)
		if !isUniqueViolation(err) {
			return "", err
		}
	}
	return "", fmt.Errorf("%s number generation exhausted after %d attempts", prefix, businessNumberAttempts)
}
