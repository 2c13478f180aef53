package services

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestBusinessNumberFormat(t *testing.T) {
	now := time.Date(2026, time.July, 9, 18, 30, 0, 0, time.UTC)

	cases := []struct {
		prefix string
		want   string
	}{
		{prefix: OrderNumberPrefix, want: `^ORD-20260709-\d{5}$`},
		{prefix: BookingNumberPrefix, want: `^HTL-20260709-\d{5}$`},
		{prefix: ReservationNumberPrefix, want: `^RES-20260709-\d{5}$`},
	}

	for _, tc := range cases {
		t.Run(tc.prefix, func(t *testing.T) {
			got := businessNumber(tc.prefix, now)
			matched, err := regexp.MatchString(tc.want, got)
			if err != nil {
				t.Fatal(err)
			}
			if !matched {
				t.Fatalf("businessNumber(%s) = %q, want match for %s", tc.prefix, got, tc.want)
			}
		})
	}
}

// savepointTx counts nested-transaction calls; the embedded interface covers
// the methods insertNumbered never touches.
type savepointTx struct {
	pgx.Tx
	begins    int
	commits   int
	rollbacks int
}

func (tx *savepointTx) Begin(ctx context.Context) (pgx.Tx, error) {
	tx.begins++
	return tx, nil
}

func (tx *savepointTx) Commit(ctx context.Context) error {
	tx.commits++
	return nil
}

func (tx *savepointTx) Rollback(ctx context.Context) error {
	tx.rollbacks++
	return nil
}

func TestInsertNumberedRetriesAfterDuplicate(t *testing.T) {
	tx := &savepointTx{}
	attempts := 0

	number, err := insertNumbered(context.Background(), tx, OrderNumberPrefix, time.Now(), func(sp pgx.Tx, n string) error {
		attempts++
		if attempts == 1 {
			return &pgconn.PgError{Code: "23505"}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
	if number == "" {
		t.Fatal("expected a generated number")
	}
	if tx.begins != 2 || tx.rollbacks != 1 || tx.commits != 1 {
		t.Fatalf("expected each attempt in its own savepoint (begins=%d rollbacks=%d commits=%d)",
			tx.begins, tx.rollbacks, tx.commits)
	}
}

func TestInsertNumberedStopsOnOtherErrors(t *testing.T) {
	tx := &savepointTx{}
	wantErr := &pgconn.PgError{Code: "23503"}

	_, err := insertNumbered(context.Background(), tx, BookingNumberPrefix, time.Now(), func(sp pgx.Tx, n string) error {
		return wantErr
	})
	if err != wantErr {
		t.Fatalf("expected the insert error back, got %v", err)
	}
	if tx.begins != 1 || tx.rollbacks != 1 || tx.commits != 0 {
		t.Fatalf("expected a single rolled-back attempt (begins=%d rollbacks=%d commits=%d)",
			tx.begins, tx.rollbacks, tx.commits)
	}
}

func TestInsertNumberedGivesUpAfterExhaustion(t *testing.T) {
	tx := &savepointTx{}
	attempts := 0

	_, err := insertNumbered(context.Background(), tx, ReservationNumberPrefix, time.Now(), func(sp pgx.Tx, n string) error {
		attempts++
		return &pgconn.PgError{Code: "23505"}
	})
	if err == nil {
		t.Fatal("expected an exhaustion error")
	}
	if attempts != businessNumberAttempts {
		t.Fatalf("expected %d attempts, got %d", businessNumberAttempts, attempts)
	}
	if tx.rollbacks != businessNumberAttempts || tx.commits != 0 {
		t.Fatalf("expected every attempt rolled back (rollbacks=%d commits=%d)", tx.rollbacks, tx.commits)
	}
}

func TestBusinessNumberSuffixPadding(t *testing.T) {
	now := time.Now()
	for i := 0; i < 50; i++ {
		got := businessNumber(OrderNumberPrefix, now)
		parts := strings.Split(got, "-")
		if len(parts) != 3 {
			t.Fatalf("expected three segments, got %q", got)
		}
		if len(parts[2]) != 5 {
			t.Fatalf("expected a zero-padded 5-digit suffix, got %q", parts[2])
		}
	}
}
