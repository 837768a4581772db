package errors

import (
	"context"
	stderrs "errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func pg(code, col, constraint string) *pgconn.PgError {
	return &pgconn.PgError{Code: code, ColumnName: col, ConstraintName: constraint, TableName: "menus"}
}

func TestDBErrorCode(t *testing.T) {
	cases := []struct {
		code string
		want ErrorCode
	}{
		{"23505", ErrorCodeDuplicateKey},
		{"23503", ErrorCodeInvalidArgument},
		{"22007", ErrorCodeInvalidArgument}, // menu_day not a date
		{"22P02", ErrorCodeInvalidArgument},
		{"23502", ErrorCodeValidation},
		{"23514", ErrorCodeValidation},
		{"57P03", ErrorCodeUnavailable},
		{"25006", ErrorCodeUnavailable},
		{"40001", ErrorCodeDB},
		{"57014", ErrorCodeDB},
		{"XX000", ErrorCodeDB},
	}
	for _, c := range cases {
		got, ok := DBErrorCode(fmt.Errorf("upsert: %w", pg(c.code, "", "")))
		if !ok || got != c.want {
			t.Fatalf("DBErrorCode(%s) = %v,%v want %v", c.code, got, ok, c.want)
		}
	}
	if _, ok := DBErrorCode(stderrs.New("plain")); ok {
		t.Fatal("non pg error must report !ok")
	}
}

func TestFromPostgres(t *testing.T) {
	if FromPostgres(nil, "x") != nil {
		t.Fatal("nil in, nil out")
	}
	err := FromPostgres(pg("23505", "", ""), "menus: upsert 02/11-03-2017")
	if !IsCode(err, ErrorCodeDuplicateKey) || !IsDuplicateKey(err) {
		t.Fatalf("unexpected %v", err)
	}
	if !IsCode(FromPostgres(stderrs.New("conn reset"), "menus: get"), ErrorCodeDB) {
		t.Fatal("foreign errors should map to DB")
	}
}

func TestFromPostgresWithField(t *testing.T) {
	cases := []struct {
		name string
		err  *pgconn.PgError
		want string
	}{
		{"column wins", pg("23502", "menu_date", "menus_location_day_key"), "menu_date"},
		{"constraint trimmed", pg("23505", "", "menus_location_day_key"), "location_day"},
		{"check suffix", pg("23514", "", "menus_hash_check"), "hash"},
		{"nothing to infer", pg("XX000", "", ""), ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			e, ok := As(FromPostgresWithField(c.err, "menus: upsert"))
			if !ok || e.Field() != c.want {
				t.Fatalf("field = %q want %q", e.Field(), c.want)
			}
		})
	}
	if FromPostgresWithField(stderrs.New("x"), "y") == nil {
		t.Fatal("foreign error must still be wrapped")
	}
}

func TestIsRetryable(t *testing.T) {
	yes := []error{
		pg("40001", "", ""),
		pg("40P01", "", ""),
		pg("55P03", "", ""),
		fmt.Errorf("tx: %w", pg("57014", "", "")),
		pg("57P01", "", ""),
		stderrs.New("commit unexpectedly resulted in rollback"),
	}
	for _, err := range yes {
		if !IsRetryable(err) {
			t.Fatalf("want retryable: %v", err)
		}
	}
	no := []error{
		nil,
		pg("23505", "", ""),
		context.Canceled,
		fmt.Errorf("wait: %w", context.DeadlineExceeded),
		stderrs.New("syntax error"),
	}
	for _, err := range no {
		if IsRetryable(err) {
			t.Fatalf("want not retryable: %v", err)
		}
	}
}
