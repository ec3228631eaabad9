package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNormalizeLimit(t *testing.T) {
	t.Parallel()

	if got := NormalizeLimit(0); got != DefaultLimit {
		t.Fatalf("expected default limit, got %d", got)
	}
	if got := NormalizeLimit(5000); got != MaxLimit {
		t.Fatalf("expected max limit, got %d", got)
	}
	if got := NormalizeLimit(10); got != 10 {
		t.Fatalf("expected passthrough, got %d", got)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	t.Parallel()

	in := Cursor{CreatedAt: time.Now().UTC().Truncate(time.Millisecond), ID: uuid.New()}
	out, err := ParseCursor(EncodeCursor(in))
	if err != nil {
		t.Fatalf("ParseCursor returned error: %v", err)
	}
	if out == nil {
		t.Fatal("expected a cursor")
	}
	if !out.CreatedAt.Equal(in.CreatedAt) || out.ID != in.ID {
		t.Fatalf("round trip mismatch: %+v vs %+v", out, in)
	}
}

func TestParseCursorEmpty(t *testing.T) {
	t.Parallel()

	cursor, err := ParseCursor("  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cursor != nil {
		t.Fatal("expected nil cursor for blank input")
	}
}

func TestParseCursorMalformed(t *testing.T) {
	t.Parallel()

	if _, err := ParseCursor("not-base64!!"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestPage(t *testing.T) {
	t.Parallel()

	type row struct {
		createdAt time.Time
		id        uuid.UUID
	}
	rows := make([]row, 4)
	for i := range rows {
		rows[i] = row{createdAt: time.Now().Add(-time.Duration(i) * time.Minute), id: uuid.New()}
	}

	page, next := Page(rows, 3, func(r row) Cursor {
		return Cursor{CreatedAt: r.createdAt, ID: r.id}
	})
	if len(page) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(page))
	}
	if next == "" {
		t.Fatal("expected a next cursor when an extra row was fetched")
	}

	page, next = Page(rows[:2], 3, func(r row) Cursor {
		return Cursor{CreatedAt: r.createdAt, ID: r.id}
	})
	if len(page) != 2 || next != "" {
		t.Fatalf("expected final page without cursor, got %d rows cursor %q", len(page), next)
	}
}
