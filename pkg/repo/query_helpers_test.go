package repo

import (
	"testing"
)

func TestJoinWhere(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		conditions []string
		want       string
	}{
		{name: "none", conditions: nil, want: ""},
		{name: "single", conditions: []string{"a = $1"}, want: "WHERE a = $1"},
		{name: "two", conditions: []string{"a = $1", "b = $2"}, want: "WHERE a = $1 AND b = $2"},
		{name: "skips empty", conditions: []string{"", "a = $1", " "}, want: "WHERE a = $1"},
	}

	for _, tc := range cases {
		if got := JoinWhere(tc.conditions...); got != tc.want {
			t.Fatalf("%s: want %q got %q", tc.name, tc.want, got)
		}
	}
}

func TestFormatLimitOffset(t *testing.T) {
	t.Parallel()

	cases := []struct {
		limit, offset int
		want          string
	}{
		{0, 0, ""},
		{10, 0, "LIMIT 10"},
		{0, 5, "OFFSET 5"},
		{10, 5, "LIMIT 10 OFFSET 5"},
		{-1, -1, ""},
	}

	for _, tc := range cases {
		if got := FormatLimitOffset(tc.limit, tc.offset); got != tc.want {
			t.Fatalf("limit=%d offset=%d: want %q got %q", tc.limit, tc.offset, tc.want, got)
		}
	}
}

func TestInsert(t *testing.T) {
	t.Parallel()

	got := Insert("staging_persons", []string{"id", "original_id"}, "id")
	want := "INSERT INTO staging_persons (id, original_id) VALUES ($1, $2) RETURNING id"
	if got != want {
		t.Fatalf("want %q got %q", want, got)
	}
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	got := Update("import_packages", []string{"status", "updated_at"}, "id = $3")
	want := "UPDATE import_packages SET status = $1, updated_at = $2 WHERE id = $3"
	if got != want {
		t.Fatalf("want %q got %q", want, got)
	}
}

func TestBatchInsertQueryN(t *testing.T) {
	t.Parallel()

	q, args := BatchInsertQueryN(
		"INSERT INTO staging_buildings (id, code) VALUES",
		[][]any{{1, "a"}, {2, "b"}},
	)
	want := "INSERT INTO staging_buildings (id, code) VALUES ($1, $2), ($3, $4)"
	if q != want {
		t.Fatalf("want %q got %q", want, q)
	}
	if len(args) != 4 {
		t.Fatalf("want 4 args got %d", len(args))
	}

	q, args = BatchInsertQueryN("INSERT INTO t (a) VALUES", nil)
	if q != "INSERT INTO t (a) VALUES" || args != nil {
		t.Fatalf("empty rows should return prefix unchanged, got %q", q)
	}
}

func TestSortByToSQL(t *testing.T) {
	t.Parallel()

	type field int
	const (
		fieldCreatedAt field = iota
		fieldScore
		fieldUnknown
	)
	mapping := map[field]string{
		fieldCreatedAt: "c.created_at",
		fieldScore:     "c.score",
	}

	s := SortBy[field]{Fields: []SortByField[field]{
		{Field: fieldScore, Ascending: false},
		{Field: fieldCreatedAt, Ascending: true},
		{Field: fieldUnknown, Ascending: true},
	}}
	want := "ORDER BY c.score DESC, c.created_at ASC"
	if got := s.ToSQL(mapping); got != want {
		t.Fatalf("want %q got %q", want, got)
	}

	if got := (SortBy[field]{}).ToSQL(mapping); got != "" {
		t.Fatalf("empty sort should render empty, got %q", got)
	}
}
