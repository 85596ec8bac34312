package journal

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("failed to open journal: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := openMemory(t)
	ctx := context.Background()
	started := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	runs := []Run{
		{Source: "a.lw", Checksum: Checksum("print 1"), Status: StatusOK, Output: "1\n", StartedAt: started, Duration: time.Millisecond},
		{Source: "b.lw", Checksum: Checksum("print x"), Status: StatusRuntime, ExitCode: 2,
			Error: "variable 'x' is not declared", Line: 1, Column: 7, StartedAt: started.Add(time.Second)},
		{Source: "c.lw", Status: StatusSyntax, ExitCode: 1, Error: "unexpected 'end'", StartedAt: started.Add(2 * time.Second)},
	}
	for i, run := range runs {
		id, err := store.Record(ctx, run)
		if err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
		if id != int64(i+1) {
			t.Errorf("record %d: expected id %d, got %d", i, i+1, id)
		}
	}

	recent, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(recent))
	}
	if recent[0].Source != "c.lw" || recent[1].Source != "b.lw" {
		t.Errorf("expected newest first, got %s, %s", recent[0].Source, recent[1].Source)
	}

	got := recent[1]
	want := runs[1]
	if got.Status != want.Status || got.ExitCode != want.ExitCode || got.Error != want.Error ||
		got.Line != want.Line || got.Column != want.Column || got.Checksum != want.Checksum {
		t.Errorf("round trip mismatch:\nwant %+v\ngot  %+v", want, got)
	}
	if !got.StartedAt.Equal(want.StartedAt) {
		t.Errorf("expected start %s, got %s", want.StartedAt, got.StartedAt)
	}
}

func TestRecentWithoutLimit(t *testing.T) {
	store := openMemory(t)
	runs, err := store.Recent(context.Background(), 0)
	if err != nil || runs != nil {
		t.Errorf("expected no runs and no error, got %v, %v", runs, err)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "redis", "whatever")
	if !errors.Is(err, ErrUnsupportedDriver) {
		t.Errorf("expected ErrUnsupportedDriver, got %v", err)
	}
}

func TestOpenRejectsInvalidMySQLDSN(t *testing.T) {
	_, err := Open(context.Background(), DriverMySQL, "user:pass@tcp(localhost:3306")
	if err == nil || !strings.Contains(err.Error(), "invalid mysql dsn") {
		t.Errorf("expected a dsn error, got %v", err)
	}
}

func TestOpenRejectsInvalidPostgresDSN(t *testing.T) {
	_, err := Open(context.Background(), DriverPostgres, "postgres://%zz")
	if err == nil || !strings.Contains(err.Error(), "invalid postgres dsn") {
		t.Errorf("expected a dsn error, got %v", err)
	}
}

func TestDialectsShareColumns(t *testing.T) {
	for driver, d := range dialects {
		if !strings.Contains(d.insert, columns) || !strings.Contains(d.recent, columns) {
			t.Errorf("%s: statements do not use the shared column list", driver)
		}
		if d.returningID != strings.Contains(d.insert, "RETURNING id") {
			t.Errorf("%s: returningID does not match the insert statement", driver)
		}
	}
}

func TestChecksum(t *testing.T) {
	if Checksum("print 1") != Checksum("print 1") {
		t.Errorf("checksum is not stable")
	}
	if Checksum("print 1") == Checksum("print 2") {
		t.Errorf("different sources share a checksum")
	}
	if len(Checksum("")) != 64 {
		t.Errorf("expected a hex sha-256")
	}
}

func TestRunString(t *testing.T) {
	run := Run{ID: 3, Source: "b.lw", Status: StatusRuntime, ExitCode: 2, Error: "boom", Line: 4, Column: 2,
		StartedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), Duration: 1500 * time.Microsecond}
	expected := "#3 2024-03-01T12:00:00Z runtime exit=2 1.5ms b.lw [4:2] boom"
	if run.String() != expected {
		t.Errorf("expected %q, got %q", expected, run.String())
	}
}
