package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/atmosim/config"
)

func TestNewOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil {
		t.Fatal(err)
	}
	if om != nil {
		t.Fatal("empty dir should disable output")
	}

	// A nil manager absorbs all writes.
	if err := om.WriteSample(SampleRecord{}); err != nil {
		t.Errorf("nil WriteSample: %v", err)
	}
	if err := om.WriteTrace(TraceRecord{}); err != nil {
		t.Errorf("nil WriteTrace: %v", err)
	}
	if err := om.WriteBookmark(Bookmark{}); err != nil {
		t.Errorf("nil WriteBookmark: %v", err)
	}
	if om.Dir() != "" {
		t.Errorf("nil Dir: got %q", om.Dir())
	}
	if err := om.Close(); err != nil {
		t.Errorf("nil Close: %v", err)
	}
}

func TestOutputManagerWritesSamples(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer om.Close()

	if om.Dir() != dir {
		t.Errorf("Dir: got %q, want %q", om.Dir(), dir)
	}

	for i := 0; i < 3; i++ {
		rec := SampleRecord{Eval: int64(i), Score: float64(i) * 10, Feasible: true}
		if err := om.WriteSample(rec); err != nil {
			t.Fatalf("WriteSample %d: %v", i, err)
		}
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "samples.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header + 3 records:\n%s", len(lines), data)
	}
	if !strings.Contains(lines[0], "eval") || !strings.Contains(lines[0], "score") {
		t.Errorf("header missing columns: %q", lines[0])
	}
	if strings.Contains(lines[1], "eval") {
		t.Errorf("header repeated in record line: %q", lines[1])
	}
}

func TestOutputManagerTraceLazyCreation(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	tracePath := filepath.Join(dir, "trace.csv")
	if _, err := os.Stat(tracePath); !os.IsNotExist(err) {
		t.Fatal("trace.csv created before first trace write")
	}

	if err := om.WriteTrace(TraceRecord{Tick: 1, State: "intact", Pressure: 1000}); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteTrace(TraceRecord{Tick: 2, State: "exploded", Pressure: 6000}); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(tracePath)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + 2 ticks:\n%s", len(lines), data)
	}
	if !strings.Contains(lines[2], "exploded") {
		t.Errorf("second tick record: %q", lines[2])
	}
}

func TestOutputManagerBookmarksAndPerf(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	b := Bookmark{Type: BookmarkImprovement, Eval: 7, Score: 12.5, Description: "score 12.5"}
	if err := om.WriteBookmark(b); err != nil {
		t.Fatal(err)
	}

	p := NewPerfCollector(4)
	p.StartBatch()
	p.StartPhase(PhaseSample)
	p.EndBatch(3)
	if err := om.WritePerf(p.Stats(), 7); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "bookmarks.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "improvement") {
		t.Errorf("bookmarks.csv missing record:\n%s", data)
	}

	if _, err := os.Stat(filepath.Join(dir, "perf.csv")); err != nil {
		t.Errorf("perf.csv: %v", err)
	}
}

func TestOutputManagerWriteConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer om.Close()

	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "tank:") {
		t.Errorf("config.yaml missing tank section:\n%s", data)
	}
}

func TestOutputManagerWriteLeaderboard(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer om.Close()

	lb := NewLeaderboard(3, true)
	lb.Consider(0, 0, feasibleResult(42))
	if err := om.WriteLeaderboard(lb); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "leaderboard.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "42") {
		t.Errorf("leaderboard.json missing entry:\n%s", data)
	}
}
