package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DNG-hub/StoryArt-sub001/internal/validate"
)

func testReport(valid bool) validate.Report {
	rep := validate.Report{
		Valid:       valid,
		FinalPrompt: "close-up shot, kira_v3, compact woman",
	}
	if !valid {
		rep.Issues = []validate.Issue{{
			Code:         validate.IssueMissingTrigger,
			Severity:     validate.SeverityError,
			SubjectIndex: 0,
		}}
		rep.IterationCount = 2
	}
	return rep
}

func TestWriteBeatAppendsRecords(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, "beats", 30, true)

	if err := w.WriteBeat("s01b01", 1, testReport(true)); err != nil {
		t.Fatalf("WriteBeat: %v", err)
	}
	if err := w.WriteBeat("s01b02", 1, testReport(false)); err != nil {
		t.Fatalf("WriteBeat: %v", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("beats-%s.jsonl", time.Now().Format("2006-01-02")))
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open audit file: %v", err)
	}
	defer f.Close()

	var records []record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("malformed JSONL line: %v", err)
		}
		records = append(records, rec)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].BeatID != "s01b01" || !records[0].Valid {
		t.Fatalf("first record mismatch: %+v", records[0])
	}
	if records[1].BeatID != "s01b02" || records[1].Valid {
		t.Fatalf("second record mismatch: %+v", records[1])
	}
	if len(records[1].IssueCodes) != 1 || records[1].IssueCodes[0] != string(validate.IssueMissingTrigger) {
		t.Fatalf("issue codes lost: %v", records[1].IssueCodes)
	}
	if records[0].RecordID == records[1].RecordID {
		t.Fatalf("record IDs must be unique")
	}
}

func TestDisabledWriterIsNoOp(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, "beats", 30, false)

	if err := w.WriteBeat("s01b01", 1, testReport(true)); err != nil {
		t.Fatalf("disabled WriteBeat must not error: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("disabled writer must write nothing, found %d entries", len(entries))
	}
}

func TestCleanupRemovesOldFiles(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, "beats", 7, true)

	old := filepath.Join(dir, fmt.Sprintf("beats-%s.jsonl",
		time.Now().AddDate(0, 0, -10).Format("2006-01-02")))
	recent := filepath.Join(dir, fmt.Sprintf("beats-%s.jsonl",
		time.Now().AddDate(0, 0, -2).Format("2006-01-02")))
	unrelated := filepath.Join(dir, "notes.txt")
	for _, p := range []string{old, recent, unrelated} {
		if err := os.WriteFile(p, []byte("{}\n"), 0644); err != nil {
			t.Fatalf("seed file: %v", err)
		}
	}

	if err := w.Cleanup(); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}

	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatalf("old audit file should be removed")
	}
	if _, err := os.Stat(recent); err != nil {
		t.Fatalf("recent audit file should survive: %v", err)
	}
	if _, err := os.Stat(unrelated); err != nil {
		t.Fatalf("unrelated file should survive: %v", err)
	}
}

func TestWriterDefaultsPrefix(t *testing.T) {
	w := NewWriter(t.TempDir(), "  ", 0, true)
	if w.prefix != "beats" {
		t.Fatalf("blank prefix should default, got %q", w.prefix)
	}
}
