// Package report writes per-beat compilation audit records: date-stamped
// JSONL files with retention-day cleanup, one record per compiled beat.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DNG-hub/StoryArt-sub001/internal/validate"
)

// Writer appends audit records under a directory, rotating by date.
type Writer struct {
	mu            sync.Mutex
	dir           string
	prefix        string
	retentionDays int
	enabled       bool
}

// NewWriter creates an audit writer. A disabled writer is a no-op, so
// callers never branch on audit configuration.
func NewWriter(dir, prefix string, retentionDays int, enabled bool) *Writer {
	if strings.TrimSpace(prefix) == "" {
		prefix = "beats"
	}
	return &Writer{
		dir:           dir,
		prefix:        prefix,
		retentionDays: retentionDays,
		enabled:       enabled,
	}
}

type record struct {
	Timestamp      string   `json:"timestamp"`
	RecordID       string   `json:"record_id"`
	BeatID         string   `json:"beat_id"`
	SceneNumber    int      `json:"scene_number"`
	Valid          bool     `json:"valid"`
	IssueCodes     []string `json:"issue_codes,omitempty"`
	RepairsApplied []string `json:"repairs_applied,omitempty"`
	IterationCount int      `json:"iteration_count"`
	FinalPrompt    string   `json:"final_prompt"`
}

// WriteBeat appends one audit record for a compiled beat.
func (w *Writer) WriteBeat(beatID string, scene int, rep validate.Report) error {
	if !w.enabled {
		return nil
	}

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("create audit dir: %w", err)
	}

	now := time.Now()
	rec := record{
		Timestamp:      now.Format(time.RFC3339),
		RecordID:       uuid.NewString(),
		BeatID:         beatID,
		SceneNumber:    scene,
		Valid:          rep.Valid,
		IssueCodes:     issueCodes(rep),
		RepairsApplied: rep.RepairsApplied,
		IterationCount: rep.IterationCount,
		FinalPrompt:    rep.FinalPrompt,
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	fileName := fmt.Sprintf("%s-%s.jsonl", w.prefix, now.Format("2006-01-02"))
	if err := appendJSONL(filepath.Join(w.dir, fileName), line); err != nil {
		return err
	}
	return w.cleanupWithNow(now)
}

func issueCodes(rep validate.Report) []string {
	var codes []string
	for _, i := range rep.Issues {
		codes = append(codes, string(i.Code))
	}
	return codes
}

func appendJSONL(path string, line []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open audit file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write audit file: %w", err)
	}
	return nil
}

// Cleanup removes audit files older than the retention window.
func (w *Writer) Cleanup() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cleanupWithNow(time.Now())
}

func (w *Writer) cleanupWithNow(now time.Time) error {
	if !w.enabled || w.retentionDays <= 0 {
		return nil
	}

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("list audit dir: %w", err)
	}

	cutoff := startOfDay(now.AddDate(0, 0, -w.retentionDays))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, w.prefix+"-") || !strings.HasSuffix(name, ".jsonl") {
			continue
		}
		fileDate, ok := parseFileDate(name, w.prefix)
		if !ok {
			continue
		}
		if fileDate.Before(cutoff) {
			path := filepath.Join(w.dir, name)
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("remove old audit file %s: %w", path, err)
			}
		}
	}
	return nil
}

func parseFileDate(filename, prefix string) (time.Time, bool) {
	raw := strings.TrimSuffix(filename, ".jsonl")
	raw = strings.TrimPrefix(raw, prefix+"-")
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
