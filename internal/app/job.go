package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"reelforge/internal/trends"
)

// ProductionJob owns one cycle's working directory and every intermediate
// file inside it. The directory is destroyed on successful completion and
// deliberately preserved on failure for postmortem inspection.
type ProductionJob struct {
	Topic    trends.Topic
	Cycle    int64
	WorkDir  string
	composed bool
	cleaned  bool
}

func NewProductionJob(workRoot string, topic trends.Topic, cycle int64) (*ProductionJob, error) {
	dir := filepath.Join(workRoot, fmt.Sprintf("job_%d_%d", cycle, time.Now().UnixNano()))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create working directory: %w", err)
	}
	return &ProductionJob{
		Topic:   topic,
		Cycle:   cycle,
		WorkDir: dir,
	}, nil
}

// Path returns a file path inside the job's working directory.
func (j *ProductionJob) Path(name string) string {
	return filepath.Join(j.WorkDir, name)
}

// MarkComposed records that the encoder produced the final artifact. Cleanup
// is gated on this, not on upload success.
func (j *ProductionJob) MarkComposed() {
	j.composed = true
}

// Cleanup removes the working directory if and only if composition
// succeeded. Safe to call more than once; only the first call acts.
func (j *ProductionJob) Cleanup() error {
	if j.cleaned {
		return nil
	}
	if !j.composed {
		return nil
	}
	j.cleaned = true
	if err := os.RemoveAll(j.WorkDir); err != nil {
		return fmt.Errorf("remove working directory: %w", err)
	}
	return nil
}
