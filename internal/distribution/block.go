package distribution

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// BlockSentinel is a marker file recording when a platform block was
// detected. While the file exists and the cooldown has not passed, all
// uploads stay suspended. An expired sentinel is removed on the next check.
type BlockSentinel struct {
	path     string
	cooldown time.Duration
}

func NewBlockSentinel(path string, cooldown time.Duration) *BlockSentinel {
	return &BlockSentinel{
		path:     path,
		cooldown: cooldown,
	}
}

// Set records a block starting now. The previous timestamp, if any, is
// overwritten.
func (b *BlockSentinel) Set() error {
	stamp := time.Now().UTC().Format(time.RFC3339)
	if err := os.WriteFile(b.path, []byte(stamp+"\n"), 0644); err != nil {
		return fmt.Errorf("write block sentinel: %w", err)
	}
	return nil
}

// Active reports whether uploads are currently suspended and, if so, when
// the cooldown ends. A sentinel with an unreadable timestamp counts as a
// block starting now, which errs on the side of staying quiet.
func (b *BlockSentinel) Active() (bool, time.Time) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		return false, time.Time{}
	}

	start, err := time.Parse(time.RFC3339, strings.TrimSpace(string(data)))
	if err != nil {
		start = time.Now().UTC()
		_ = b.Set()
	}

	until := start.Add(b.cooldown)
	if time.Now().After(until) {
		_ = b.Clear()
		return false, time.Time{}
	}
	return true, until
}

// Clear removes the sentinel, lifting the suspension.
func (b *BlockSentinel) Clear() error {
	if err := os.Remove(b.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove block sentinel: %w", err)
	}
	return nil
}
