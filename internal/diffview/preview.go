package diffview

import (
	"context"
	"fmt"

	"chatcli/internal/permission"
)

// Config governs the overwrite confirmation gate. It is persisted as part
// of the session file.
type Config struct {
	Enabled        bool `json:"enabled"`
	ThresholdLines int  `json:"threshold_lines"`
	MaxLines       int  `json:"max_lines"`
}

const minMaxLines = 10

// DefaultConfig returns the gate's startup settings.
func DefaultConfig() Config {
	return Config{Enabled: true, ThresholdLines: 5, MaxLines: 80}
}

// Normalize clamps config fields into their allowed ranges.
func (c *Config) Normalize() {
	if c.ThresholdLines < 0 {
		c.ThresholdLines = 0
	}
	if c.MaxLines < minMaxLines {
		c.MaxLines = minMaxLines
	}
}

// Decision is the outcome of a preview check.
type Decision struct {
	Proceed      bool
	ChangedLines int
}

// Previewer gates overwrites of existing file content. The config pointer is
// shared with the session so /diff adjustments take effect immediately.
type Previewer struct {
	cfg *Config
}

func NewPreviewer(cfg *Config) *Previewer {
	return &Previewer{cfg: cfg}
}

func (p *Previewer) Config() *Config {
	return p.cfg
}

// Decide computes the change magnitude and, when it meets the threshold,
// shows a colorized unified diff and blocks for confirmation. Disabled
// preview, sub-threshold changes, and a missing prompter all auto-approve.
func (p *Previewer) Decide(ctx context.Context, path, before, after string) Decision {
	changed := ChangedLines(before, after)
	if p == nil || p.cfg == nil || !p.cfg.Enabled || changed < p.cfg.ThresholdLines {
		return Decision{Proceed: true, ChangedLines: changed}
	}
	prompter := permission.PrompterFrom(ctx)
	if prompter == nil {
		// No renderer available to show the diff; do not block.
		return Decision{Proceed: true, ChangedLines: changed}
	}

	diff, additions, deletions := BuildUnifiedDiff(path, before, after)
	diff, _ = Truncate(diff, p.cfg.MaxLines)
	prompter.Notify(fmt.Sprintf("overwrite %s: %d changed lines (+%d -%d)\n%s",
		path, changed, additions, deletions, Colorize(diff)))

	ok, err := prompter.Confirm(ctx, fmt.Sprintf("Apply these changes to %s?", path))
	if err != nil || !ok {
		return Decision{Proceed: false, ChangedLines: changed}
	}
	return Decision{Proceed: true, ChangedLines: changed}
}
