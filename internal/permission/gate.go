// Package permission implements the per-path consent cache that gates file
// access by the model's tools, plus the always-ask confirmation used for
// shell commands.
package permission

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Kind is the access class a grant covers.
type Kind string

const (
	KindRead  Kind = "read"
	KindWrite Kind = "write"
)

// Prompter asks the user a blocking yes/no question. During a running turn
// the REPL's raw-mode controller implements this; at idle the readline
// prompt does.
type Prompter interface {
	Confirm(ctx context.Context, question string) (bool, error)
	Notify(message string)
}

type prompterKey struct{}

// WithPrompter attaches the interactive prompter to a turn context.
func WithPrompter(ctx context.Context, p Prompter) context.Context {
	return context.WithValue(ctx, prompterKey{}, p)
}

// PrompterFrom returns the context prompter, or nil when none is attached.
func PrompterFrom(ctx context.Context) Prompter {
	p, _ := ctx.Value(prompterKey{}).(Prompter)
	return p
}

// Gate caches per-path grants for the lifetime of the process. Grants are
// never persisted.
type Gate struct {
	mu      sync.Mutex
	granted map[Kind]map[string]struct{}
}

func NewGate() *Gate {
	return &Gate{granted: map[Kind]map[string]struct{}{
		KindRead:  {},
		KindWrite: {},
	}}
}

// Check returns whether access of the given kind to absPath is allowed.
// A cached grant passes without prompting (with a notice); otherwise the
// user is asked once, and a "yes" is remembered for the exact path. Missing
// prompter or prompt failure denies: denial is an answer, not an error.
func (g *Gate) Check(ctx context.Context, kind Kind, absPath string) bool {
	g.mu.Lock()
	_, ok := g.granted[kind][absPath]
	g.mu.Unlock()

	p := PrompterFrom(ctx)
	if ok {
		if p != nil {
			p.Notify(fmt.Sprintf("using prior %s permission for %s", kind, absPath))
		}
		return true
	}
	if p == nil {
		return false
	}
	allowed, err := p.Confirm(ctx, fmt.Sprintf("Allow %s access to %s?", kind, absPath))
	if err != nil || !allowed {
		return false
	}
	g.mu.Lock()
	g.granted[kind][absPath] = struct{}{}
	g.mu.Unlock()
	return true
}

// ConfirmCommand asks before every shell command. Command approvals are
// deliberately never cached; the asymmetry with Check is intentional.
func (g *Gate) ConfirmCommand(ctx context.Context, command string) bool {
	p := PrompterFrom(ctx)
	if p == nil {
		return false
	}
	allowed, err := p.Confirm(ctx, fmt.Sprintf("Run command?\n  %s", command))
	if err != nil {
		return false
	}
	return allowed
}

// Grants lists the cached grants as "kind path" lines, sorted, for /perms.
func (g *Gate) Grants() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []string
	for kind, paths := range g.granted {
		for path := range paths {
			out = append(out, string(kind)+" "+path)
		}
	}
	sort.Strings(out)
	return out
}

// Clear drops every cached grant.
func (g *Gate) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for kind := range g.granted {
		g.granted[kind] = map[string]struct{}{}
	}
}

// String summarizes the cache for display.
func (g *Gate) String() string {
	grants := g.Grants()
	if len(grants) == 0 {
		return "no cached permissions"
	}
	return strings.Join(grants, "\n")
}
