package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

var errControllerClosed = errors.New("cancel controller closed")

type confirmRequest struct {
	ctx      context.Context
	question string
	respCh   chan confirmResponse
}

type confirmResponse struct {
	granted bool
	err     error
}

// runtimeController owns the terminal while a turn is in flight: it watches
// raw keypresses so Esc or Ctrl+C can cancel the outstanding request, and it
// serves the permission and diff confirmations that tools raise mid-turn.
// It implements permission.Prompter.
type runtimeController struct {
	stdinFd int
	out     io.Writer
	cancel  context.CancelFunc
	oldTerm *term.State

	stopCh    chan struct{}
	doneCh    chan struct{}
	confirmCh chan confirmRequest

	cancelledByEsc atomic.Bool
	interrupted    atomic.Bool

	closeOnce sync.Once
	closeErr  error
}

func newRuntimeController(stdinFd int, out io.Writer, cancel context.CancelFunc) (*runtimeController, error) {
	oldState, err := term.MakeRaw(stdinFd)
	if err != nil {
		return nil, fmt.Errorf("enable raw mode: %w", err)
	}
	c := &runtimeController{
		stdinFd:   stdinFd,
		out:       out,
		cancel:    cancel,
		oldTerm:   oldState,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
		confirmCh: make(chan confirmRequest),
	}
	go c.loop()
	return c, nil
}

// Close stops the listener and restores the terminal. Safe on every exit
// path, including cancellation.
func (c *runtimeController) Close() error {
	if c == nil {
		return nil
	}
	c.closeOnce.Do(func() {
		close(c.stopCh)
		<-c.doneCh
		if c.oldTerm != nil {
			c.closeErr = term.Restore(c.stdinFd, c.oldTerm)
		}
	})
	return c.closeErr
}

func (c *runtimeController) CancelledByEsc() bool {
	return c != nil && c.cancelledByEsc.Load()
}

func (c *runtimeController) Interrupted() bool {
	return c != nil && c.interrupted.Load()
}

// Confirm blocks for a yes/no answer typed on the raw terminal.
func (c *runtimeController) Confirm(ctx context.Context, question string) (bool, error) {
	if c == nil {
		return false, errControllerClosed
	}
	if ctx == nil {
		ctx = context.Background()
	}
	req := confirmRequest{
		ctx:      ctx,
		question: question,
		respCh:   make(chan confirmResponse, 1),
	}
	select {
	case <-c.stopCh:
		return false, errControllerClosed
	case <-ctx.Done():
		return false, ctx.Err()
	case c.confirmCh <- req:
	}
	select {
	case <-c.stopCh:
		return false, errControllerClosed
	case <-ctx.Done():
		return false, ctx.Err()
	case resp := <-req.respCh:
		return resp.granted, resp.err
	}
}

func (c *runtimeController) Notify(message string) {
	if c == nil || c.out == nil {
		return
	}
	fmt.Fprintf(c.out, "%s\r\n", message)
}

func (c *runtimeController) loop() {
	defer close(c.doneCh)

	var pending *confirmRequest
	var lineInput strings.Builder

	for {
		if pending != nil {
			select {
			case <-pending.ctx.Done():
				c.respond(pending, false, pending.ctx.Err())
				pending = nil
				lineInput.Reset()
				continue
			default:
			}
		}

		select {
		case <-c.stopCh:
			if pending != nil {
				c.respond(pending, false, errControllerClosed)
			}
			return
		case req := <-c.confirmCh:
			if pending != nil {
				c.respond(&req, false, errors.New("another confirmation is in progress"))
				continue
			}
			pending = &req
			lineInput.Reset()
			fmt.Fprintf(c.out, "\r\n%s (y/N, Esc=cancel): ", req.question)
			continue
		default:
		}

		b, ok := c.readByteWithTimeout(80 * time.Millisecond)
		if !ok {
			continue
		}

		if pending == nil {
			c.handleRuntimeKey(b)
			continue
		}
		if c.handleConfirmKey(pending, &lineInput, b) {
			pending = nil
			lineInput.Reset()
		}
	}
}

func (c *runtimeController) readByteWithTimeout(timeout time.Duration) (byte, bool) {
	ms := int(timeout / time.Millisecond)
	if ms <= 0 {
		ms = 1
	}
	fds := []unix.PollFd{{Fd: int32(c.stdinFd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, ms)
	if err != nil || n <= 0 {
		return 0, false
	}
	if fds[0].Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) == 0 {
		return 0, false
	}
	var one [1]byte
	nr, err := unix.Read(c.stdinFd, one[:])
	if err != nil || nr != 1 {
		return 0, false
	}
	return one[0], true
}

func (c *runtimeController) handleRuntimeKey(b byte) {
	switch b {
	case 0x03: // Ctrl+C
		c.interrupted.Store(true)
		if c.cancel != nil {
			c.cancel()
		}
	case 0x1b: // Esc
		c.cancelledByEsc.Store(true)
		if c.cancel != nil {
			c.cancel()
		}
	}
}

func (c *runtimeController) handleConfirmKey(p *confirmRequest, lineInput *strings.Builder, b byte) bool {
	switch b {
	case 0x03: // Ctrl+C
		c.interrupted.Store(true)
		if c.cancel != nil {
			c.cancel()
		}
		c.respond(p, false, context.Canceled)
		return true
	case 0x1b: // Esc cancels the whole run
		c.cancelledByEsc.Store(true)
		if c.cancel != nil {
			c.cancel()
		}
		fmt.Fprint(c.out, "\r\n")
		c.respond(p, false, context.Canceled)
		return true
	case '\r', '\n':
		answer, ok := parseYesNo(lineInput.String())
		if !ok {
			fmt.Fprint(c.out, "\r\nplease answer y or n (Esc=cancel): ")
			lineInput.Reset()
			return false
		}
		fmt.Fprint(c.out, "\r\n")
		c.respond(p, answer, nil)
		return true
	case 0x7f, 0x08: // Backspace
		s := lineInput.String()
		if s == "" {
			return false
		}
		next, width := deleteLastRuneAndWidth(s)
		lineInput.Reset()
		lineInput.WriteString(next)
		for i := 0; i < width; i++ {
			c.out.Write([]byte{'\b', ' ', '\b'})
		}
		return false
	default:
		if b < 0x20 || b > 0x7e {
			return false
		}
		lineInput.WriteByte(b)
		c.out.Write([]byte{b})
		return false
	}
}

func parseYesNo(input string) (granted, ok bool) {
	switch strings.TrimSpace(strings.ToLower(input)) {
	case "", "n", "no":
		return false, true
	case "y", "yes":
		return true, true
	default:
		return false, false
	}
}

func (c *runtimeController) respond(p *confirmRequest, granted bool, err error) {
	if p == nil {
		return
	}
	select {
	case p.respCh <- confirmResponse{granted: granted, err: err}:
	default:
	}
}

// isTTY reports whether fd is an interactive terminal.
func isTTY(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}
