// Package clipboard copies text to the system clipboard from the CLI.
//
// [Copier] tries the platform clipboard first. When that is unavailable
// (headless host, SSH session, no xclip/wl-copy), it falls back to an OSC 52
// escape sequence written to the terminal, which most modern terminal
// emulators forward to the local clipboard. Either path arms a [Notice] for
// [NoticeDuration].
package clipboard

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/atotto/clipboard"
)

// NoticeDuration is how long the copy confirmation stays active.
const NoticeDuration = 2 * time.Second

// Writer places text on a clipboard.
type Writer interface {
	WriteText(text string) error
}

// WriterFunc adapts a function to [Writer].
type WriterFunc func(text string) error

// WriteText calls f.
func (f WriterFunc) WriteText(text string) error { return f(text) }

// System is the platform clipboard.
var System Writer = WriterFunc(func(text string) error {
	if clipboard.Unsupported {
		return errors.New("no clipboard utility available")
	}
	return clipboard.WriteAll(text)
})

// OSC52 returns a [Writer] that emits an OSC 52 "set clipboard" sequence
// to w.
func OSC52(w io.Writer) Writer {
	return WriterFunc(func(text string) error {
		seq := "\x1b]52;c;" + base64.StdEncoding.EncodeToString([]byte(text)) + "\a"
		if _, err := io.WriteString(w, seq); err != nil {
			return fmt.Errorf("write osc52 sequence: %w", err)
		}
		return nil
	})
}

// Method reports which path performed a copy.
type Method string

const (
	MethodPrimary  Method = "clipboard"
	MethodFallback Method = "osc52"
)

// Copier copies text through a primary writer with a fallback.
type Copier struct {
	primary  Writer
	fallback Writer
	notice   *Notice
}

// NewCopier creates a Copier. fallback may be nil; notice may be nil, in
// which case a new [Notice] with [NoticeDuration] is used.
func NewCopier(primary, fallback Writer, notice *Notice) *Copier {
	if notice == nil {
		notice = NewNotice(NoticeDuration)
	}
	return &Copier{primary: primary, fallback: fallback, notice: notice}
}

// Copy writes text to the clipboard and arms the notice on success.
func (c *Copier) Copy(text string) (Method, error) {
	primaryErr := c.primary.WriteText(text)
	if primaryErr == nil {
		c.notice.Set()
		return MethodPrimary, nil
	}
	if c.fallback == nil {
		return "", fmt.Errorf("copy to clipboard: %w", primaryErr)
	}
	if err := c.fallback.WriteText(text); err != nil {
		return "", fmt.Errorf("copy to clipboard: %w", errors.Join(primaryErr, err))
	}
	c.notice.Set()
	return MethodFallback, nil
}

// Notice returns the copier's confirmation flag.
func (c *Copier) Notice() *Notice {
	return c.notice
}

// timer is the subset of *time.Timer used by Notice.
type timer interface {
	Stop() bool
}

// Notice is a transient flag: Set activates it and it clears itself after
// its duration. Setting it again restarts the countdown.
type Notice struct {
	duration  time.Duration
	afterFunc func(time.Duration, func()) timer

	mu         sync.Mutex
	active     bool
	generation uint64
	timer      timer
	cleared    chan struct{}
}

// NewNotice creates an inactive Notice.
func NewNotice(d time.Duration) *Notice {
	return &Notice{
		duration: d,
		afterFunc: func(d time.Duration, f func()) timer {
			return time.AfterFunc(d, f)
		},
	}
}

// Set activates the notice and (re)starts the clear timer.
func (n *Notice) Set() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.timer != nil {
		n.timer.Stop()
	}
	n.active = true
	n.generation++
	if n.cleared == nil {
		n.cleared = make(chan struct{})
	}
	gen := n.generation
	n.timer = n.afterFunc(n.duration, func() { n.clear(gen) })
}

func (n *Notice) clear(gen uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	// a later Set owns the flag now
	if gen != n.generation {
		return
	}
	n.active = false
	n.timer = nil
	if n.cleared != nil {
		close(n.cleared)
		n.cleared = nil
	}
}

// Active reports whether the notice is currently set.
func (n *Notice) Active() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.active
}

// Done returns a channel closed when the notice clears. It returns a
// closed channel when the notice is not active.
func (n *Notice) Done() <-chan struct{} {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.active || n.cleared == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return n.cleared
}
