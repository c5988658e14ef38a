package status

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// defaultBufferSize is the number of lines that can be queued before Post blocks.
const defaultBufferSize = 256

// Reporter is the producer side of a feed.
// Extractors and crawlers depend on this interface rather than on Feed.
type Reporter interface {
	// Post appends one line to the feed.
	Post(line string)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(line string)

// Post calls f(line).
func (f ReporterFunc) Post(line string) {
	f(line)
}

// Discard is a Reporter that drops every line.
var Discard Reporter = ReporterFunc(func(string) {})

// Feed is an ordered, append-only sink for progress text.
// Post and Postf are safe for concurrent use.
type Feed struct {
	// out receives every accepted line followed by a newline. May be nil.
	out io.Writer

	// logger mirrors lines at debug level when set.
	logger *slog.Logger

	// prefix is prepended to every line, e.g. the identifier in batch mode.
	prefix string

	// bufferSize is the capacity of the queue.
	bufferSize int

	queue chan string
	done  chan struct{}

	// closeMu guards closed and sending on queue.
	closeMu sync.RWMutex
	closed  bool

	// historyMu guards history, which only the consumer appends to.
	historyMu sync.Mutex
	history   []string
}

// Option configures a Feed.
type Option func(*Feed)

// WithLogger mirrors every line to logger at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Feed) {
		f.logger = logger
	}
}

// WithPrefix prepends prefix to every line.
func WithPrefix(prefix string) Option {
	return func(f *Feed) {
		f.prefix = prefix
	}
}

// WithBufferSize sets the queue capacity. Values below 1 are ignored.
func WithBufferSize(n int) Option {
	return func(f *Feed) {
		if n > 0 {
			f.bufferSize = n
		}
	}
}

// NewFeed creates a feed writing to out and starts its consumer.
// out may be nil, in which case lines are only kept in the history.
func NewFeed(out io.Writer, opts ...Option) *Feed {
	f := &Feed{
		out:        out,
		bufferSize: defaultBufferSize,
		history:    make([]string, 0),
		done:       make(chan struct{}),
	}

	for _, opt := range opts {
		opt(f)
	}

	f.queue = make(chan string, f.bufferSize)
	go f.consume()

	return f
}

// Post enqueues one line. Embedded newlines are kept inside the same entry.
// Posting after Close is a no-op.
func (f *Feed) Post(line string) {
	f.closeMu.RLock()
	defer f.closeMu.RUnlock()
	if f.closed {
		return
	}
	f.queue <- f.prefix + strings.TrimRight(line, "\n")
}

// Postf formats and enqueues one line.
func (f *Feed) Postf(format string, args ...any) {
	f.Post(fmt.Sprintf(format, args...))
}

// Close stops accepting lines, waits for queued lines to be written,
// and stops the consumer. It is safe to call more than once.
func (f *Feed) Close() {
	f.closeMu.Lock()
	if f.closed {
		f.closeMu.Unlock()
		<-f.done
		return
	}
	f.closed = true
	close(f.queue)
	f.closeMu.Unlock()

	<-f.done
}

// Lines returns a snapshot of every line written so far.
func (f *Feed) Lines() []string {
	f.historyMu.Lock()
	defer f.historyMu.Unlock()
	out := make([]string, len(f.history))
	copy(out, f.history)
	return out
}

// consume is the single owner of the output writer.
func (f *Feed) consume() {
	defer close(f.done)

	for line := range f.queue {
		f.historyMu.Lock()
		f.history = append(f.history, line)
		f.historyMu.Unlock()

		if f.out != nil {
			// Write errors are ignored: the feed is best-effort display output.
			_, _ = io.WriteString(f.out, line+"\n") //nolint:errcheck
		}
		if f.logger != nil {
			f.logger.Debug("status", "line", line)
		}
	}
}
