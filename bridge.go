// Package posixrt bridges asynchronous OS signals into a single-goroutine
// cooperative script runtime, and exposes signal, mask and alarm operations
// to scripts.
//
// Signals are received by one trampoline goroutine. It only records the
// signal in a fixed-size queue and, on the first pending signal, installs a
// drain hook in the host runtime. The runtime later reaches a safe point,
// the hook fires on the runtime's goroutine and user callbacks run there.
//
// The bridge lock plays the role of a fully blocked signal mask: while the
// drain loop holds it the trampoline cannot record anything, and it is
// released only for the duration of each callback.
//
// Apart from the trampoline, all Bridge methods are meant to be called from
// the host runtime's goroutine.
package posixrt

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/cortesi/termlog"
	"github.com/dottedmag/posixrt/script"
	"github.com/dottedmag/posixrt/sigtab"
	"golang.org/x/sys/unix"
)

const (
	defaultQueueCapacity = 64
	defaultRaiseTimeout  = time.Second
)

// Host is the runtime that owns the safe-point hook slot.
type Host interface {
	Hook() script.Hook
	SetHook(script.Hook)
}

// ErrorPolicy decides what a callback error does to the drain cycle.
type ErrorPolicy int

const (
	// LogErrors logs the error and continues draining.
	LogErrors ErrorPolicy = iota
	// AbortOnError stops the drain step and returns the error to the
	// runtime. Remaining signals stay queued for the next safe point.
	AbortOnError
)

// ParseErrorPolicy parses "log" or "abort".
func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch s {
	case "", "log":
		return LogErrors, nil
	case "abort":
		return AbortOnError, nil
	}
	return 0, fmt.Errorf("unknown error policy %q", s)
}

// Options configures a Bridge.
type Options struct {
	Log           termlog.TermLog
	QueueCapacity int
	OnError       ErrorPolicy
	// RaiseTimeout bounds how long Raise waits for the trampoline to see a
	// signal sent to this process.
	RaiseTimeout time.Duration
}

// Bridge is the signal event bridge.
type Bridge struct {
	table        *sigtab.Table
	host         Host
	log          termlog.TermLog
	onError      ErrorPolicy
	raiseTimeout time.Duration

	sigCh     chan os.Signal
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once

	mu        sync.Mutex
	cond      *sync.Cond
	closed    bool
	registry  *registry
	queue     *pendingQueue
	delivered []uint64
	mask      sigset
	held      sigset

	// posted counts signals handed to the queue, dropped ones included.
	posted uint64

	// dispatch state
	armed     bool
	draining  bool
	saved     script.Hook
	prevTicks int
}

// New creates a bridge dispatching into host and starts its trampoline.
func New(host Host, opts Options) (*Bridge, error) {
	if host == nil {
		return nil, fmt.Errorf("posixrt: nil host")
	}
	if opts.Log == nil {
		return nil, fmt.Errorf("posixrt: nil log")
	}
	if opts.QueueCapacity <= 0 {
		opts.QueueCapacity = defaultQueueCapacity
	}
	if opts.RaiseTimeout <= 0 {
		opts.RaiseTimeout = defaultRaiseTimeout
	}
	table := sigtab.Default()
	b := &Bridge{
		table:        table,
		host:         host,
		log:          opts.Log,
		onError:      opts.OnError,
		raiseTimeout: opts.RaiseTimeout,
		// os/signal drops deliveries silently once this buffer is full;
		// those never reach the queue's drop counter.
		sigCh:        make(chan os.Signal, opts.QueueCapacity),
		done:         make(chan struct{}),
		stopped:      make(chan struct{}),
		registry:     newRegistry(table.Max()),
		queue:        newPendingQueue(opts.QueueCapacity),
		delivered:    make([]uint64, table.Max()+1),
		mask:         newSigset(table.Max()),
		held:         newSigset(table.Max()),
	}
	b.cond = sync.NewCond(&b.mu)
	go b.trampoline()
	return b, nil
}

// Table returns the signal table the bridge resolves names with.
func (b *Bridge) Table() *sigtab.Table {
	return b.table
}

// Close stops the trampoline and puts every signal the bridge touched back
// to the disposition it had before.
func (b *Bridge) Close() error {
	b.closeOnce.Do(func() {
		signal.Stop(b.sigCh)
		close(b.done)
		<-b.stopped

		b.mu.Lock()
		defer b.mu.Unlock()
		b.closed = true
		b.registry.each(func(reg *registration) {
			if reg.previous != dispUnset {
				applyDisposition(syscall.Signal(reg.number), reg.previous, nil)
			}
			reg.current = reg.previous
			reg.callback = nil
			b.held.del(reg.number)
		})
		b.cond.Broadcast()
	})
	return nil
}

func (b *Bridge) trampoline() {
	defer close(b.stopped)
	for {
		select {
		case s := <-b.sigCh:
			if sig, ok := s.(syscall.Signal); ok {
				b.deliver(int(sig))
			}
		case <-b.done:
			return
		}
	}
}

// deliver records one signal. It runs on the trampoline goroutine.
func (b *Bridge) deliver(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n <= 0 || n >= len(b.delivered) {
		return
	}
	b.delivered[n]++
	b.cond.Broadcast()
	if b.mask.has(n) {
		b.held.add(n)
		return
	}
	b.post(n)
}

func (b *Bridge) wake() {
	b.mu.Lock()
	b.cond.Broadcast()
	b.mu.Unlock()
}

// Signal installs a handler for the named signal.
func (b *Bridge) Signal(name string, h Handler) error {
	if h.kind == 0 || (h.kind == kindFunc && h.cb == nil) {
		return ErrInvalidHandler
	}
	n, err := b.table.Number(name)
	if err != nil {
		return fmt.Errorf("signal: %w", err)
	}
	canonical, err := b.table.Name(n)
	if err != nil {
		return fmt.Errorf("signal: %w", err)
	}
	sig := syscall.Signal(n)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}

	if h.kind == kindDefault {
		reg := b.registry.get(n)
		if reg == nil || reg.previous == dispUnset {
			return nil
		}
		reg.callback = nil
		reg.current = reg.previous
		b.held.del(n)
		applyDisposition(sig, reg.previous, b.sigCh)
		b.log.SayAs("debug", "%s: restored %s disposition", canonical, reg.previous)
		return nil
	}

	if sig == unix.SIGKILL || sig == unix.SIGSTOP {
		return &OSError{Op: "sigaction", Err: unix.EINVAL}
	}

	reg := b.registry.ensure(n, canonical)
	if reg.previous == dispUnset {
		reg.previous = dispDefault
		if signal.Ignored(sig) {
			reg.previous = dispIgnore
		}
	}
	switch h.kind {
	case kindFunc:
		reg.callback = h.cb
		reg.current = dispCallback
	case kindIgnore:
		reg.callback = nil
		reg.current = dispIgnore
	case kindCDefault:
		reg.callback = nil
		reg.current = dispDefault
	}
	if reg.current != dispCallback {
		// a pending blocked signal is discarded with its handler
		b.held.del(n)
	}
	applyDisposition(sig, reg.current, b.sigCh)
	b.log.SayAs("debug", "%s: installed %s disposition", canonical, reg.current)
	return nil
}

func applyDisposition(sig syscall.Signal, d disposition, ch chan os.Signal) {
	switch d {
	case dispCallback:
		signal.Notify(ch, sig)
	case dispIgnore:
		signal.Ignore(sig)
	case dispDefault:
		signal.Reset(sig)
	}
}

// Raise sends the named signal to this process. "test" checks that a
// signal could be sent without sending one.
//
// If the signal has a callback installed, Raise returns once the
// trampoline has recorded it, so the callback runs at the next safe point.
func (b *Bridge) Raise(name string) (int, error) {
	return b.send("raise", unix.Getpid(), name)
}

// Kill sends the named signal to pid. "test" checks pid without sending a
// signal.
func (b *Bridge) Kill(pid int, name string) (int, error) {
	return b.send("kill", pid, name)
}

func (b *Bridge) send(op string, pid int, name string) (int, error) {
	n := 0
	if name != "test" {
		var err error
		if n, err = b.table.Number(name); err != nil {
			return -1, fmt.Errorf("%s: %w", op, err)
		}
	}

	b.mu.Lock()
	wait := n > 0 && pid == unix.Getpid() && !b.closed && b.registry.notified(n)
	var seen uint64
	if wait {
		seen = b.delivered[n]
	}
	b.mu.Unlock()

	if err := unix.Kill(pid, syscall.Signal(n)); err != nil {
		return -1, &OSError{Op: op, Err: err}
	}
	if wait {
		b.awaitDelivery(n, seen)
	}
	return 0, nil
}

func (b *Bridge) awaitDelivery(n int, seen uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), b.raiseTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, b.wake)
	defer stop()

	b.mu.Lock()
	defer b.mu.Unlock()
	for b.delivered[n] == seen && ctx.Err() == nil && !b.closed {
		b.cond.Wait()
	}
	if b.delivered[n] == seen {
		b.log.Warn("signal %d was not observed within %s", n, b.raiseTimeout)
	}
}

// Alarm arranges for SIGALRM to be delivered after seconds; zero cancels.
// It returns the seconds that were left on the previous alarm.
func (b *Bridge) Alarm(seconds int) (int, error) {
	if seconds < 0 {
		return 0, fmt.Errorf("alarm: invalid seconds %d", seconds)
	}
	left, err := alarm(seconds)
	if err != nil {
		return 0, &OSError{Op: "alarm", Err: err}
	}
	return left, nil
}

// Sigmask changes the bridge's signal mask. Signals in add are added to
// the working set seeded by init, then signals in remove are taken out;
// unknown names are skipped. Held signals that become unblocked are queued.
func (b *Bridge) Sigmask(how How, init Init, add, remove []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	set, err := b.buildSet(init, add, remove)
	if err != nil {
		return err
	}
	switch how {
	case Block:
		for i := range b.mask {
			b.mask[i] |= set[i]
		}
	case Unblock:
		for i := range b.mask {
			b.mask[i] &^= set[i]
		}
	case SetMask:
		copy(b.mask, set)
	default:
		return fmt.Errorf("%w: %d", ErrInvalidHow, how)
	}
	b.releaseHeld()
	return nil
}

// Sigsuspend replaces the mask with the working set and waits until a
// signal outside it is posted, then restores the mask. Signals queued
// before the call do not end the wait. The callback for
// that signal runs at the runtime's next safe point.
func (b *Bridge) Sigsuspend(ctx context.Context, init Init, add, remove []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	set, err := b.buildSet(init, add, remove)
	if err != nil {
		return err
	}
	if b.closed {
		return ErrClosed
	}

	seen := b.posted
	saved := b.mask.clone()
	copy(b.mask, set)
	b.releaseHeld()

	stop := context.AfterFunc(ctx, b.wake)
	defer stop()
	for b.posted == seen && ctx.Err() == nil && !b.closed {
		b.cond.Wait()
	}

	copy(b.mask, saved)
	b.releaseHeld()
	if b.posted == seen {
		if b.closed {
			return ErrClosed
		}
		return ctx.Err()
	}
	return nil
}

// Pending returns the number of queued, undispatched signals.
func (b *Bridge) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queue.len()
}
