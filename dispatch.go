package posixrt

import (
	"errors"
	"fmt"

	"github.com/dottedmag/posixrt/script"
)

// post queues a deliverable signal and arms the drain hook if the bridge is
// idle. Must be called with b.mu held.
func (b *Bridge) post(n int) {
	b.posted++
	if !b.queue.enqueue(n) {
		return
	}
	b.cond.Broadcast()
	if b.armed {
		return
	}
	b.saved = b.host.Hook()
	b.prevTicks = 0
	b.host.SetHook(script.Hook{
		Func:  b.drainHook,
		Mask:  script.MaskCall | script.MaskReturn | script.MaskCount,
		Count: 1,
	})
	b.armed = true
}

// drainHook is installed while signals are pending. The hook it replaced
// keeps running from inside it with its own mask and count.
func (b *Bridge) drainHook(m *script.Machine, ev script.Event) error {
	b.mu.Lock()
	prev := b.saved
	b.mu.Unlock()

	if prev.Wants(ev) {
		due := true
		if ev == script.EventCount {
			b.prevTicks++
			due = b.prevTicks >= prev.Count
			if due {
				b.prevTicks = 0
			}
		}
		if due {
			if err := prev.Func(m, ev); err != nil {
				return err
			}
		}
	}
	return b.drain()
}

// drain dispatches queued signals until the queue is empty, then puts the
// saved hook back. A drain started from inside a callback returns at once;
// the outer drain picks up whatever was queued meanwhile.
func (b *Bridge) drain() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.armed || b.draining {
		return nil
	}
	b.draining = true
	defer func() { b.draining = false }()
	if dropped := b.queue.takeDropped(); dropped > 0 {
		b.log.Warn("signal queue full: dropped %d signals", dropped)
	}
	for {
		n, ok := b.queue.dequeue()
		if !ok {
			break
		}
		reg := b.registry.get(n)
		if reg == nil || reg.callback == nil {
			b.log.SayAs("debug", "discarding signal %d: no callback", n)
			continue
		}
		b.log.SayAs("debug", "dispatching %s", reg.name)
		if err := b.invoke(reg.callback, reg.name); err != nil {
			var ee script.ExitError
			if errors.As(err, &ee) {
				return err
			}
			if b.onError == AbortOnError {
				return fmt.Errorf("handler for %s: %w", reg.name, err)
			}
			b.log.Warn("handler for %s: %s", reg.name, err)
		}
	}
	b.host.SetHook(b.saved)
	b.saved = script.Hook{}
	b.armed = false
	return nil
}

// invoke runs cb with the bridge unlocked, so signals arriving during the
// callback are recorded, and relocks before returning.
func (b *Bridge) invoke(cb Callback, name string) error {
	b.mu.Unlock()
	defer b.mu.Lock()
	return cb(name)
}

// Dispatch drains pending signals immediately. It is the explicit safe
// point for hosts that poll instead of using hooks.
func (b *Bridge) Dispatch() error {
	return b.drain()
}
