package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

type safe struct {
	next   Notifier
	logger *log.Logger
}

// Safe wraps n so that Notify never fails: errors and panics from n are
// logged at warn level and dropped. A nil n behaves like Nop.
func Safe(n Notifier, logger *log.Logger) Notifier {
	if n == nil {
		n = Nop{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &safe{next: n, logger: logger}
}

func (s *safe) Notify(ctx context.Context, e Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("notifier panicked", "event", e.String(), "panic", fmt.Sprint(r))
		}
		err = nil
	}()
	if err := s.next.Notify(ctx, e); err != nil {
		s.logger.Warn("notification failed", "event", e.String(), "error", err)
	}
	return nil
}

// DefaultAsyncTimeout bounds one asynchronous delivery.
const DefaultAsyncTimeout = 10 * time.Second

// AsyncNotifier delivers events on background goroutines.
type AsyncNotifier struct {
	next    Notifier
	timeout time.Duration
	wg      sync.WaitGroup
}

// Async wraps n so that Notify returns immediately. Each event is delivered
// on its own goroutine with a context detached from the caller's and bounded
// by timeout (DefaultAsyncTimeout when not positive). Delivery goes through
// Safe, so failures are only logged.
func Async(n Notifier, logger *log.Logger, timeout time.Duration) *AsyncNotifier {
	if timeout <= 0 {
		timeout = DefaultAsyncTimeout
	}
	return &AsyncNotifier{next: Safe(n, logger), timeout: timeout}
}

// Notify schedules delivery of e and returns nil.
func (a *AsyncNotifier) Notify(ctx context.Context, e Event) error {
	ctx = context.WithoutCancel(ctx)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ctx, cancel := context.WithTimeout(ctx, a.timeout)
		defer cancel()
		_ = a.next.Notify(ctx, e)
	}()
	return nil
}

// Wait blocks until every scheduled delivery has finished.
func (a *AsyncNotifier) Wait() {
	a.wg.Wait()
}
