package session

import (
	"sync"
	"time"

	"code.meridianbank.io/meridian-go/logging"
)

// Renewer schedules one proactive renewal ahead of session expiry. Arming
// replaces any pending schedule, cancelling is safe at any time, and a fired
// callback that was superseded in flight backs off without acting.
type Renewer struct {
	log    *logging.Logger
	margin time.Duration
	renew  func(tokenID string)

	mu      sync.Mutex
	timer   *time.Timer
	armedID string
}

func NewRenewer(log *logging.Logger, margin time.Duration, renew func(tokenID string)) *Renewer {
	return &Renewer{
		log:    log,
		margin: margin,
		renew:  renew,
	}
}

// Arm schedules a renewal of the given session token ahead of its expiry.
// With no configured margin the renewal runs once a tenth of the lifetime is
// left.
func (r *Renewer) Arm(expiresAt time.Time, tokenID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stop()

	remaining := time.Until(expiresAt)
	margin := r.margin
	if margin == 0 {
		margin = remaining / 10
	}
	delay := remaining - margin
	if delay < 0 {
		delay = 0
	}

	r.armedID = tokenID
	r.timer = time.AfterFunc(delay, func() {
		r.fire(tokenID)
	})

	r.log.Debug("session renewal armed",
		logging.Duration("delay", delay),
		logging.Time("expires-at", expiresAt),
	)
}

// Cancel drops any pending renewal. A callback that already fired re-checks
// the armed token and backs off on its own.
func (r *Renewer) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stop()
}

func (r *Renewer) fire(tokenID string) {
	r.mu.Lock()
	if r.armedID != tokenID {
		// A re-arm or a cancel raced ahead of the timer.
		r.mu.Unlock()
		return
	}
	r.armedID = ""
	r.timer = nil
	r.mu.Unlock()

	r.renew(tokenID)
}

func (r *Renewer) stop() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.armedID = ""
}
