package usecase

import (
	"context"
)

type HealthUsecase interface {
	Check(ctx context.Context) map[string]string
}

// Pinger is satisfied by backing stores that can report liveness
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthOptions describes what the running instance is wired to
type HealthOptions struct {
	EmailConfigured    bool
	TelegramConfigured bool
	StrictDelivery     bool
	// Ledger is nil when the in-memory ledger is used
	Ledger Pinger
}

type healthUsecase struct {
	opts HealthOptions
}

func NewHealthUsecase(opts HealthOptions) HealthUsecase {
	return &healthUsecase{opts: opts}
}

// Check reports channel configuration and ledger reachability. It never
// includes credentials.
func (u *healthUsecase) Check(ctx context.Context) map[string]string {
	status := map[string]string{
		"status":   "ok",
		"email":    configured(u.opts.EmailConfigured),
		"telegram": configured(u.opts.TelegramConfigured),
		"delivery": "lenient",
		"ledger":   "memory",
	}
	if u.opts.StrictDelivery {
		status["delivery"] = "strict"
	}
	if !u.opts.EmailConfigured && !u.opts.TelegramConfigured {
		status["status"] = "degraded"
	}

	if u.opts.Ledger != nil {
		status["ledger"] = "redis"
		if err := u.opts.Ledger.Ping(ctx); err != nil {
			// Ledger failures fail open, so the service still accepts submissions
			status["ledger"] = "redis-unreachable"
			status["status"] = "degraded"
		}
	}
	return status
}

func configured(ok bool) string {
	if ok {
		return "configured"
	}
	return "not-configured"
}
