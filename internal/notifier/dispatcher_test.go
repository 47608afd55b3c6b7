package notifier

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"portfolio-contact/internal/domain"
)

type fakeEmail struct {
	outcome domain.DeliveryOutcome
	calls   atomic.Int32
	panics  bool
}

func (f *fakeEmail) SendContactEmail(context.Context, domain.ContactSubmission) domain.DeliveryOutcome {
	f.calls.Add(1)
	if f.panics {
		panic("smtp exploded")
	}
	return f.outcome
}

type fakeChat struct {
	configured bool
	outcome    domain.DeliveryOutcome
	delay      time.Duration
	calls      atomic.Int32
	ctxErr     atomic.Value
	panics     bool
}

func (f *fakeChat) IsConfigured() bool { return f.configured }

func (f *fakeChat) Notify(ctx context.Context, _ domain.ContactSubmission) domain.DeliveryOutcome {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if ctx.Err() != nil {
		f.ctxErr.Store(ctx.Err())
	}
	if f.panics {
		panic("telegram exploded")
	}
	return f.outcome
}

var submission = domain.ContactSubmission{
	Name:    "Boris Kuznetsov",
	Email:   "boris@example.com",
	Message: "SECRET-BODY-CONTENT please call me back about Docker.",
}

func TestDispatch_CombinationPolicy(t *testing.T) {
	tests := []struct {
		name          string
		email         domain.DeliveryOutcome
		chat          *fakeChat
		strict        bool
		want          bool
		wantChatCalls int32
	}{
		{"email sent, chat unconfigured", domain.DeliverySent, &fakeChat{}, false, true, 0},
		{"email sent, chat configured", domain.DeliverySent, &fakeChat{configured: true, outcome: domain.DeliverySent}, false, true, 1},
		{"email sent, chat fails", domain.DeliverySent, &fakeChat{configured: true, outcome: domain.DeliveryFailed}, false, true, 1},
		{"email failed, chat configured", domain.DeliveryFailed, &fakeChat{configured: true, outcome: domain.DeliverySent}, false, true, 1},
		{"email failed, chat configured but fails (lenient)", domain.DeliveryFailed, &fakeChat{configured: true, outcome: domain.DeliveryFailed}, false, true, 1},
		{"email unconfigured, chat configured", domain.DeliveryNotConfigured, &fakeChat{configured: true, outcome: domain.DeliverySent}, false, true, 1},
		{"email failed, chat unconfigured", domain.DeliveryFailed, &fakeChat{}, false, false, 0},
		{"nothing configured", domain.DeliveryNotConfigured, &fakeChat{}, false, false, 0},
		{"strict: email failed, chat sent", domain.DeliveryFailed, &fakeChat{configured: true, outcome: domain.DeliverySent}, true, true, 1},
		{"strict: email failed, chat fails", domain.DeliveryFailed, &fakeChat{configured: true, outcome: domain.DeliveryFailed}, true, false, 1},
		{"strict: email sent, chat fails", domain.DeliverySent, &fakeChat{configured: true, outcome: domain.DeliveryFailed}, true, true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			email := &fakeEmail{outcome: tt.email}
			d := NewDispatcher(email, tt.chat, zap.NewNop(), DispatcherOptions{Strict: tt.strict})

			got := d.Dispatch(context.Background(), submission)
			d.Wait()

			assert.Equal(t, tt.want, got)
			assert.Equal(t, int32(1), email.calls.Load())
			assert.Equal(t, tt.wantChatCalls, tt.chat.calls.Load())
		})
	}
}

func TestDispatch_NilChatIsUnconfigured(t *testing.T) {
	d := NewDispatcher(&fakeEmail{outcome: domain.DeliverySent}, nil, nil, DispatcherOptions{})
	assert.True(t, d.Dispatch(context.Background(), submission))

	d = NewDispatcher(&fakeEmail{outcome: domain.DeliveryFailed}, nil, nil, DispatcherOptions{})
	assert.False(t, d.Dispatch(context.Background(), submission))
}

func TestDispatch_ChatIsDetachedFromRequest(t *testing.T) {
	chat := &fakeChat{configured: true, outcome: domain.DeliverySent, delay: 100 * time.Millisecond}
	d := NewDispatcher(&fakeEmail{outcome: domain.DeliverySent}, chat, zap.NewNop(), DispatcherOptions{})

	ctx, cancel := context.WithCancel(context.Background())
	start := time.Now()
	ok := d.Dispatch(ctx, submission)
	elapsed := time.Since(start)
	cancel()

	assert.True(t, ok)
	assert.Less(t, elapsed, 100*time.Millisecond, "verdict must not wait for the chat send")

	d.Wait()
	assert.Equal(t, int32(1), chat.calls.Load())
	assert.Nil(t, chat.ctxErr.Load(), "cancelling the request must not cancel the chat send")
}

func TestDispatch_PanicsAreContained(t *testing.T) {
	t.Run("email panic", func(t *testing.T) {
		d := NewDispatcher(&fakeEmail{panics: true}, &fakeChat{}, zap.NewNop(), DispatcherOptions{})
		var ok bool
		require.NotPanics(t, func() { ok = d.Dispatch(context.Background(), submission) })
		assert.False(t, ok)
	})

	t.Run("chat panic", func(t *testing.T) {
		chat := &fakeChat{configured: true, panics: true}
		d := NewDispatcher(&fakeEmail{outcome: domain.DeliveryFailed}, chat, zap.NewNop(), DispatcherOptions{Strict: true})
		var ok bool
		require.NotPanics(t, func() { ok = d.Dispatch(context.Background(), submission) })
		d.Wait()
		assert.False(t, ok)
	})
}

func TestDispatch_NoChatLogOmitsMessageBody(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	d := NewDispatcher(&fakeEmail{outcome: domain.DeliveryFailed}, &fakeChat{}, zap.New(core), DispatcherOptions{})

	ctx := context.WithValue(context.Background(), domain.KeyRequestID, "req-42")
	assert.False(t, d.Dispatch(ctx, submission))

	entries := logs.FilterMessage("No chat channel configured and email not sent").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-42", fields["request_id"])
	for key, value := range fields {
		s, _ := value.(string)
		assert.NotContains(t, s, "SECRET-BODY-CONTENT", "field %q leaks the message body", key)
		assert.NotEqual(t, "boris@example.com", s, "field %q leaks the raw address", key)
	}
}
