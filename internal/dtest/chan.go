package dtest

import (
	"testing"
	"time"
)

// ScheduleDelay is how long the channel helpers wait
// before deciding that a channel operation is not going to happen.
// It is generous enough for a loaded CI machine.
const ScheduleDelay = 250 * time.Millisecond

// SendSoon sends v on ch, failing t if the send does not happen
// within [ScheduleDelay].
func SendSoon[T any](t testing.TB, ch chan<- T, v T) {
	t.Helper()

	select {
	case ch <- v:
	case <-time.After(ScheduleDelay):
		t.Fatalf("value not sent within %s", ScheduleDelay)
	}
}

// ReceiveSoon returns the next value from ch, failing t if none arrives
// within [ScheduleDelay].
// A closed channel counts as a receive of the zero value.
func ReceiveSoon[T any](t testing.TB, ch <-chan T) T {
	t.Helper()

	select {
	case v := <-ch:
		return v
	case <-time.After(ScheduleDelay):
		t.Fatalf("no value received within %s", ScheduleDelay)
	}

	panic("unreachable")
}

// IsSending asserts that ch is immediately readable,
// which for a signal channel means it has been closed.
func IsSending[T any](t testing.TB, ch <-chan T) {
	t.Helper()

	select {
	case <-ch:
	default:
		t.Fatal("channel should have been ready to receive")
	}
}

// NotSending asserts that ch has nothing to receive right now,
// after a short grace period for any in-flight send.
func NotSending[T any](t testing.TB, ch <-chan T) {
	t.Helper()

	select {
	case <-ch:
		t.Fatal("channel should not have been ready to receive")
	case <-time.After(10 * time.Millisecond):
	}
}
