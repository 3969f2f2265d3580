package transport

import (
	"errors"
	"testing"
	"time"
)

// flakyTransport fails a number of transactions before recovering.
type flakyTransport struct {
	failures int
	calls    int
}

var errFlaky = errors.New("transaction dropped")

func (t *flakyTransport) attempt() error {
	t.calls++
	if t.calls <= t.failures {
		return errFlaky
	}
	return nil
}

func (t *flakyTransport) Read(addr uint64, buf []byte, timeout time.Duration) error {
	return t.attempt()
}

func (t *flakyTransport) Write(addr uint64, buf []byte, timeout time.Duration) error {
	return t.attempt()
}

func TestRetryPassesThroughFirstSuccess(t *testing.T) {
	inner := &flakyTransport{}
	tr := NewRetry(inner, WithDelayBounds(time.Millisecond, 2*time.Millisecond))

	if err := tr.Read(0, nil, 0); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("calls = %d, want 1", inner.calls)
	}
}

func TestRetryRecovers(t *testing.T) {
	inner := &flakyTransport{failures: 2}
	tr := NewRetry(inner, WithAttempts(3), WithDelayBounds(time.Millisecond, 2*time.Millisecond))

	if err := tr.Write(0, nil, 0); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if inner.calls != 3 {
		t.Errorf("calls = %d, want 3", inner.calls)
	}
}

func TestRetryStopsAfterMaxAttempts(t *testing.T) {
	inner := &flakyTransport{failures: 10}
	tr := NewRetry(inner, WithAttempts(4), WithDelayBounds(time.Millisecond, 2*time.Millisecond))

	err := tr.Read(0, nil, 0)
	if !errors.Is(err, errFlaky) {
		t.Fatalf("Read error = %v, want wrapped transaction failure", err)
	}
	if inner.calls != 4 {
		t.Errorf("calls = %d, want 4", inner.calls)
	}
}
