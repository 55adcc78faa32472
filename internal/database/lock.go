package database

import (
	"time"

	"github.com/pkg/errors"
)

// connLock serializes access to the single connection. A zero timeout blocks
// until the lock is free.
type connLock struct {
	slot    chan struct{}
	timeout time.Duration
}

func newConnLock(timeout time.Duration) *connLock {
	return &connLock{slot: make(chan struct{}, 1), timeout: timeout}
}

func (l *connLock) acquire(op string) error {
	if l.timeout <= 0 {
		l.slot <- struct{}{}
		return nil
	}

	select {
	case l.slot <- struct{}{}:
		return nil
	default:
	}

	timer := time.NewTimer(l.timeout)
	defer timer.Stop()

	select {
	case l.slot <- struct{}{}:
		return nil
	case <-timer.C:
		return newError(LockUnavailable, op, errors.Errorf("store busy for %v", l.timeout))
	}
}

func (l *connLock) release() {
	<-l.slot
}
