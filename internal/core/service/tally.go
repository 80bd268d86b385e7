package service

import (
	"sync"
	"upscaler/internal/core/domain"
)

// Tally counts per-file outcomes of a batch run. It is safe for concurrent use.
type Tally struct {
	mutex  sync.Mutex
	counts domain.Tally
}

func (t *Tally) Attempt() {
	t.mutex.Lock()
	t.counts.Attempted++
	t.mutex.Unlock()
}

func (t *Tally) Succeed() {
	t.mutex.Lock()
	t.counts.Succeeded++
	t.mutex.Unlock()
}

func (t *Tally) Fail() {
	t.mutex.Lock()
	t.counts.Failed++
	t.mutex.Unlock()
}

func (t *Tally) Snapshot() domain.Tally {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	return t.counts
}
