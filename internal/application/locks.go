package application

import "sync"

// keyedMutex serializes critical sections per key. Every status change of an
// existing appointment holds that appointment's lock; operations that allocate
// a slot hold the professional's lock as well, always acquired before the
// appointment lock. Entries are never evicted: the table is bounded by the
// number of professionals and live appointments.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key and returns the matching unlock function.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}

func professionalLockKey(professionalID string) string {
	return "professional:" + professionalID
}

func appointmentLockKey(appointmentID string) string {
	return "appointment:" + appointmentID
}
