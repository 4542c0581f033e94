package handler

import (
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionLocksSerializeSameID(t *testing.T) {
	l := newSessionLocks()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.lock("s1")
			defer unlock()
			v := counter
			runtime.Gosched()
			counter = v + 1
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Equal(t, 0, l.len())
}

func TestSessionLocksIndependentIDs(t *testing.T) {
	l := newSessionLocks()
	unlockA := l.lock("a")
	unlockB := l.lock("b") // must not block on a
	assert.Equal(t, 2, l.len())
	unlockA()
	unlockB()
	assert.Equal(t, 0, l.len())

	l.lock("")()
	assert.Equal(t, 0, l.len())
}
