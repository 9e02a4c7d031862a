package pubsub

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubject_NoValueInitially(t *testing.T) {
	s := NewSubject[string]()

	_, ok := s.Get()
	assert.False(t, ok)

	var got []string
	s.Subscribe(func(v string) { got = append(got, v) })
	assert.Empty(t, got, "no replay before first Set")
}

func TestSubject_DeliversBeforeSetReturns(t *testing.T) {
	s := NewSubject[int]()

	var got []int
	s.Subscribe(func(v int) { got = append(got, v) })

	s.Set(1)
	require.Equal(t, []int{1}, got)

	s.Set(2)
	require.Equal(t, []int{1, 2}, got)
}

func TestSubject_ReplaysLatestToLateSubscriber(t *testing.T) {
	s := NewSubject[string]()
	s.Set("first")
	s.Set("second")

	var got []string
	s.Subscribe(func(v string) { got = append(got, v) })

	assert.Equal(t, []string{"second"}, got)
}

func TestSubject_SubscriptionOrder(t *testing.T) {
	s := NewSubject[int]()

	var order []string
	s.Subscribe(func(int) { order = append(order, "a") })
	s.Subscribe(func(int) { order = append(order, "b") })
	s.Subscribe(func(int) { order = append(order, "c") })

	s.Set(1)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestSubject_Cancel(t *testing.T) {
	s := NewSubject[int]()

	var got []int
	cancel := s.Subscribe(func(v int) { got = append(got, v) })

	s.Set(1)
	cancel()
	cancel() // safe to call twice
	s.Set(2)

	assert.Equal(t, []int{1}, got)
}

func TestSubject_CancelMiddleSubscriberKeepsOthers(t *testing.T) {
	s := NewSubject[int]()

	var a, b int
	cancelA := s.Subscribe(func(v int) { a = v })
	s.Subscribe(func(v int) { b = v })

	cancelA()
	s.Set(42)

	assert.Zero(t, a)
	assert.Equal(t, 42, b)
}

func TestSubject_ConcurrentSet(t *testing.T) {
	s := NewSubject[int]()

	var mu sync.Mutex
	count := 0
	s.Subscribe(func(int) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Set(i)
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 50, count, "each Set delivered exactly once")
}
