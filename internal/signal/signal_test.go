package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetReturnsInitial(t *testing.T) {
	v := New(42)
	assert.Equal(t, 42, v.Get())
}

func TestSetNotifiesSubscribers(t *testing.T) {
	v := New("a")

	var seen []string
	v.Subscribe(func(value string) {
		seen = append(seen, value)
	})

	v.Set("b")
	v.Set("c")

	assert.Equal(t, []string{"b", "c"}, seen)
	assert.Equal(t, "c", v.Get())
}

func TestSubscribeDoesNotReplayCurrentValue(t *testing.T) {
	v := New(1)

	called := false
	v.Subscribe(func(int) { called = true })

	assert.False(t, called)
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	v := New(0)

	count := 0
	unsubscribe := v.Subscribe(func(int) { count++ })

	v.Set(1)
	unsubscribe()
	v.Set(2)

	assert.Equal(t, 1, count)
}

func TestMultipleSubscribers(t *testing.T) {
	v := New(0)

	first, second := 0, 0
	v.Subscribe(func(value int) { first = value })
	v.Subscribe(func(value int) { second = value })

	v.Set(7)

	assert.Equal(t, 7, first)
	assert.Equal(t, 7, second)
}
