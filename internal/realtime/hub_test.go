package realtime_test

import (
	"testing"

	"github.com/dealbridge/negotiation-api/internal/realtime"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHub_PublishReachesRoomSubscribers(t *testing.T) {
	hub := realtime.NewHub(zap.NewNop())
	defer hub.Close()

	room := realtime.Room(uuid.New())
	other := realtime.Room(uuid.New())

	a := hub.Subscribe(room)
	b := hub.Subscribe(room)
	c := hub.Subscribe(other)

	hub.Publish(room, realtime.Event{Name: realtime.EventNewMessage, Data: "hello"})

	for _, sub := range []*realtime.Subscription{a, b} {
		event := <-sub.C
		assert.Equal(t, realtime.EventNewMessage, event.Name)
		assert.Equal(t, "hello", event.Data)
	}
	assert.Empty(t, c.C, "other rooms must not receive the event")
}

func TestHub_UnsubscribeClosesChannel(t *testing.T) {
	hub := realtime.NewHub(zap.NewNop())
	defer hub.Close()

	room := realtime.Room(uuid.New())
	sub := hub.Subscribe(room)
	require.Equal(t, 1, hub.SubscriberCount(room))

	hub.Unsubscribe(sub)
	assert.Equal(t, 0, hub.SubscriberCount(room))

	_, open := <-sub.C
	assert.False(t, open)

	// repeated unsubscribe must not panic
	hub.Unsubscribe(sub)
}

func TestHub_SlowSubscriberDropsEvents(t *testing.T) {
	hub := realtime.NewHub(zap.NewNop())
	defer hub.Close()

	room := realtime.Room(uuid.New())
	sub := hub.Subscribe(room)

	// overfill the buffer; publish must never block
	for i := 0; i < 100; i++ {
		hub.Publish(room, realtime.Event{Name: realtime.EventUserTyping, Data: i})
	}

	received := 0
	for {
		select {
		case <-sub.C:
			received++
			continue
		default:
		}
		break
	}
	assert.Greater(t, received, 0)
	assert.Less(t, received, 100, "overflow events should have been dropped")
}

func TestHub_CloseClosesAllSubscribers(t *testing.T) {
	hub := realtime.NewHub(zap.NewNop())

	room := realtime.Room(uuid.New())
	sub := hub.Subscribe(room)

	hub.Close()
	_, open := <-sub.C
	assert.False(t, open)

	// operations after close are no-ops
	hub.Publish(room, realtime.Event{Name: realtime.EventNewMessage})
	late := hub.Subscribe(room)
	_, open = <-late.C
	assert.False(t, open)
}

func TestRoomName(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, "negotiation-"+id.String(), realtime.Room(id))
}
