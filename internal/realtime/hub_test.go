package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h := NewHub(zap.NewNop())
	go h.Run(ctx)
	return h
}

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg := <-c.Send:
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
		return nil
	}
}

func TestHubSendToUser(t *testing.T) {
	h := startHub(t)
	user := uuid.New()

	tab1, tab2, other := NewClient(user), NewClient(user), NewClient(uuid.New())
	h.RegisterClient(tab1)
	h.RegisterClient(tab2)
	h.RegisterClient(other)

	h.SendToUser(user, map[string]string{"type": "ping"})

	assert.JSONEq(t, `{"type":"ping"}`, string(receive(t, tab1)))
	assert.JSONEq(t, `{"type":"ping"}`, string(receive(t, tab2)))
	select {
	case <-other.Send:
		t.Fatal("other user must not receive the event")
	default:
	}
}

func TestHubUnregisterClosesChannel(t *testing.T) {
	h := startHub(t)
	c := NewClient(uuid.New())
	h.RegisterClient(c)
	h.UnregisterClient(c)

	select {
	case _, ok := <-c.Send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}
}

func TestBrokerLocalDelivery(t *testing.T) {
	h := startHub(t)
	owner, freelancer := uuid.New(), uuid.New()
	oc, fc := NewClient(owner), NewClient(freelancer)
	h.RegisterClient(oc)
	h.RegisterClient(fc)

	b := NewBroker(nil, h, "test", zap.NewNop())
	ev := Event{Type: "project_updated", Entity: "project", ID: uuid.New(), Status: "in-progress", UpdatedAt: time.Now().UTC()}
	require.NoError(t, b.Publish(context.Background(), []uuid.UUID{owner, freelancer, owner}, ev))

	var got Event
	require.NoError(t, json.Unmarshal(receive(t, oc), &got))
	assert.Equal(t, ev.ID, got.ID)
	assert.Equal(t, "in-progress", got.Status)
	receive(t, fc)

	select {
	case <-oc.Send:
		t.Fatal("duplicate recipient must be delivered once")
	default:
	}
}

func TestHubShutdownClosesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub(zap.NewNop())
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()

	c := NewClient(uuid.New())
	h.RegisterClient(c)
	cancel()
	<-stopped

	_, open := <-c.Send
	assert.False(t, open)

	// must not block once the hub is gone
	h.UnregisterClient(c)
	late := NewClient(uuid.New())
	h.RegisterClient(late)
	_, open = <-late.Send
	assert.False(t, open)
}

func TestHubDeliversImmediatelyAfterRegister(t *testing.T) {
	for i := 0; i < 300; i++ {
		h := startHub(t)
		a, c := NewClient(uuid.New()), NewClient(uuid.New())
		h.RegisterClient(a)
		h.RegisterClient(c)

		h.SendRaw(c.UserID, []byte(`{"n":1}`))
		select {
		case msg := <-c.Send:
			require.JSONEq(t, `{"n":1}`, string(msg))
		default:
			t.Fatalf("iteration %d: event sent right after register was dropped", i)
		}
	}
}
