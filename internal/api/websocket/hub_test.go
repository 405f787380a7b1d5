package websocket

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/fastbreak/internal/pipeline"
)

func newRunningHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	go hub.Run()
	return hub
}

func addClient(hub *Hub, buffer int) *Client {
	client := &Client{hub: hub, send: make(chan []byte, buffer)}
	hub.register <- client
	return client
}

func TestHubBroadcastReachesEveryClient(t *testing.T) {
	hub := newRunningHub(t)
	a := addClient(hub, 4)
	b := addClient(hub, 4)
	require.Equal(t, 2, hub.ClientCount())

	hub.Broadcast([]byte("tip-off"))

	for _, c := range []*Client{a, b} {
		select {
		case msg := <-c.send:
			assert.Equal(t, "tip-off", string(msg))
		case <-time.After(time.Second):
			t.Fatal("client never received the broadcast")
		}
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := newRunningHub(t)
	slow := addClient(hub, 1)
	require.Equal(t, 1, hub.ClientCount())

	// The second message overflows the slow client's buffer.
	hub.Broadcast([]byte("one"))
	hub.Broadcast([]byte("two"))

	assert.Eventually(t, func() bool {
		return hub.ClientCount() == 0
	}, time.Second, 5*time.Millisecond)

	// The dropped client's channel is closed after draining.
	<-slow.send
	_, open := <-slow.send
	assert.False(t, open)
}

func TestHubUnregister(t *testing.T) {
	hub := newRunningHub(t)
	client := addClient(hub, 1)

	hub.unregister <- client
	assert.Eventually(t, func() bool {
		return hub.ClientCount() == 0
	}, time.Second, 5*time.Millisecond)
}

func TestHubBroadcastWithoutClientsDoesNotBlock(t *testing.T) {
	hub := NewHub() // not running: the buffered channel absorbs the burst
	for i := 0; i < 100; i++ {
		hub.Broadcast([]byte("event"))
	}
}

func TestHubReporterEvents(t *testing.T) {
	hub := newRunningHub(t)
	client := addClient(hub, 16)

	rep := &hubReporter{hub: hub}
	rep.OnRunStart(2000, 2019)
	rep.OnSeasonDone(2005, "players", 450, nil)
	rep.OnSeasonDone(2006, "teams", 0, errors.New("page unavailable"))
	rep.OnProgress("season 2005 players: 450 rows", 1, 40)
	rep.OnRunError(errors.New("cancelled"))

	types := make([]string, 0, 5)
	events := make([]event, 0, 5)
	for i := 0; i < 5; i++ {
		select {
		case msg := <-client.send:
			var ev event
			require.NoError(t, json.Unmarshal(msg, &ev))
			types = append(types, ev.Type)
			events = append(events, ev)
		case <-time.After(time.Second):
			t.Fatal("missing event")
		}
	}

	assert.Equal(t, []string{"run_start", "season", "season", "progress", "run_error"}, types)
	assert.Equal(t, 2005, events[1].Year)
	assert.Equal(t, 450, events[1].Rows)
	assert.Equal(t, "page unavailable", events[2].Error)
	assert.Equal(t, 40, events[3].Total)
	assert.Equal(t, "cancelled", events[4].Error)
}

var _ pipeline.Reporter = (*hubReporter)(nil)
