package track

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"ordertrack/internal/model"
	"ordertrack/internal/stomp"
	"ordertrack/internal/store"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(_ *http.Request) bool { return true }}

// stompPeer is a fake push backend speaking just enough STOMP for the
// connector: CONNECT/CONNECTED handshake, SUBSCRIBE bookkeeping, and
// test-driven MESSAGE frames.
type stompPeer struct {
	mu           sync.Mutex
	connects     int
	subscribes   int
	lastConnect  stomp.Frame
	lastSub      stomp.Frame
	conns        []*websocket.Conn
	dropAfterSub bool
}

func (p *stompPeer) handler(w http.ResponseWriter, r *http.Request) {
	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	p.mu.Lock()
	p.conns = append(p.conns, c)
	p.mu.Unlock()
	defer func() { _ = c.Close() }()
	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			return
		}
		for _, f := range stomp.ParseFrames(string(data)) {
			switch f.Command {
			case stomp.CmdConnect:
				p.mu.Lock()
				p.connects++
				p.lastConnect = f
				p.mu.Unlock()
				ack := stomp.BuildFrame(stomp.CmdConnected, []stomp.Header{{Key: "version", Value: "1.2"}}, "")
				_ = c.WriteMessage(websocket.TextMessage, []byte(ack))
			case stomp.CmdSubscribe:
				p.mu.Lock()
				p.subscribes++
				p.lastSub = f
				drop := p.dropAfterSub
				p.mu.Unlock()
				if drop {
					p.mu.Lock()
					p.dropAfterSub = false
					p.mu.Unlock()
					return
				}
			case stomp.CmdDisconnect:
				return
			}
		}
	}
}

func (p *stompPeer) send(t *testing.T, payload string) {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.conns) == 0 {
		t.Fatal("no peer connection to send on")
	}
	c := p.conns[len(p.conns)-1]
	if err := c.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
		t.Fatalf("peer send: %v", err)
	}
}

func (p *stompPeer) counts() (connects, subscribes int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connects, p.subscribes
}

func newPeerSession(t *testing.T, peer *stompPeer) *Session {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(peer.handler))
	t.Cleanup(srv.Close)
	s := NewSession(Options{
		BaseURL:        srv.URL,
		Scope:          "u1",
		ReconnectDelay: 50 * time.Millisecond,
		Store:          store.NewMemory(),
	})
	t.Cleanup(s.Close)
	return s
}

func TestConnectorHandshakeAndPush(t *testing.T) {
	peer := &stompPeer{}
	s := newPeerSession(t, peer)
	s.SetCredential("tok123")
	s.BeginTracking(model.OrderSnapshot{OrderID: 42, Status: "PENDING"})

	waitFor(t, "subscription", func() bool {
		_, subs := peer.counts()
		return subs == 1
	})
	peer.mu.Lock()
	if got := peer.lastConnect.Header("Authorization"); got != "Bearer tok123" {
		t.Fatalf("bad Authorization header: %q", got)
	}
	if got := peer.lastConnect.Header("heart-beat"); got != "0,0" {
		t.Fatalf("bad heart-beat header: %q", got)
	}
	if got := peer.lastSub.Header("destination"); got != "/user/queue/orders" {
		t.Fatalf("bad destination: %q", got)
	}
	if got := peer.lastSub.Header("ack"); got != "auto" {
		t.Fatalf("bad ack mode: %q", got)
	}
	peer.mu.Unlock()

	waitFor(t, "connected state", func() bool { return s.State() == model.ConnConnected })

	peer.send(t, stomp.BuildFrame(stomp.CmdMessage, nil, `{"orderId":42,"status":"ACCEPTED"}`))
	waitFor(t, "merged push", func() bool {
		snap := s.Snapshot()
		return snap != nil && snap.Status == model.StatusAccepted
	})
}

func TestConnectorReconnectsAfterClose(t *testing.T) {
	peer := &stompPeer{dropAfterSub: true}
	s := newPeerSession(t, peer)
	s.SetCredential("tok123")
	s.BeginTracking(model.OrderSnapshot{OrderID: 42, Status: "PENDING"})

	// first connection is dropped by the peer right after SUBSCRIBE;
	// the connector must redo the full handshake after the fixed delay
	waitFor(t, "second handshake", func() bool {
		connects, subs := peer.counts()
		return connects == 2 && subs == 2
	})
	waitFor(t, "connected state after reconnect", func() bool {
		return s.State() == model.ConnConnected
	})
	if s.ActiveOrderID() != 42 {
		t.Fatalf("active id lost across reconnect: %d", s.ActiveOrderID())
	}
}

func TestConnectorTerminalPushGoesIdle(t *testing.T) {
	peer := &stompPeer{}
	s := newPeerSession(t, peer)
	s.SetCredential("tok123")
	s.BeginTracking(model.OrderSnapshot{OrderID: 42, Status: "IN_DELIVERY"})
	waitFor(t, "subscription", func() bool {
		_, subs := peer.counts()
		return subs == 1
	})

	peer.send(t, stomp.BuildFrame(stomp.CmdMessage, nil, `{"orderId":42,"status":"DELIVERED"}`))
	waitFor(t, "idle after terminal status", func() bool {
		return s.ActiveOrderID() == 0 && s.State() == model.ConnIdle
	})
	snap := s.Snapshot()
	if snap == nil || snap.Status != model.StatusDelivered {
		t.Fatalf("final snapshot wrong: %+v", snap)
	}
	if !snap.Workflow[5].Completed && snap.Workflow[5].Status != string(model.StatusDelivered) {
		t.Fatalf("delivered step not reflected: %+v", snap.Workflow[5])
	}
}

func TestConnectorErrorFrame(t *testing.T) {
	peer := &stompPeer{}
	s := newPeerSession(t, peer)
	s.SetCredential("tok123")
	s.BeginTracking(model.OrderSnapshot{OrderID: 42, Status: "PENDING"})
	waitFor(t, "connected state", func() bool { return s.State() == model.ConnConnected })

	peer.send(t, stomp.BuildFrame(stomp.CmdError, []stomp.Header{{Key: "message", Value: "bad subscription"}}, "denied"))
	waitFor(t, "error state", func() bool { return s.State() == model.ConnError })
}

func TestConnectorClearingCredentialGoesIdle(t *testing.T) {
	peer := &stompPeer{}
	s := newPeerSession(t, peer)
	s.SetCredential("tok123")
	s.BeginTracking(model.OrderSnapshot{OrderID: 42, Status: "PENDING"})
	waitFor(t, "connected state", func() bool { return s.State() == model.ConnConnected })

	s.SetCredential("")
	waitFor(t, "idle state", func() bool { return s.State() == model.ConnIdle })
	// snapshot survives; only the connection is torn down
	if snap := s.Snapshot(); snap == nil || snap.OrderID != 42 {
		t.Fatalf("snapshot lost on logout: %+v", snap)
	}
}
