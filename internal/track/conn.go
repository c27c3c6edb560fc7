package track

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"ordertrack/internal/metrics"
	"ordertrack/internal/model"
	"ordertrack/internal/stomp"
)

// queueDestination is the caller's private order queue.
const queueDestination = "/user/queue/orders"

// connector owns exactly one socket lifecycle for one (credential,
// order id) pair. It is a single-owner actor: only the run goroutine
// touches the socket and the subscribed flag. It retries a lost socket
// after a fixed delay until teardown is requested.
type connector struct {
	endpoint string
	host     string
	token    string
	orderID  int64
	delay    time.Duration
	dialer   *websocket.Dialer
	limiter  *rate.Limiter

	// callbacks run on the actor goroutine
	onFrame func(*connector, stomp.Frame)
	onState func(*connector, model.ConnState)

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func newConnector(endpoint, host, token string, orderID int64, delay time.Duration) *connector {
	return &connector{
		endpoint: endpoint,
		host:     host,
		token:    token,
		orderID:  orderID,
		delay:    delay,
		dialer:   &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		limiter:  rate.NewLimiter(rate.Every(delay), 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (c *connector) start() { go c.run() }

// requestStop is idempotent and safe from any goroutine, including the
// run loop itself.
func (c *connector) requestStop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *connector) wait() { <-c.done }

func (c *connector) stopped() bool {
	select {
	case <-c.stop:
		return true
	default:
		return false
	}
}

// pause waits d unless teardown is requested first.
func (c *connector) pause(d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-c.stop:
		return false
	case <-t.C:
		return true
	}
}

func (c *connector) run() {
	defer close(c.done)
	for {
		if c.stopped() {
			return
		}
		// throttle dials so overlapping close/error triggers cannot
		// produce a tight reconnect loop
		if !c.limiter.Allow() {
			if !c.pause(c.delay) {
				return
			}
		}
		c.onState(c, model.ConnConnecting)
		ws, _, err := c.dialer.Dial(c.endpoint, nil)
		if err != nil {
			log.Printf("tracker: dial %s: %v", c.endpoint, err)
			c.onState(c, model.ConnError)
			if !c.pause(c.delay) {
				return
			}
			metrics.Reconnects.Inc()
			continue
		}
		c.serve(ws)
		if c.stopped() {
			return
		}
		// socket closed underneath us: one reconnect after the fixed delay
		c.onState(c, model.ConnConnecting)
		if !c.pause(c.delay) {
			return
		}
		metrics.Reconnects.Inc()
	}
}

// serve drives one open socket: CONNECT handshake, single SUBSCRIBE on
// CONNECTED, MESSAGE dispatch, ERROR handling. Returns when the socket
// closes or teardown runs.
func (c *connector) serve(ws *websocket.Conn) {
	defer func() { _ = ws.Close() }()

	msgs := make(chan string, 8)
	go func() {
		defer close(msgs)
		for {
			mt, data, err := ws.ReadMessage()
			if err != nil {
				return
			}
			if mt != websocket.TextMessage {
				continue
			}
			msgs <- string(data)
		}
	}()

	if err := ws.WriteMessage(websocket.TextMessage, []byte(stomp.ConnectFrame(c.host, c.token))); err != nil {
		return
	}

	subscribed := false
	for {
		select {
		case <-c.stop:
			// graceful teardown, best-effort
			_ = ws.WriteMessage(websocket.TextMessage, []byte(stomp.DisconnectFrame()))
			return
		case payload, ok := <-msgs:
			if !ok {
				// socket error or peer close
				return
			}
			for _, f := range stomp.ParseFrames(payload) {
				metrics.FramesParsed.WithLabelValues(f.Command).Inc()
				switch f.Command {
				case stomp.CmdConnected:
					c.onState(c, model.ConnConnected)
					if !subscribed {
						sub := stomp.SubscribeFrame(c.subscriptionID(), queueDestination)
						if err := ws.WriteMessage(websocket.TextMessage, []byte(sub)); err != nil {
							return
						}
						subscribed = true
					}
				case stomp.CmdMessage:
					c.onFrame(c, f)
				case stomp.CmdError:
					log.Printf("tracker: ERROR frame from peer: %s", strings.TrimSpace(f.Body))
					// socket stays open until the peer closes it or
					// teardown runs
					c.onState(c, model.ConnError)
				}
			}
		}
	}
}

func (c *connector) subscriptionID() string {
	return fmt.Sprintf("order-%d-%s", c.orderID, uuid.NewString()[:8])
}
