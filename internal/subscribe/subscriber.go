package subscribe

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"weighstation/internal/logger"
	"weighstation/internal/metrics"
	"weighstation/internal/models"
)

// Broker topics carried over the websocket.
const (
	TopicScaleStatus    = "scale-status"
	TopicWeighingUpdate = "weighing-update"
	TopicDeviceStatus   = "device-status"
)

// Heartbeat and reconnect tuning. The reconnect delay is fixed on purpose;
// the broker is on the same site network and backoff would only delay
// recovery for the operator.
const (
	DefaultReconnectDelay = 5 * time.Second

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 1 << 16 // 64 KB
)

// Sink receives decoded broker traffic plus transport lifecycle events.
// The station controller implements it.
type Sink interface {
	OnScaleStatus(msg models.ScaleStatusMessage)
	OnWeighingUpdate(msg models.WeighingUpdateMessage)
	OnDeviceStatus(msg models.DeviceStatusMessage)
	OnTransportUp()
	OnTransportDown(err error)
}

// frame is one inbound broker message: a topic tag plus its payload.
type frame struct {
	Topic string          `json:"topic"`
	Data  json.RawMessage `json:"data"`
}

// subscribeRequest re-establishes the topic set after every connect;
// subscriptions are not durable across a connection cycle.
type subscribeRequest struct {
	Action string   `json:"action"`
	Topics []string `json:"topics"`
}

// Subscriber maintains the broker connection for the station: it dials,
// subscribes the fixed topic set, pumps messages into the sink, and
// reconnects with a fixed delay whenever the connection drops.
type Subscriber struct {
	url   string
	sink  Sink
	log   *logger.Logger
	delay time.Duration

	dialer *websocket.Dialer
}

func New(url string, sink Sink, log *logger.Logger, reconnectDelay time.Duration) *Subscriber {
	if reconnectDelay <= 0 {
		reconnectDelay = DefaultReconnectDelay
	}
	return &Subscriber{
		url:    url,
		sink:   sink,
		log:    log,
		delay:  reconnectDelay,
		dialer: websocket.DefaultDialer,
	}
}

// Run blocks until ctx is cancelled, holding one connection at a time.
func (s *Subscriber) Run(ctx context.Context) {
	for {
		if err := s.connectAndPump(ctx); err != nil && s.log != nil {
			s.log.Warnw("broker session ended", "err", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.delay):
			metrics.ObserveReconnect()
		}
	}
}

func (s *Subscriber) connectAndPump(ctx context.Context) error {
	conn, _, err := s.dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	if err := s.subscribeTopics(conn); err != nil {
		return err
	}

	metrics.SetConnected(true)
	s.sink.OnTransportUp()
	defer func() {
		metrics.SetConnected(false)
	}()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Ping loop keeps half-open connections from lingering.
	pingDone := make(chan struct{})
	go s.pingLoop(ctx, conn, pingDone)
	defer close(pingDone)

	for {
		select {
		case <-ctx.Done():
			s.sink.OnTransportDown(ctx.Err())
			return nil
		default:
		}

		_, payload, err := conn.ReadMessage()
		if err != nil {
			s.sink.OnTransportDown(err)
			return err
		}
		s.dispatch(payload)
	}
}

func (s *Subscriber) subscribeTopics(conn *websocket.Conn) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(subscribeRequest{
		Action: "subscribe",
		Topics: []string{TopicScaleStatus, TopicWeighingUpdate, TopicDeviceStatus},
	})
}

func (s *Subscriber) pingLoop(ctx context.Context, conn *websocket.Conn, done <-chan struct{}) {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			// Force the blocked reader out so Run can observe cancellation.
			_ = conn.Close()
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// dispatch decodes one frame and routes it by topic. Malformed payloads
// are dropped without logging; only the metrics counter moves.
func (s *Subscriber) dispatch(payload []byte) {
	var f frame
	if err := json.Unmarshal(payload, &f); err != nil {
		metrics.ObserveDropped()
		return
	}

	switch f.Topic {
	case TopicScaleStatus:
		var msg models.ScaleStatusMessage
		if err := json.Unmarshal(f.Data, &msg); err != nil {
			metrics.ObserveDropped()
			return
		}
		metrics.ObserveMessage(f.Topic)
		s.sink.OnScaleStatus(msg)
	case TopicWeighingUpdate:
		var msg models.WeighingUpdateMessage
		if err := json.Unmarshal(f.Data, &msg); err != nil {
			metrics.ObserveDropped()
			return
		}
		metrics.ObserveMessage(f.Topic)
		s.sink.OnWeighingUpdate(msg)
	case TopicDeviceStatus:
		var msg models.DeviceStatusMessage
		if err := json.Unmarshal(f.Data, &msg); err != nil {
			metrics.ObserveDropped()
			return
		}
		metrics.ObserveMessage(f.Topic)
		s.sink.OnDeviceStatus(msg)
	default:
		metrics.ObserveDropped()
	}
}
