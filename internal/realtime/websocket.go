package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/golang/glog"
	"github.com/gorilla/websocket"
)

const wsFeedBuffer = 64

// WebsocketFeedSettings tunes the websocket feed connection
type WebsocketFeedSettings struct {
	ReconnectTimeout time.Duration
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	PingTimeout      time.Duration
}

func DefaultWebsocketFeedSettings() *WebsocketFeedSettings {
	return &WebsocketFeedSettings{
		ReconnectTimeout: 5 * time.Second,
		ReadTimeout:      60 * time.Second,
		WriteTimeout:     10 * time.Second,
		PingTimeout:      25 * time.Second,
	}
}

// WebsocketFeed consumes JSON change events pushed by the server. The
// connection is kept alive with pings and redialed on any failure. After
// every reconnect a resync event is emitted first, because events may have
// been missed during the gap.
type WebsocketFeed struct {
	ctx    context.Context
	cancel context.CancelFunc

	feedURL  string
	token    string
	settings *WebsocketFeedSettings

	events chan Event
}

func NewWebsocketFeed(ctx context.Context, feedURL, token string, settings *WebsocketFeedSettings) *WebsocketFeed {
	if settings == nil {
		settings = DefaultWebsocketFeedSettings()
	}
	cancelCtx, cancel := context.WithCancel(ctx)
	feed := &WebsocketFeed{
		ctx:      cancelCtx,
		cancel:   cancel,
		feedURL:  feedURL,
		token:    token,
		settings: settings,
		events:   make(chan Event, wsFeedBuffer),
	}
	go feed.run()
	return feed
}

func (f *WebsocketFeed) Events() <-chan Event {
	return f.events
}

func (f *WebsocketFeed) Close() {
	f.cancel()
}

func (f *WebsocketFeed) run() {
	defer close(f.events)

	first := true
	for {
		select {
		case <-f.ctx.Done():
			return
		default:
		}

		ws, err := f.connect()
		if err != nil {
			glog.Infof("[rt]dial error = %s\n", err)
			select {
			case <-f.ctx.Done():
				return
			case <-time.After(f.settings.ReconnectTimeout):
				continue
			}
		}

		// a fresh connection cannot account for what happened before it
		if !first {
			f.emit(Event{Type: EventResync})
		}
		first = false

		f.readLoop(ws)
		ws.Close()
	}
}

func (f *WebsocketFeed) connect() (*websocket.Conn, error) {
	dialer := websocket.DefaultDialer
	header := map[string][]string{}
	if f.token != "" {
		header["Authorization"] = []string{"Bearer " + f.token}
	}
	ws, _, err := dialer.DialContext(f.ctx, f.feedURL, header)
	return ws, err
}

func (f *WebsocketFeed) readLoop(ws *websocket.Conn) {
	loopCtx, loopCancel := context.WithCancel(f.ctx)
	defer loopCancel()

	go func() {
		defer loopCancel()
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-time.After(f.settings.PingTimeout):
				ws.SetWriteDeadline(time.Now().Add(f.settings.WriteTimeout))
				if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
					// a websocket write deadline cannot be recovered
					return
				}
			}
		}
	}()

	for {
		select {
		case <-loopCtx.Done():
			return
		default:
		}

		ws.SetReadDeadline(time.Now().Add(f.settings.ReadTimeout))
		messageType, message, err := ws.ReadMessage()
		if err != nil {
			glog.Infof("[rt]read error = %s\n", err)
			return
		}

		switch messageType {
		case websocket.TextMessage:
			var event Event
			if err := json.Unmarshal(message, &event); err != nil {
				glog.Infof("[rt]bad event = %s\n", err)
				continue
			}
			glog.V(2).Infof("[rt]%s %s %s\n", event.Type, event.Kind, event.ID)
			f.emit(event)
		default:
			// ignore pings and binary frames
		}
	}
}

func (f *WebsocketFeed) emit(event Event) {
	if event.Type == EventResync {
		// a resync is the only record that events were missed; it cannot
		// be dropped, so wait for the consumer to make room
		select {
		case <-f.ctx.Done():
		case f.events <- event:
		}
		return
	}
	select {
	case <-f.ctx.Done():
	case f.events <- event:
	default:
		// consumer is behind; dropping a hint only delays a refetch
		glog.V(1).Infof("[rt]drop %s %s\n", event.Type, event.Kind)
	}
}
