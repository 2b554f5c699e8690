package rnbo

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/golang/glog"
	"github.com/gorilla/websocket"

	"github.com/peragwin/vuzicscene/control"
)

// WebSocketLink talks to a runner over a single websocket. Requests are
// answered in order by "ready" or "error" events.
type WebSocketLink struct {
	conn *websocket.Conn

	writeMu sync.Mutex
	replies chan *event
	msgs    chan control.Message
	params  chan control.ParamChange
	done    chan struct{}
	once    sync.Once

	// lost is closed when the reader stops, after err is set.
	lost chan struct{}
	err  error
}

// ErrLinkClosed is returned by requests on a closed or lost link.
var ErrLinkClosed = errors.New("link closed")

// DialWebSocket connects to the runner at url.
func DialWebSocket(ctx context.Context, url string) (*WebSocketLink, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", url, err)
	}
	l := &WebSocketLink{
		conn:    conn,
		replies: make(chan *event, 1),
		msgs:    make(chan control.Message, 64),
		params:  make(chan control.ParamChange, 64),
		done:    make(chan struct{}),
		lost:    make(chan struct{}),
	}
	go l.read()
	return l, nil
}

func (l *WebSocketLink) read() {
	defer close(l.msgs)
	defer close(l.params)
	for {
		_, data, err := l.conn.ReadMessage()
		if err != nil {
			l.err = err
			close(l.lost)
			select {
			case <-l.done:
			default:
				glog.Errorf("websocket link closed: %v", err)
			}
			return
		}
		ev, err := decodeEvent(data)
		if err != nil {
			glog.Warning(err)
			continue
		}
		switch ev.Type {
		case eventMessage:
			select {
			case l.msgs <- control.Message{Tag: ev.Tag, Payload: ev.Payload}:
			default:
				glog.Warning("message buffer full, dropping ", ev.Tag)
			}
		case eventParameter:
			select {
			case l.params <- control.ParamChange{Name: ev.Name, Value: ev.Value}:
			default:
				glog.Warning("parameter buffer full, dropping ", ev.Name)
			}
		case eventReady, eventError:
			select {
			case l.replies <- ev:
			default:
				glog.Warningf("unexpected %s event", ev.Type)
			}
		default:
			glog.V(2).Infof("ignoring event type %q", ev.Type)
		}
	}
}

// Request implements Link.
func (l *WebSocketLink) Request(ctx context.Context, req *Request) error {
	l.writeMu.Lock()
	err := l.conn.WriteJSON(req)
	l.writeMu.Unlock()
	if err != nil {
		return fmt.Errorf("sending %s: %w", req.Type, err)
	}
	select {
	case ev := <-l.replies:
		if ev.Type == eventError {
			return fmt.Errorf("%s rejected: %s", req.Type, ev.Error)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrLinkClosed
	case <-l.lost:
		select {
		case ev := <-l.replies:
			// answered just before the connection dropped
			if ev.Type == eventError {
				return fmt.Errorf("%s rejected: %s", req.Type, ev.Error)
			}
			return nil
		default:
		}
		return fmt.Errorf("%s: %w: %v", req.Type, ErrLinkClosed, l.err)
	}
}

// Messages implements Link.
func (l *WebSocketLink) Messages() <-chan control.Message { return l.msgs }

// Params implements Link.
func (l *WebSocketLink) Params() <-chan control.ParamChange { return l.params }

// Close implements Link.
func (l *WebSocketLink) Close() error {
	var err error
	l.once.Do(func() {
		close(l.done)
		l.writeMu.Lock()
		l.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		l.writeMu.Unlock()
		err = l.conn.Close()
	})
	return err
}
