package connectors

import (
	"context"
	"fmt"
	"io"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

type WS struct {
	conn *websocket.Conn
}

func (ws *WS) Connect(ctx context.Context, url string) error {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil && resp.Body != nil {
			body, errR := io.ReadAll(resp.Body)
			resp.Body.Close()
			if errR != nil {
				return fmt.Errorf("failed to read websocket connect response: %w", err)
			}

			err = errors.Wrapf(err, "got message connecting to ws: %q", string(body))
		}

		return err
	}

	ws.conn = conn
	return nil
}

// Listen pushes every inbound frame to ch until the connection breaks or
// ctx is done. Cancelling ctx closes the connection to unblock the read.
func (ws *WS) Listen(ctx context.Context, ch chan<- []byte) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			ws.conn.Close()
		case <-stop:
		}
	}()

	for {
		_, msg, err := ws.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			return fmt.Errorf("websocket.ReadMessage error: %v", err)
		}

		select {
		case ch <- msg:
		case <-ctx.Done():
			return nil
		}
	}
}

func (ws *WS) Write(ctx context.Context, msg []byte) error {
	if deadline, ok := ctx.Deadline(); ok {
		_ = ws.conn.SetWriteDeadline(deadline)
	}
	return ws.conn.WriteMessage(websocket.TextMessage, msg)
}

func (ws *WS) Close() error {
	if ws.conn == nil {
		return nil
	}
	return ws.conn.Close()
}
