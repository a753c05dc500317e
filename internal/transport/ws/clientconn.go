package ws

import (
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/kiryu-dev/dino-digger/internal/domain"
	"github.com/pkg/errors"
)

type client struct {
	conn *websocket.Conn
	uuid string
}

func newClient(conn *websocket.Conn, uuid string) client {
	return client{conn: conn, uuid: uuid}
}

func (c client) WriteMessage(msg domain.Message) error {
	w, err := c.conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return errors.WithMessage(err, "websocket conn next writer")
	}
	if err := jsoniter.NewEncoder(w).Encode(msg); err != nil {
		_ = w.Close()
		return errors.WithMessage(err, "websocket conn write json")
	}
	return w.Close()
}

func (c client) ReadMessage() (domain.Message, error) {
	_, r, err := c.conn.NextReader()
	if err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) ||
			errors.Is(err, websocket.ErrCloseSent) {
			return domain.Message{}, domain.ErrConnectionClosed
		}
		if _, ok := err.(*websocket.CloseError); ok {
			return domain.Message{}, domain.ErrConnectionClosed
		}
		return domain.Message{}, errors.WithMessage(err, "websocket conn next reader")
	}
	var msg domain.Message
	if err := jsoniter.NewDecoder(r).Decode(&msg); err != nil {
		return domain.Message{}, errors.WithMessage(err, "websocket conn read json")
	}
	return msg, nil
}

func (c client) Uuid() string {
	return c.uuid
}

func (c client) Close() {
	_ = c.conn.Close()
}
