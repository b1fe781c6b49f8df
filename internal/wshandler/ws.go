package wshandler

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gofiber/contrib/websocket"

	"github.com/brawlers/missionboard/internal/model"
)

type WebMessage struct {
	Typ   string              `json:"type"`
	Event *model.MissionEvent `json:"event,omitempty"`
}

// JSONWsHandler pushes mission events to one websocket client. A client
// created with a mission id only gets events of that mission.
type JSONWsHandler struct {
	log       *slog.Logger
	name      string
	ws        *websocket.Conn
	ch        chan *WebMessage
	missionID uint
	active    int32

	// mx orders sends against close(ch)
	mx sync.Mutex
}

func NewHandler(log *slog.Logger, name string, ws *websocket.Conn, missionID uint) *JSONWsHandler {
	return &JSONWsHandler{
		log:       log.With("client", name),
		name:      name,
		ws:        ws,
		ch:        make(chan *WebMessage, 10),
		missionID: missionID,
		active:    1,
	}
}

func (w *JSONWsHandler) IsActive() bool {
	return w != nil && atomic.LoadInt32(&w.active) == 1
}

func (w *JSONWsHandler) stop() {
	w.mx.Lock()
	stopped := atomic.CompareAndSwapInt32(&w.active, 1, 0)

	if stopped {
		close(w.ch)
	}
	w.mx.Unlock()

	if stopped && w.ws != nil {
		w.ws.Close()
	}
}

func (w *JSONWsHandler) writer() {
	for item := range w.ch {
		if !w.IsActive() {
			return
		}

		if item == nil {
			continue
		}

		_ = w.ws.WriteJSON(item)
	}
}

func (w *JSONWsHandler) reader() {
	defer w.stop()

	for {
		_, _, err := w.ws.ReadMessage()

		if err != nil {
			w.log.Debug("error on read", slog.Any("error", err))

			return
		}
	}
}

// SendEvent queues an event for the client, dropping it when the client is
// slow. It returns false once the client is gone.
func (w *JSONWsHandler) SendEvent(e *model.MissionEvent) bool {
	if w == nil {
		return false
	}

	w.mx.Lock()
	defer w.mx.Unlock()

	if !w.IsActive() {
		return false
	}

	if e == nil || (w.missionID != 0 && e.MissionID != w.missionID) {
		return true
	}

	select {
	case w.ch <- &WebMessage{Typ: "mission", Event: e}:
	default:
	}

	return true
}

func (w *JSONWsHandler) closehandler(code int, text string) error {
	w.log.Info(fmt.Sprintf("closed with code %d, msg %s", code, text))
	w.stop()

	return nil
}

func (w *JSONWsHandler) Listen() {
	w.log.Debug("ws start")
	w.ws.SetCloseHandler(w.closehandler)

	go w.writer()
	w.reader()
	w.log.Debug("ws stop")
}
