package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/louisbranch/stagesim/internal/batch"
)

// Stream message types.
const (
	MessageRun    = "run"
	MessageReport = "report"
	MessageError  = "error"
)

const writeWait = 10 * time.Second

// StreamMessage is one websocket frame of a simulation stream.
type StreamMessage struct {
	Type   string            `json:"type"`
	Run    *batch.RunResult  `json:"run,omitempty"`
	Result *SimulateResponse `json:"result,omitempty"`
	Error  *ErrorPayload     `json:"error,omitempty"`
}

// handleStream upgrades to a websocket, reads one SimulateRequest and
// streams a message per completed run followed by the report. Closing the
// connection cancels the batch.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	var req SimulateRequest
	if err := conn.ReadJSON(&req); err != nil {
		s.sendError(conn, r, invalidRequest("malformed request", err))
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				cancel()
				return
			}
		}
	}()

	resp, err := s.simulate(ctx, req, func(run batch.RunResult) {
		if err := s.send(conn, StreamMessage{Type: MessageRun, Run: &run}); err != nil {
			cancel()
		}
	})
	if err != nil {
		s.sendError(conn, r, err)
		return
	}
	if err := s.send(conn, StreamMessage{Type: MessageReport, Result: &resp}); err != nil {
		return
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}

// send is only called from one goroutine at a time: batch serializes
// OnRun and the report is sent after the batch returns.
func (s *Server) send(conn *websocket.Conn, msg StreamMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		s.logger.Printf("websocket write: %v", err)
		return err
	}
	return nil
}

func (s *Server) sendError(conn *websocket.Conn, r *http.Request, err error) {
	_, payload := s.errorPayload(r, err)
	_ = s.send(conn, StreamMessage{Type: MessageError, Error: &payload})
}
