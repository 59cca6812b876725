package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Amelie-Schreiber/persistent-homology-of-entanglement/internal/modules/circuits"
	"github.com/Amelie-Schreiber/persistent-homology-of-entanglement/internal/modules/filtration"
	"nhooyr.io/websocket"
)

// streamReadTimeout bounds how long the client has to send the circuit after
// connecting.
const streamReadTimeout = 30 * time.Second

// streamEnvelope is one websocket message: either a frame, the final summary,
// or an error terminating the stream.
type streamEnvelope struct {
	Type     string               `json:"type"` // "frame", "done", "error"
	Frame    *filtration.Frame    `json:"frame,omitempty"`
	Sequence *filtration.Sequence `json:"sequence,omitempty"`
	Error    string               `json:"error,omitempty"`
}

// HandleStream handles GET /api/filtration/stream. The client upgrades to a
// websocket, sends one circuit message, and receives one message per moment as
// frames are computed, followed by a final summary.
func (h *Handler) HandleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("Websocket accept failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream aborted")

	ctx := r.Context()

	readCtx, cancel := context.WithTimeout(ctx, streamReadTimeout)
	_, payload, err := conn.Read(readCtx)
	cancel()
	if err != nil {
		h.log.Debug().Err(err).Msg("Websocket read failed before circuit was received")
		return
	}

	var circ circuits.Circuit
	if err := json.Unmarshal(payload, &circ); err != nil {
		h.writeStream(ctx, conn, streamEnvelope{Type: "error", Error: err.Error()})
		conn.Close(websocket.StatusInvalidFramePayloadData, "invalid circuit")
		return
	}

	seq, err := h.service.Stream(ctx, &circ, func(f filtration.Frame) error {
		return h.writeStream(ctx, conn, streamEnvelope{Type: "frame", Frame: &f})
	})
	if err != nil {
		h.writeStream(ctx, conn, streamEnvelope{Type: "error", Error: err.Error()})
		conn.Close(websocket.StatusInternalError, "computation failed")
		return
	}

	if err := h.writeStream(ctx, conn, streamEnvelope{Type: "done", Sequence: seq}); err != nil {
		return
	}
	conn.Close(websocket.StatusNormalClosure, "")
}

func (h *Handler) writeStream(ctx context.Context, conn *websocket.Conn, env streamEnvelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageText, data)
}
