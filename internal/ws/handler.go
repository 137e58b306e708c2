package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rkRashik/deltacrown-registration/internal/hub"
	"github.com/rkRashik/deltacrown-registration/internal/registration"
	"github.com/rkRashik/deltacrown-registration/internal/types"
	wire "github.com/rkRashik/deltacrown-registration/pkg/types"
	"go.uber.org/zap"
)

const (
	readTimeout  = 5 * time.Minute
	writeTimeout = 3 * time.Second
)

// Handler attaches a websocket client to the registration named by ?code=.
// Every text frame is one ClientMessage; the client receives a Snapshot on
// join and after each change, and an Error only for its own failed commands.
func Handler(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}

		reg, err := h.Get(r.Context(), code)
		if err != nil {
			http.Error(w, "registration directory unavailable", http.StatusServiceUnavailable)
			return
		}
		if reg == nil {
			http.Error(w, "registration not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// In dev ONLY, you can loosen origin checks:
			// OriginPatterns: []string{"http://localhost:*", "http://127.0.0.1:*"},
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		clientID := uuid.NewString()
		log := log.With(zap.String("code", code), zap.String("client", clientID))

		out := make(chan registration.Snapshot, 8)
		if err := reg.Send(r.Context(), registration.Join{ClientID: clientID, Outbox: out}); err != nil {
			conn.Close(websocket.StatusGoingAway, "registration closed")
			return
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = reg.Send(ctx, registration.Leave{ClientID: clientID})
		}()
		log.Debug("client joined")

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for snap := range out {
				if err := write(writeCtx, conn, types.SnapshotMessage(snap)); err != nil {
					return
				}
			}
			// outbox closed: dropped as slow, left, or the registration stopped
			conn.Close(websocket.StatusGoingAway, "snapshot stream ended")
		}()

		// Reader loop
		for {
			ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
			_, data, err := conn.Read(ctx)
			cancel()
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Debug("client read ended", zap.Error(err))
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				_ = write(r.Context(), conn, types.ErrorMessage(wire.CodeBadRequest, "bad json"))
				continue
			}

			cmd, ok := cm.Command()
			if !ok {
				_ = write(r.Context(), conn, types.ErrorMessage(wire.CodeUnknownType, "unknown type "+cm.Type))
				continue
			}

			res, err := reg.Do(r.Context(), cmd)
			if err != nil {
				if errors.Is(err, registration.ErrClosed) {
					return
				}
				continue
			}
			if res.Err != nil {
				_ = write(r.Context(), conn, types.ErrorMessage(ErrorCode(res.Err), res.Err.Error()))
			}
		}
	}
}

func write(ctx context.Context, conn *websocket.Conn, msg types.ServerMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, payload)
}

// ErrorCode classifies a rejected command for the wire.
func ErrorCode(err error) string {
	if errors.Is(err, registration.ErrLocked) {
		return wire.CodeLocked
	}
	return wire.CodeRejected
}
