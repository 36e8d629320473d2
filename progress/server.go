package progress

import (
	"context"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/coder/websocket"
)

// Server exposes the hub as a one-way WebSocket event feed on /events.
type Server struct {
	hub  *Hub
	http *http.Server
}

func NewServer(hub *Hub, addr string) *Server {
	s := &Server{hub: hub}
	mux := http.NewServeMux()
	mux.Handle("/events", s)
	s.http = &http.Server{Addr: addr, Handler: mux}
	return s
}

// Start serves in the background until Shutdown.
func (s *Server) Start() {
	go func() {
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			progLog().Error().Err(err).Msg("progress feed stopped")
		}
	}()
	progLog().Info().Str("addr", s.http.Addr).Msg("progress feed listening")
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		progLog().Error().Err(err).Msg("failed to accept websocket connection")
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	events := s.hub.Subscribe()
	defer s.hub.Unsubscribe(events)

	// The feed is write-only; reads only notice the peer going away.
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				status := websocket.CloseStatus(err)
				if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
					progLog().Debug().Err(err).Msg("feed reader closed")
				}
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-readDone:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			data, err := sonic.Marshal(ev)
			if err != nil {
				progLog().Error().Err(err).Msg("failed to encode event")
				continue
			}
			if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
				progLog().Debug().Err(err).Msg("feed write failed, dropping client")
				return
			}
		}
	}
}
