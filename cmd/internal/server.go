package internal

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const reloadPath = "/_guffipedia/reload"

type Server struct {
	server *http.Server
	addr   string
	hub    *ReloadHub
}

type ServerConfig struct {
	DistDir string
	Port    int
}

func NewServer(config ServerConfig) *Server {
	hub := NewReloadHub()

	router := chi.NewRouter()
	router.Get(reloadPath, hub.Serve)
	router.With(ReloadMiddleware).Handle("/*", http.FileServer(http.Dir(config.DistDir)))

	return &Server{
		server: &http.Server{
			Handler: router,
		},
		addr: fmt.Sprintf("127.0.0.1:%d", config.Port),
		hub:  hub,
	}
}

func (s *Server) Start(ctx context.Context) (string, error) {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return "", fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	go func() {
		_ = s.server.Serve(ln)
	}()

	go func() {
		<-ctx.Done()
		_ = s.server.Close()
	}()

	return "http://" + s.addr + "/", nil
}

// Reload tells every connected browser to reload.
func (s *Server) Reload() {
	s.hub.Broadcast("reload")
}

func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}
