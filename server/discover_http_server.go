package server

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

const SHUTDOWN_TIMEOUT = 5 * time.Second

type DiscoverHttpServer struct {
	router     *Router
	muxRouter  *mux.Router
	addr       string
	onShutdown []func()
}

// NewDiscoverHttpServer builds the server; onShutdown hooks run as soon as a
// shutdown begins, so they can release long-polling requests.
func NewDiscoverHttpServer(router *Router, muxRouter *mux.Router, addr string, onShutdown ...func()) *DiscoverHttpServer {
	return &DiscoverHttpServer{
		router:     router,
		muxRouter:  muxRouter,
		addr:       addr,
		onShutdown: onShutdown,
	}
}

// Start listens on the configured address until ctx is done, then shuts down gracefully.
func (s *DiscoverHttpServer) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *DiscoverHttpServer) Serve(ctx context.Context, ln net.Listener) error {
	s.router.RegisterRoutes()

	srv := &http.Server{
		Handler:           s.muxRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}
	for _, hook := range s.onShutdown {
		srv.RegisterOnShutdown(hook)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s", ln.Addr())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Println("Shutting down the server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), SHUTDOWN_TIMEOUT)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Println("Server exiting")
	return nil
}
