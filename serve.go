package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wansing/blog/backend"
	"github.com/wansing/blog/core"
	"github.com/wansing/blog/frontend"
	"github.com/wansing/blog/util"
	"go.uber.org/zap"
)

// serve runs the HTTP server until SIGINT or SIGTERM is received or the server fails.
func serve(db *core.CoreDB, addr, base string) error {

	db.SessionManager.Cookie.Path = base + "/"

	var mux = http.NewServeMux()
	util.HandlePrefix(mux, base+"/backend", backend.NewBackendRouter(db, base))
	util.HandlePrefix(mux, base, frontend.NewRouter(db, base))

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	var srv = &http.Server{
		Handler:      db.SessionManager.LoadAndSave(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var serveErr = make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(listener)
	}()

	db.Log.Info("listening", zap.String("addr", listener.Addr().String()), zap.String("base", base))

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	db.Log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
