package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/desertthunder/songbook/internal/server"
	"github.com/desertthunder/songbook/internal/shared"
	"github.com/desertthunder/songbook/internal/tasks"
	"github.com/desertthunder/songbook/internal/web"
)

const shutdownTimeout = 5 * time.Second

// Serve runs the web UI, the JSON API and the websocket hub until interrupted.
//
// With --watch, songbook files dropped into the directory are imported while the server runs.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.library(ctx)
	if err != nil {
		return err
	}

	host, port := r.config.Server.Host, r.config.Server.Port
	if cmd.IsSet("host") {
		host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		port = int(cmd.Int("port"))
	}
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler, hub, err := r.newHTTPHandler(lib)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		r.logger.Info("shutting down")
		hub.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if dir := cmd.String("watch"); dir != "" {
		inbox := tasks.NewInbox(dir, lib, r.logger)
		progressCh := make(chan tasks.ProgressUpdate, 16)

		g.Go(func() error {
			for {
				select {
				case update := <-progressCh:
					r.logger.Info(update.Message, "phase", update.Phase)
				case <-gctx.Done():
					return nil
				}
			}
		})
		g.Go(func() error { return inbox.Run(gctx, progressCh) })
	}

	url := "http://" + browserHost(ln.Addr())
	r.logger.Info("serving songbook", "url", url)
	r.writePlain("Serving songbook at %s (Ctrl+C to stop)\n", url)

	if cmd.Bool("open") {
		if err := shared.OpenBrowser(url); err != nil {
			r.logger.Warn("could not open browser", "error", err)
		}
	}

	return g.Wait()
}

// newHTTPHandler wires the API, websocket hub and pages into one router.
func (r *Runner) newHTTPHandler(lib *tasks.Library) (http.Handler, *server.Hub, error) {
	pages, err := web.NewPages(lib, r.logger)
	if err != nil {
		return nil, nil, err
	}

	hub := server.NewHub(r.logger)
	lib.Subscribe(hub.Publish)

	router := server.NewBasicRouter()
	router.Use(server.Recovery(r.logger), server.Logging(r.logger))
	router.Handler(server.NewSongsHandler(lib, r.logger))
	router.Handler(hub)
	router.Handler(pages)
	return router, hub, nil
}

// browserHost turns a listener address into something a browser can open.
func browserHost(addr net.Addr) string {
	host, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	if ip := net.ParseIP(host); ip == nil || ip.IsUnspecified() {
		host = "localhost"
	}
	return net.JoinHostPort(host, port)
}
