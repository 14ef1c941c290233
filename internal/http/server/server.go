package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/consultdesk/internal/observability/logger"
)

// Options ajusta los timeouts del http.Server.
type Options struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Run sirve app.Handler hasta que ctx se cancela. Al salir apaga el servidor
// HTTP primero (no entran más tareas) y después drena la cola de email,
// ambos dentro de ShutdownTimeout.
func Run(ctx context.Context, app *App, opts Options) error {
	log := logger.L().With(logger.Component("server"))

	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           app.Handler,
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       90 * time.Second,
	}

	qctx, stopQueue := context.WithCancel(context.Background())
	defer stopQueue()
	if app.Queue != nil {
		app.Queue.Start(qctx)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server listening", logger.String("addr", opts.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		sctx, cancel := context.WithTimeout(context.Background(), opts.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := srv.Shutdown(sctx); err != nil {
			log.Warn("http shutdown incomplete", logger.Err(err))
			errs = append(errs, err)
		}
		if app.Queue != nil {
			if err := app.Queue.Shutdown(sctx); err != nil {
				log.Warn("email queue not fully drained", logger.Err(err), logger.Count(app.Queue.Depth()))
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}
