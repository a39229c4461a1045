package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"todoclient/pkg/logger"
)

type ServeConfig struct {
	AuthAddr string
	APIAddr  string
}

// Serve runs the auth and todo services until ctx is cancelled or one of
// them fails.
func Serve(ctx context.Context, c *Container, config ServeConfig, log *logger.Logger) error {
	if log == nil {
		log = logger.NewNop()
	}

	servers := []*http.Server{
		newServer(config.AuthAddr, c.AuthRouter),
		newServer(config.APIAddr, c.TodoRouter),
	}

	group, ctx := errgroup.WithContext(ctx)

	for _, srv := range servers {
		group.Go(func() error {
			log.Zap().Info("Server starting", zap.String("addr", srv.Addr))

			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	group.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var errs []error
		for _, srv := range servers {
			errs = append(errs, srv.Shutdown(shutdownCtx))
		}

		return errors.Join(errs...)
	})

	return group.Wait()
}

func newServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
}
