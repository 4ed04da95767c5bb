package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"barylstyle/contacts-api/app"
	"barylstyle/contacts-api/config"
	"barylstyle/contacts-api/internal"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	if err := app.MakeLogger("info"); err != nil {
		panic(err)
	}

	cfg, err := config.Setup()
	if err != nil {
		panic(err)
	}

	if err := app.MakeLogger(cfg.App.LogLevel); err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := internal.NewDeps(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize dependencies", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Host.Port),
		Handler:           app.NewRouter(ctx, d),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zap.L().Info("Server starting", zap.Int("port", cfg.Host.Port), zap.Bool("ssl", cfg.Host.SSL.Enabled))

		var err error
		if cfg.Host.SSL.Enabled {
			err = srv.ListenAndServeTLS(cfg.Host.SSL.CertificatePath, cfg.Host.SSL.CertificateKeyPath)
		} else {
			err = srv.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Error("Server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zap.L().Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("Failed to shut down server gracefully", zap.Error(err))
	}

	d.Mail.Wait()
	d.Close(shutdownCtx)

	_ = zap.L().Sync()
}
