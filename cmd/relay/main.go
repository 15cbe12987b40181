package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wavythought/relay/internal/api"
	"github.com/wavythought/relay/internal/api/events"
	"github.com/wavythought/relay/internal/clients/gomail"
	"github.com/wavythought/relay/internal/service"
	"github.com/wavythought/relay/pkg/broker"
	"github.com/wavythought/relay/pkg/config"
	"github.com/wavythought/relay/pkg/logger"
)

const (
	readTimeout       = 5 * time.Second
	readHeaderTimeout = time.Second
	writeTimeout      = 20 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// @title WavyThought contact relay
// @version 1.0
// @description Relays website contact form submissions to the studio inbox.
// @BasePath /
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.New(".env")
	panicOnErr("create config", err)

	out, closer := logger.Output(cfg.Logger)
	defer closer.Close()

	l := logger.New(logger.ParseLevel(cfg.Logger.Level), out)
	slog.SetDefault(l)

	var sender service.Sender

	if cfg.SMTP.Configured() {
		sender = gomail.New(cfg.SMTP)
	} else {
		l.Warn("SMTP credentials are missing, contact form submissions will fail until configured")
	}

	s := service.New(cfg, sender)

	if cfg.Kafka.Enabled() {
		consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.ConsumerID, cfg.Kafka.ContactTopic)
		defer consumer.Close()

		eventHandler := events.NewEventHandler(s)

		consumer.Handle(cfg.Kafka.ContactTopic, eventHandler.ContactSubmitted)
		consumer.Consume(ctx)
	}

	h := api.NewHandler(s)
	mw := api.NewMiddleware(cfg.HTTP.AllowedOrigins)

	router := api.NewRouter(h, mw)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           router,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
		TLSConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}

	go func() {
		var err error

		if cfg.HTTP.ServerCert != "" && cfg.HTTP.ServerKey != "" {
			err = server.ListenAndServeTLS(cfg.HTTP.ServerCert, cfg.HTTP.ServerKey)
		} else {
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Panic(err)
		}
	}()

	l.Info("server started", "port", cfg.HTTP.Port, "smtp_configured", cfg.SMTP.Configured(), "kafka_enabled", cfg.Kafka.Enabled())

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGINT)
	sig := <-ch

	l.Info("got OS signal", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	err = server.Shutdown(shutdownCtx)
	if err != nil {
		l.Error("shutdown", "error", err)
	}

	cancel()
}

func panicOnErr(msg string, err error) {
	if err != nil {
		log.Panicf("%s: %s", msg, err)
	}
}
