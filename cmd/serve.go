package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"owlistic-notes/blocknotes/broker"
	"owlistic-notes/blocknotes/config"
	"owlistic-notes/blocknotes/database"
	"owlistic-notes/blocknotes/editor"
	"owlistic-notes/blocknotes/logging"
	"owlistic-notes/blocknotes/routes"
	"owlistic-notes/blocknotes/services"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the status stream.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func serve(ctx context.Context, cfg config.Config) error {
	log := logging.Get()

	db, err := database.Setup(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	var (
		producer broker.Producer
		consumer broker.Consumer
	)
	natsProducer, err := broker.InitProducer(cfg)
	if err != nil {
		log.Warn("broker unavailable, note events will not be published", zap.Error(err))
		producer = broker.NewNoopProducer()
	} else {
		producer = natsProducer
		natsConsumer, err := broker.InitConsumer(natsProducer.Conn(), broker.NoteSubjects)
		if err != nil {
			log.Warn("failed to subscribe to note events", zap.Error(err))
		} else {
			consumer = natsConsumer
		}
	}
	defer producer.Close()

	hub := services.NewStatusHub(consumer)
	hub.Start()
	defer hub.Stop()

	events := services.NewEventHandlerService(db, producer, time.Second)
	events.Start()
	defer events.Stop()

	editors := services.NewEditorService(db, services.NoteServiceInstance, services.NewBlockStore(db),
		editor.WithDebounce(cfg.FlushDebounce()),
		editor.WithLogger(log.Named("editor")),
		editor.WithReporter(editor.MultiReporter{broker.NewStatusPublisher(producer), hub}),
	)

	server := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: routes.NewRouter(cfg, db, services.NoteServiceInstance, editors, hub),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("api server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
	if err := editors.CloseAll(shutdownCtx); err != nil {
		log.Error("failed to flush open notes", zap.Error(err))
		return err
	}
	events.Stop()
	events.ProcessPendingEvents()
	return nil
}
