package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"whitelotus/internal/booking"
	"whitelotus/internal/digest"
	"whitelotus/internal/httpapi"
	"whitelotus/internal/notify"
	"whitelotus/internal/queue"
	"whitelotus/internal/review"
	"whitelotus/pkg/config"
	"whitelotus/pkg/db"
	"whitelotus/pkg/mailer"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer conn.Close()

	if cfg.MigrationsPath != "" {
		if err := db.Migrate(cfg.MigrationsPath, cfg); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	rdb := db.OpenRedis(ctx, cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
	} else {
		log.Printf("redis unavailable; rate limiting disabled")
	}

	dispatcher := notify.Dispatcher{
		Mailer:     mailer.New(cfg.Mail),
		From:       cfg.Mail.From,
		AdminInbox: cfg.Mail.AdminInbox,
		SiteURL:    cfg.Mail.PublicSiteURL,
	}
	bookings := booking.NewRepository(conn)

	router := httpapi.NewRouter(httpapi.Dependencies{
		Cfg:       cfg,
		Bookings:  bookings,
		Reviews:   review.NewRepository(conn),
		Redis:     rdb,
		Notifier:  dispatcher,
		Publisher: queue.NewPublisher(cfg.RabbitMQURL),
	})

	scheduler, err := digest.Start(cfg.DigestSchedule, digest.Job{
		Bookings: bookings,
		Sender:   dispatcher,
		Timeout:  time.Minute,
	})
	if err != nil {
		log.Fatalf("digest schedule: %v", err)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("http listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http serve: %v", err)
		}
	}()

	<-ctx.Done()

	if scheduler != nil {
		<-scheduler.Stop().Done()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(shutdownCtx)
}
