package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/connectify/connectify"
	"github.com/connectify/connectify/mailer"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func main() {
	ctx := context.Background()

	sqldb, err := sql.Open(sqliteshim.ShimName, envOr("CONNECTIFY_DSN", "file:connectify.db?cache=shared"))
	if err != nil {
		log.Fatal(err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())

	if err := connectify.CreateSchema(ctx, db); err != nil {
		log.Fatal(err)
	}

	repo := connectify.NewRepositoryManager(db)
	if err := repo.Validate(); err != nil {
		log.Fatal(err)
	}

	cfg := connectify.NewConfig(envOr("CONNECTIFY_SIGNING_KEY", "insecure-dev-signing-key"))
	cfg.ResetLinkBase = envOr("CONNECTIFY_RESET_LINK_BASE", "http://localhost:8080")

	tokens := connectify.NewTokenService(
		[]byte(cfg.GetSigningKey()),
		cfg.GetTokenExpiration(),
		cfg.GetIssuer(),
		cfg.GetAudience(),
		nil,
	)

	auther, err := connectify.NewRouteAuthenticator(tokens, cfg)
	if err != nil {
		log.Fatal(err)
	}

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:      true,
			EnablePrintRoutes: true,
			StrictRouting:     false,
		}))
	})

	api := srv.Router().Group("/")
	api.Use(auther.OptionalRoute())

	connectify.RegisterAPIRoutes(api,
		connectify.WithControllerRepo(repo),
		connectify.WithControllerTokens(tokens),
		connectify.WithControllerConfig(cfg),
		connectify.WithControllerAuther(auther),
		connectify.WithControllerMailer(buildMailer()),
	)

	go srv.Serve(":" + envOr("CONNECTIFY_PORT", "8080"))

	WaitExitSignal()
}

// buildMailer wires SMTP delivery when configured, and falls back to a
// no-op sender for local development.
func buildMailer() connectify.Mailer {
	host := os.Getenv("CONNECTIFY_SMTP_HOST")
	if host == "" {
		return connectify.NoopMailer{}
	}

	port, err := strconv.Atoi(envOr("CONNECTIFY_SMTP_PORT", "587"))
	if err != nil {
		log.Fatal(err)
	}

	sender, err := mailer.New(mailer.Config{
		Host:     host,
		Port:     port,
		Username: os.Getenv("CONNECTIFY_SMTP_USER"),
		Password: os.Getenv("CONNECTIFY_SMTP_PASSWORD"),
		From:     envOr("CONNECTIFY_SMTP_FROM", "no-reply@connectify.local"),
	})
	if err != nil {
		log.Fatal(err)
	}

	return sender
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
