package main

import (
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"staybook/internal/adapters/gateway"
	server "staybook/internal/adapters/http_server"
	"staybook/internal/adapters/observability"
	redisad "staybook/internal/adapters/redis"
	"staybook/internal/adapters/smtp"
	"staybook/internal/app"
	"staybook/internal/auth"
	"staybook/internal/clock"
	"staybook/internal/shared"
	mysqlrepo "staybook/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	store := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	clk := clock.NewSystem()
	tokens := auth.New(cfg.JWTSecret, cfg.TokenTTL, clk)

	gw, err := gateway.New(cfg.GatewayBase, cfg.GatewayKey, 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize gateway client")
	}
	mailer := smtp.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)

	notifier := app.NewNotifier(store, mailer, cfg.TemplateDir, cfg.NotifyWorkers, cfg.NotifyQueue, log.Logger)
	notifier.Start()
	defer notifier.Stop()

	handlers := &server.Handlers{
		Hotels:   app.NewHotelService(store, cache, log.Logger),
		Rooms:    app.NewRoomService(store, cache, clk, log.Logger),
		Bookings: app.NewBookingService(store, cache, clk, log.Logger),
		Reviews:  app.NewReviewService(store, cache, log.Logger),
		Users:    app.NewUserService(store, tokens, log.Logger),
		Payments: app.NewPaymentService(store, gw, notifier, clk, log.Logger),
		Q:        app.NewQueryService(store, cache, cfg.CacheTTL),
		Tokens:   tokens,
	}

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(handlers)

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
