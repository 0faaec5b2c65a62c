// Command server runs the abogapp HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/MathiAviles/abogapp/internal/app"
	"github.com/MathiAviles/abogapp/internal/config"
	"github.com/MathiAviles/abogapp/internal/database"
	"github.com/MathiAviles/abogapp/internal/handler"
	"github.com/MathiAviles/abogapp/internal/middleware"
	"github.com/MathiAviles/abogapp/internal/queue"
	"github.com/MathiAviles/abogapp/internal/repository"
	"github.com/MathiAviles/abogapp/internal/router"
	"github.com/MathiAviles/abogapp/internal/service"
	"github.com/MathiAviles/abogapp/internal/video"
)

func main() {
	cfg := config.Load()
	log := app.NewLogger(cfg.IsProduction())
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, database.Options{
		User: cfg.DBUser, Pass: cfg.DBPass, Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
	})
	if err != nil {
		log.Fatal("database open", zap.Error(err))
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		if err := database.Migrate(ctx, db, log); err != nil {
			log.Fatal("database migrate", zap.Error(err))
		}
	}

	// Redis is optional: without it rate limiting and caching pass through.
	rdb, err := config.NewRedisClient(ctx)
	if err != nil {
		log.Warn("redis unavailable, running without rate limit and cache", zap.Error(err))
	} else {
		defer rdb.Close()
	}

	var events service.EventPublisher = service.NopPublisher{}
	if cfg.AMQPURL != "" {
		events = service.NewAMQPPublisher(cfg.AMQPURL)
		consumer := queue.NewConsumer(cfg.AMQPURL, cfg.BookingLog, log.Named("booking-consumer"))
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("booking consumer stopped", zap.Error(err))
			}
		}()
	}

	var vp video.Provider
	if cfg.StreamAPIKey != "" && cfg.StreamAPISecret != "" {
		vp = video.NewStreamProvider(cfg.StreamAPIKey, cfg.StreamAPISecret, cfg.StreamTokenTTL)
	} else {
		log.Warn("STREAM_API_KEY/STREAM_API_SECRET not set, join-info will answer 503")
	}

	users := &repository.UserRepo{DB: db}
	availability := &repository.AvailabilityRepo{DB: db}
	meetings := repository.NewMeetingRepo(db)
	presence := &repository.PresenceRepo{DB: db}
	reviews := &repository.ReviewRepo{DB: db}
	tokens := &repository.TokenRepo{DB: db}
	favorites := repository.NewFavoriteRepo(db)

	booking := service.NewBookingService(users, meetings, events, cfg.DefaultCurrency, log.Named("booking"))
	lifecycle := service.NewLifecycleService(meetings, presence, users, vp, cfg.Location, log.Named("lifecycle"))
	attendance := service.NewPresenceService(lifecycle, presence)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, middleware.HeaderRequestID},
	}))
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log))

	lawyers := handler.NewLawyerHandler(users, availability, log)
	reviewH := handler.NewReviewHandler(reviews, meetings, users, log)
	kyc := handler.NewKYCHandler(users, log)

	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens, log), cfg.JWTSecret)
	router.RegisterPublic(e, lawyers, reviewH, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	router.RegisterMeetings(e, handler.NewMeetingHandler(booking, lifecycle, attendance, log), cfg.JWTSecret,
		middleware.NewTokenBucket(config.LoadBookingRateLimitConfig(), rdb, log))
	router.RegisterReviews(e, reviewH, cfg.JWTSecret)
	router.RegisterLawyer(e, lawyers, kyc, cfg.JWTSecret)
	router.RegisterFavorites(e, handler.NewFavoriteHandler(favorites, users, log), cfg.JWTSecret)
	router.RegisterAdmin(e, kyc, users, cfg.JWTSecret)

	addr := ":" + cfg.Port
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}
