package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dvelkov/toystore/internal/config"
	"github.com/dvelkov/toystore/internal/es"
	"github.com/dvelkov/toystore/internal/handlers"
	"github.com/dvelkov/toystore/internal/handlers/cart"
	"github.com/dvelkov/toystore/internal/logging"
	"github.com/dvelkov/toystore/internal/mailer"
	loggingmw "github.com/dvelkov/toystore/internal/middleware/logging"
	"github.com/dvelkov/toystore/internal/mykafka"
	"github.com/dvelkov/toystore/internal/service"
	httpserver "github.com/dvelkov/toystore/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("грешка при иницијализација на базата: %v", err)
	}

	redisOpt, err := redis.ParseURL(configuration.REDIS_URL)
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(redisOpt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("redis ping failed: %v", err)
	}

	prod, err := mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})
	if err != nil {
		log.Printf("kafka disabled: %v", err)
		prod = nil
	}

	esClient, err := es.NewClient(configuration)
	if err != nil {
		log.Printf("elasticsearch disabled: %v", err)
		esClient = nil
	}

	sender := &mailer.SendGrid{
		APIKey:   configuration.SENDGRID_API_KEY,
		From:     configuration.MAIL_FROM,
		FromName: configuration.MAIL_FROM_NAME,
	}
	dispatcher := &mailer.Dispatcher{Sender: sender, Logger: logger}

	jwtSecret := []byte(configuration.JWT_SECRET)
	refreshSecret := []byte(configuration.REFRESH_SECRET)

	sessions := &cart.RedisSessions{RDB: rdb}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		DB:          db,
		AuthHandler: &handlers.AuthHandler{DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret, Producer: prod},
		ProductHandler: &handlers.ProductHandler{
			DB: db, Producer: prod, ES: esClient, ESIndex: "products",
		},
		SearchHandler:   &handlers.SearchHandler{ES: esClient, Index: "products"},
		CartHandler:     &cart.CartHandler{DB: db, Sessions: sessions, Producer: prod},
		CheckoutHandler: &handlers.CheckoutHandler{DB: db, Carts: sessions, Producer: prod, Dispatcher: dispatcher},
		OrderHandler:    &handlers.OrderHandler{DB: db, Producer: prod, Dispatcher: dispatcher},
		SalesHandler:    &handlers.SalesHandler{DB: db, Producer: prod},
		CustomerHandler: &handlers.CustomerHandler{DB: db},
		UserHandler:     &handlers.UserHandler{DB: db, Mailer: sender, PublicBaseURL: configuration.PUBLIC_BASE_URL},
		TokenService:    &service.TokenService{DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret},
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + configuration.PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	dispatcher.Wait()

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := rdb.Close(); err != nil {
		log.Printf("redis close error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
