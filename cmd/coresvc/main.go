package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"

	config "github.com/fannyleague/fanny-services/configs"
	"github.com/fannyleague/fanny-services/internal/core/broker"
	"github.com/fannyleague/fanny-services/internal/core/db"
	handlers "github.com/fannyleague/fanny-services/internal/core/handlers"
	"github.com/fannyleague/fanny-services/internal/core/service"
	"github.com/fannyleague/fanny-services/internal/core/store"
	nats "github.com/fannyleague/fanny-services/internal/nats"
	log "github.com/sirupsen/logrus"
)

const SERVICE_NAME = "core"

var instanceId string

func init() {
	instanceId = config.CreateUniqueInstance(SERVICE_NAME)
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
	config.LoadEnv(SERVICE_NAME)
}

func main() {

	// pg connection
	dbpool, err := db.Connect(context.Background())
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.ClosePool()
	log.Printf("pg connection established successfully")

	// Connect to NATS
	n, err := nats.Connect(SERVICE_NAME + "-" + instanceId)
	if err != nil {
		log.Errorf("Error: unable to connect to NATS server %v", err)
		os.Exit(0)
	}
	defer n.Conn.Close()
	log.Printf("NATS connection established successfully %s", n.Url)

	events := broker.NewBroker(n.Conn)

	userStore := store.NewUserStore(dbpool)
	ledgerStore := store.NewLedgerStore(dbpool)
	roundStore := store.NewRoundStore(dbpool)
	betStore := store.NewBetStore(dbpool)
	survivalStore := store.NewSurvivalStore(dbpool)
	duelStore := store.NewDuelStore(dbpool)
	systemStore := store.NewSystemStore(dbpool)

	ledgerService := service.NewLedgerService(ledgerStore)
	userService := service.NewUserService(userStore, systemStore)
	roundService := service.NewRoundService(roundStore, betStore, userStore, ledgerService, events)
	survivalService := service.NewSurvivalService(survivalStore, roundStore, userStore, ledgerService)
	duelService := service.NewDuelService(duelStore, betStore, roundStore, ledgerService, events)

	preserveJackpot := os.Getenv("JACKPOT_ON_ROLLOVER") != "reset"
	settlementService := service.NewSettlementService(betStore, userStore, ledgerService, preserveJackpot)
	levelingService := service.NewLevelingService(userStore, betStore, roundStore, config.LoadTiers())
	archiver := service.NewArchiver(roundStore, duelService, survivalService, settlementService, levelingService, events)

	// Setup router
	r := chi.NewRouter()
	c := config.CORS()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(c.Handler)

	// to protect the service api from any over requests
	rateLimitStr := os.Getenv("RATE_LIMIT")
	rateLimit, err := strconv.Atoi(rateLimitStr)
	if err != nil {
		log.Fatalf("Invalid RATE_LIMIT value: %v", err)
	}
	r.Use(httprate.LimitByIP(rateLimit, 1*time.Minute))

	// Init handlers and routes
	h := handlers.NewHandler(userService, roundService, survivalService, duelService, archiver, ledgerService)
	h.InitAuth()
	h.SetRoutes(r)

	// Create server with timeout settings
	server := &http.Server{
		Addr:         ":" + os.Getenv("CORE_SERVICE_PORT"),
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

	// Wait for interrupt signal to gracefully shutdown the server
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
