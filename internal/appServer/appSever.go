package appServer

import (
	"context"
	"crypto/tls"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ds124wfegd/eventmarket/config"
	"github.com/ds124wfegd/eventmarket/internal/broadcast"
	repository "github.com/ds124wfegd/eventmarket/internal/database/postgres"
	cache "github.com/ds124wfegd/eventmarket/internal/database/redis"
	"github.com/ds124wfegd/eventmarket/internal/service"
	"github.com/ds124wfegd/eventmarket/internal/transport"
	"github.com/ds124wfegd/eventmarket/internal/worker"

	"github.com/ds124wfegd/eventmarket/pkg/mailer"
	pgdriver "github.com/ds124wfegd/eventmarket/pkg/postgres"
	"github.com/ds124wfegd/eventmarket/pkg/queue"
	"github.com/ds124wfegd/eventmarket/pkg/redis"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.Idle_timeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},           // ban on outdate TLS certificate
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags), // os.Stderr can be replaced with ElsasticSearch in the feature
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func NewServer(cfg *config.Config) {

	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)
	// Initialize database
	db, err := pgdriver.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run database migrations
	if err := pgdriver.RunMigrations(db); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repositories
	eventRepo := repository.NewEventRepository(db)
	slotRepo := repository.NewSlotRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	// Initialize Redis client for cache and pub/sub
	redisClient := redis.NewRedisClient(&cfg.Redis)
	defer redisClient.Close()

	broadcaster := broadcast.NewBroadcaster(redisClient)
	ratesCache := cache.NewRatesCache(redisClient, cfg.FX.CacheTTL)

	var redisQueue queue.Queue
	var taskPublisher service.TaskPublisher
	var adminHandler *transport.AdminHandler

	if cfg.Redis.URL != "" {
		queueConfig := queue.DefaultRedisQueueConfig()
		queueConfig.Addr = cfg.Redis.URL
		queueConfig.Password = cfg.Redis.Password
		queueConfig.DB = cfg.Redis.DB

		retryManager := queue.NewRetryManager(3, 5*time.Second)
		dlqHandler := queue.NewDefaultDLQHandler(redisClient, queueConfig.DLQ)

		redisQueue, err = queue.NewRedisQueue(queueConfig, retryManager, dlqHandler)
		if err != nil {
			logrus.Errorf("Failed to initialize Redis queue: %v. Continuing without queue...", err)
			redisQueue = nil
		} else {
			logrus.Info("Redis queue initialized")
			// Создаем адаптер для очереди
			taskPublisher = service.NewQueueAdapter(redisQueue)
			adminHandler = transport.NewAdminHandler(dlqHandler)
		}
	}

	// Initialize services
	eventService := service.NewEventService(eventRepo, slotRepo, cfg.App.DefaultPageSize, cfg.App.MaxPageSize, cfg.App.PopularityWindow)
	bookingService := service.NewBookingService(bookingRepo, slotRepo, taskPublisher, broadcaster)
	reviewService := service.NewReviewService(reviewRepo, eventRepo, taskPublisher)
	currencyService := service.NewCurrencyService(ratesCache, cfg.FX.ProviderURL, cfg.FX.BaseCurrency, cfg.FX.RequestTimeout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize task handler if queue is available
	if redisQueue != nil {
		appMailer := mailer.NewMailer(&cfg.Email)
		taskHandler := queue.NewTaskHandler(bookingService, eventService, appMailer, cfg.App.CalendarDomain, cfg.Email.From)

		// Start queue consumer
		go func() {
			if err := redisQueue.Subscribe(ctx, taskHandler.HandleTask); err != nil {
				logrus.Errorf("Queue subscriber error: %v", err)
			}
		}()
		logrus.Info("Queue subscriber started")
	}

	// Initialize FX refresh worker
	fxWorker := worker.NewFxRefreshWorker(currencyService, cfg.FX.RefreshInterval)
	go fxWorker.Start(ctx)
	logrus.Info("FX refresh worker started")

	// Initialize handlers
	eventHandler := transport.NewEventHandler(eventService)
	bookingHandler := transport.NewBookingHandler(bookingService, cfg.App.CalendarDomain, cfg.Email.From)
	reviewHandler := transport.NewReviewHandler(reviewService)
	metaHandler := transport.NewMetaHandler(currencyService, cfg.FX.BaseCurrency)
	streamHandler := transport.NewStreamHandler(eventService, broadcaster, cfg.Stream.HeartbeatInterval)

	// Setup HTTP server
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, transport.InitRoutes(eventHandler, bookingHandler, reviewHandler, metaHandler, streamHandler, adminHandler)); err != nil {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	if err := srv.Shutdown(context.Background()); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}

	if redisQueue != nil {
		if err := redisQueue.Close(); err != nil {
			logrus.Errorf("error occured on queue shutting down: %s", err.Error())
		}
	}
}
