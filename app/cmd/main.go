package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/okorolev/gh-activity-report/app/config"
	"github.com/okorolev/gh-activity-report/app/domain/entity"
	"github.com/okorolev/gh-activity-report/app/domain/repository"
	"github.com/okorolev/gh-activity-report/app/infrastructure/metrics"
	"github.com/okorolev/gh-activity-report/app/infrastructure/storage"
	etcdStorage "github.com/okorolev/gh-activity-report/app/infrastructure/storage/etcd"
	"github.com/okorolev/gh-activity-report/app/infrastructure/storage/mongodb"
	redisStorage "github.com/okorolev/gh-activity-report/app/infrastructure/storage/redis"
	"github.com/okorolev/gh-activity-report/app/infrastructure/transport"
	"github.com/okorolev/gh-activity-report/app/usecase"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logger.Warnf(".env not found: %v", err)
	}

	mainCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Infra
	mongoClient, err := mongodb.GetMongodbClient(cfg.MongoURI)
	if err != nil {
		logger.Fatalf("mongo connect failed: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(ctx)
	}()

	eventCollection := mongoClient.Database(cfg.MongoDB).Collection(cfg.MongoCollection)
	eventSource := mongodb.NewMongoEventSource(eventCollection)
	eventStore := mongodb.NewMongoEventStore(eventCollection)

	redisClient := goredis.NewClient(&goredis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Fatalf("redis connect failed: %v", err)
	}
	reportCache := redisStorage.NewRedisReportCache(redisClient)

	var leaderStore repository.ReplicaLeaderRepository
	var etcdClient *clientv3.Client
	if cfg.LeaderStore == "redis" {
		leaderStore = redisStorage.NewRedisReplicaLeader(redisClient)
	} else {
		etcdClient, err = clientv3.New(clientv3.Config{
			Endpoints:   cfg.EtcdEndpoints,
			DialTimeout: 5 * time.Second,
		})
		if err != nil {
			logger.Fatalf("etcd connect failed: %v", err)
		}
		defer etcdClient.Close()
		leaderStore = etcdStorage.NewETCDReplicaLeader(etcdClient)
	}

	downloader := storage.NewArchiveDownloader(5 * time.Minute)

	// UseCases
	loader := &usecase.LoaderService{
		EventStore:  eventStore,
		Downloader:  downloader,
		ReportCache: reportCache,
		Log:         logger,
	}
	reports := &usecase.ReportService{
		Source:     eventSource,
		Cache:      reportCache,
		Aggregator: usecase.NewAggregator(entity.DefaultKindPriority),
		Renderer:   usecase.NewRenderer(nil),
		CacheTTL:   cfg.CacheTTL,
		Log:        logger,
	}
	leaderService := usecase.NewReplicaLeaderService(
		leaderStore, cfg.LeaderKey, cfg.ReplicaID, cfg.LeaderLease, logger)

	// Metrics
	go func() {
		if err := metrics.StartMetricsServer(cfg.MetricsAddr); err != nil {
			logger.Errorf("metrics server stopped: %v", err)
		}
	}()

	// Background sync
	if cfg.SyncEnabled {
		if err := leaderService.RunElection(mainCtx); err != nil {
			logger.WithError(err).Warn("initial leader election failed")
		}
		sync := &usecase.SyncService{
			Loader:   loader,
			Leader:   leaderService,
			Interval: cfg.SyncInterval,
			Log:      logger,
		}
		go sync.Run(mainCtx)
	}

	// HTTP
	server := transport.NewServer(reports, loader, logger)
	go func() {
		if err := server.Start(cfg.HTTPAddr); err != nil {
			logger.Infof("http server stopped: %v", err)
		}
	}()
	logger.WithField("addr", cfg.HTTPAddr).Info("activity report service started")

	<-mainCtx.Done()
	logger.Info("shutting down")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("http shutdown failed: %v", err)
	}
	if cfg.SyncEnabled {
		leaderService.Shutdown()
	}
	logger.Info("server stopped")
}
