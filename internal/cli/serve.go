package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/iotdataplane"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/greenvvay/Parking/internal/api"
	"github.com/greenvvay/Parking/internal/api/handler"
	"github.com/greenvvay/Parking/internal/api/middleware"
	"github.com/greenvvay/Parking/internal/config"
	"github.com/greenvvay/Parking/internal/facility"
	"github.com/greenvvay/Parking/internal/iot"
	"github.com/greenvvay/Parking/internal/logger"
	"github.com/greenvvay/Parking/internal/metrics"
	"github.com/greenvvay/Parking/internal/notify"
	"github.com/greenvvay/Parking/internal/repository"
	"github.com/greenvvay/Parking/internal/repository/memory"
	"github.com/greenvvay/Parking/internal/repository/postgresql"
	"github.com/greenvvay/Parking/internal/service"
	"github.com/greenvvay/Parking/internal/tariffs"
	"github.com/greenvvay/Parking/internal/telemetry"
)

const serviceName = "parking"

func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the gate queue consumer and the notification fan-out",
		Long: `Run the parking service. Configuration comes from the environment and an
optional .env file. Postgres, Redis, SQS, IoT and Rekognition are each used
only when configured.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer logger.Sync()

	shutdownTracing, err := telemetry.Init(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	// Sinks are added below, before the dispatcher starts.
	dispatcher := notify.NewDispatcher(log.Named("notify"), 256)
	dispatcher.OnDrop(m.NotificationDropped)
	wsManager := handler.NewWebSocketManager(log.Named("ws"))
	dispatcher.AddSink(wsManager)

	facilityID := cfg.FacilityID()
	notifier := service.NewFacilityNotifier(facilityID, cfg.FacilityCapacity, dispatcher, m)
	f, err := facility.New(cfg.FacilityInGates, cfg.FacilityOutGates, cfg.FacilityCapacity,
		facility.WithID(facilityID),
		facility.WithClock(facility.SystemClock{Location: loc}),
		facility.WithObserver(notifier),
	)
	if err != nil {
		return err
	}
	notifier.UseLiveAvailability(f.AvailableSpaces)
	log.Info("facility created",
		zap.String("name", cfg.FacilityName),
		zap.String("facility_id", facilityID.String()),
		zap.Int("in_gates", cfg.FacilityInGates),
		zap.Int("out_gates", cfg.FacilityOutGates),
		zap.Int("capacity", cfg.FacilityCapacity),
		zap.String("timezone", loc.String()))

	psOpts := []service.ParkingServiceOption{
		service.WithMetrics(m),
		service.WithLogger(log.Named("parking")),
		service.WithTicketRetention(cfg.TicketRetention),
	}
	var (
		userRepo    repository.UserRepository           = memory.NewUserRepository()
		controllers repository.GateControllerRepository = memory.NewGateControllerRepository()
		msgLog      repository.GateMessageLogRepository
	)
	if cfg.DBEnabled {
		db, err := openDatabase(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		log.Info("database ready", zap.String("driver", cfg.DBDriver), zap.String("host", cfg.DBHost))

		userRepo = postgresql.NewPgUserRepository(db)
		controllers = postgresql.NewPgGateControllerRepository(db)
		msgLog = postgresql.NewPgGateMessageLogRepository(db)
		psOpts = append(psOpts,
			service.WithSessionRepository(postgresql.NewPgParkingSessionRepository(db)),
			service.WithEventLogRepository(postgresql.NewPgEventLogRepository(db)),
			service.WithTariffRepository(postgresql.NewPgTariffRepository(db)),
		)
	} else {
		log.Warn("database disabled, history and users are kept in memory only")
	}

	parkingService := service.NewParkingService(f, psOpts...)
	if err := installTariff(ctx, parkingService, cfg, log); err != nil {
		return err
	}

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpirationHours, log.Named("auth"))
	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		if err := authService.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}
	}

	if cfg.RedisAddr != "" {
		rc, err := notify.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer rc.Close()
		dispatcher.AddSink(notify.NewRedisPublisher(rc, cfg.RedisChannel, notify.DefaultSnapshotKey))
		log.Info("redis fan-out enabled", zap.String("channel", cfg.RedisChannel))
	}

	deps := api.Dependencies{
		Parking:   parkingService,
		Auth:      authService,
		AuthMw:    middleware.NewAuthMiddleware(authService, log.Named("auth")),
		WebSocket: wsManager,
		Metrics:   m.Handler(),
		Logger:    log,
	}

	var (
		sqsClient *sqs.Client
		commander *service.BarrierCommander
	)
	if cfg.SQSEventQueueURL != "" || cfg.IoTMQTTEndpoint != "" || cfg.LPREnabled {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return fmt.Errorf("failed to load AWS config: %w", err)
		}
		log.Info("AWS config loaded", zap.String("region", cfg.AWSRegion))

		if cfg.IoTMQTTEndpoint != "" {
			iotClient := iotdataplane.NewFromConfig(awsCfg, func(o *iotdataplane.Options) {
				o.BaseEndpoint = aws.String(withScheme(cfg.IoTMQTTEndpoint))
			})
			commander = service.NewBarrierCommander(iotClient, "parking/"+cfg.IoTThingName, log.Named("iot"))
			dispatcher.AddSink(commander)
			deps.Barrier = commander
		}
		if cfg.LPREnabled {
			lpr, err := service.NewLPRService(rekognition.NewFromConfig(awsCfg), "", log.Named("lpr"))
			if err != nil {
				return err
			}
			deps.LPR = lpr
		}
		if cfg.SQSEventQueueURL != "" {
			sqsClient = sqs.NewFromConfig(awsCfg)
		}
	}

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	var wg sync.WaitGroup

	go dispatcher.Run(workerCtx)
	wg.Add(2)
	go func() {
		defer wg.Done()
		wsManager.Start(workerCtx)
	}()
	go func() {
		defer wg.Done()
		parkingService.StartCleanupJob(workerCtx, time.Minute)
	}()

	if sqsClient != nil {
		var tickets service.TicketSender
		if commander != nil {
			tickets = commander
		}
		gateEvents := service.NewGateEventService(parkingService, tickets, msgLog, m, log.Named("gate"))
		gateEvents.TrackControllers(controllers)
		deps.Controllers = controllers
		consumer := iot.NewSQSConsumer(sqsClient, cfg.SQSEventQueueURL, gateEvents, log)
		wg.Add(1)
		go func() {
			defer wg.Done()
			consumer.Start(workerCtx)
		}()
	} else {
		log.Warn("SQS_EVENT_QUEUE_URL not set, gate controller queue is not consumed")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           api.SetupRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-serveErr:
		if err != nil {
			cancelWorkers()
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
	}

	cancelWorkers()
	if !waitFor(&wg, dispatcher.Done(), 5*time.Second) {
		log.Warn("background workers did not stop in time")
	}
	log.Info("server stopped")
	return nil
}

func openDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := postgresql.NewDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := postgresql.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// installTariff prefers the newest stored tariff, then TARIFF_FILE. Without
// either, parking is free until an admin installs one.
func installTariff(ctx context.Context, ps *service.ParkingService, cfg *config.Config, log *zap.Logger) error {
	restored, err := ps.RestoreTariff(ctx)
	if err != nil {
		log.Error("failed to restore stored tariff", zap.Error(err))
	}
	if restored {
		return nil
	}
	if cfg.TariffFile == "" {
		log.Warn("no tariff installed, every stay costs nothing")
		return nil
	}
	t, err := tariffs.Load(cfg.TariffFile)
	if err != nil {
		return fmt.Errorf("TARIFF_FILE %s: %w", cfg.TariffFile, err)
	}
	if _, err := ps.SetTariff(ctx, t); err != nil {
		return err
	}
	log.Info("tariff loaded from file", zap.String("path", cfg.TariffFile))
	return nil
}

func withScheme(endpoint string) string {
	if strings.HasPrefix(endpoint, "https://") || strings.HasPrefix(endpoint, "http://") {
		return endpoint
	}
	return "https://" + endpoint
}

// waitFor reports whether wg and done both finished within timeout.
func waitFor(wg *sync.WaitGroup, done <-chan struct{}, timeout time.Duration) bool {
	all := make(chan struct{})
	go func() {
		wg.Wait()
		<-done
		close(all)
	}()
	select {
	case <-all:
		return true
	case <-time.After(timeout):
		return false
	}
}
