package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"

	"talentgate/internal/alert/channel"
	alertHandler "talentgate/internal/alert/handler"
	alertMetrics "talentgate/internal/alert/metrics"
	alertService "talentgate/internal/alert/service"
	alertStore "talentgate/internal/alert/store"
	"talentgate/internal/athlete"
	"talentgate/internal/audit"
	auditHandler "talentgate/internal/audit/handler"
	consentHandler "talentgate/internal/consent/handler"
	consentMetrics "talentgate/internal/consent/metrics"
	consentService "talentgate/internal/consent/service"
	consentStore "talentgate/internal/consent/store"
	notificationHandler "talentgate/internal/notification/handler"
	notificationMetrics "talentgate/internal/notification/metrics"
	notificationService "talentgate/internal/notification/service"
	notificationStore "talentgate/internal/notification/store"
	"talentgate/internal/pipeline"
	pipelineHandler "talentgate/internal/pipeline/handler"
	"talentgate/internal/platform/config"
	"talentgate/internal/platform/database"
	"talentgate/internal/platform/health"
	"talentgate/internal/platform/kafka"
	"talentgate/internal/platform/kafka/consumer"
	"talentgate/internal/platform/kafka/producer"
	"talentgate/internal/platform/redis"
	"talentgate/internal/privacy"
	"talentgate/internal/registry"
	registryHandler "talentgate/internal/registry/handler"
	"talentgate/internal/report"
	reportHandler "talentgate/internal/report/handler"
	"talentgate/internal/scoring"
	"talentgate/internal/seeder"
	httptransport "talentgate/internal/transport/http"
	"talentgate/migrations"
	"talentgate/pkg/platform/circuit"
	"talentgate/pkg/platform/middleware/metadata"
	"talentgate/pkg/platform/middleware/request"
	"talentgate/pkg/requestcontext"
)

const (
	auditBuffer    = 256
	topicPartition = 3
	topicReplicas  = 1
)

type application struct {
	router   http.Handler
	consumer *consumer.Consumer
	seeder   *seeder.Seeder

	db       *sql.DB
	redis    *goredis.Client
	producer *producer.Producer
	auditor  *audit.Publisher
}

// build connects the configured infrastructure and assembles every service.
// Unset connection URLs fall back to in-memory stores.
func build(ctx context.Context, cfg *config.Config, log *slog.Logger) (_ *application, err error) {
	app := &application{}
	defer func() {
		if err != nil {
			app.close(log)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	hc := health.New(2 * time.Second)

	if cfg.DatabaseURL != "" {
		app.db, err = database.Open(ctx, cfg.DatabaseURL, database.DefaultOptions(), reg)
		if err != nil {
			return nil, err
		}
		if err = database.Migrate(ctx, app.db, migrations.FS); err != nil {
			return nil, err
		}
		hc.Critical("postgres", database.Check(app.db))
	}
	if cfg.RedisURL != "" {
		app.redis, err = redis.Open(ctx, cfg.RedisURL, reg)
		if err != nil {
			return nil, err
		}
		hc.Critical("redis", redis.Check(app.redis))
	}
	if cfg.KafkaBrokers != "" {
		pcfg := kafka.DefaultProducerConfig()
		pcfg.Brokers = cfg.KafkaBrokers
		app.producer, err = producer.New(pcfg, log)
		if err != nil {
			return nil, err
		}
		if err = app.producer.EnsureTopic(ctx, cfg.AlertTopic, topicPartition, topicReplicas); err != nil {
			return nil, fmt.Errorf("ensure alert topic: %w", err)
		}
		p := app.producer
		hc.Optional("kafka", func(ctx context.Context) error {
			if !p.Healthy(ctx) {
				return errors.New("kafka brokers unreachable")
			}
			return nil
		})
	}

	// audit
	var auditStore audit.Store = audit.NewInMemoryStore(cfg.AuditRetention)
	if app.db != nil {
		auditStore = audit.NewPostgresStore(app.db, cfg.AuditRetention, log)
	}
	app.auditor = audit.NewPublisher(auditStore,
		audit.WithAsyncBuffer(auditBuffer),
		audit.WithLogger(log),
		audit.WithMetrics(audit.NewMetrics(reg)),
	)

	// consent
	var consents consentService.Store = consentStore.New()
	if app.db != nil {
		consents = consentStore.NewPostgres(app.db, log)
	}
	cm := consentMetrics.New(reg)
	consentSvc := consentService.NewService(consents, app.auditor, log, consentService.WithMetrics(cm))
	validatorOpts := []consentService.ValidatorOption{
		consentService.WithBatchSize(cfg.BatchSize),
		consentService.WithConcurrency(cfg.BatchConcurrency),
		consentService.WithValidatorMetrics(cm),
	}
	if cfg.AnalyticsFailOpen {
		validatorOpts = append(validatorOpts, consentService.WithFailOpen())
	}
	validator := consentService.NewValidator(consents, app.auditor, log, validatorOpts...)

	// alerts
	senders, err := buildSenders(cfg, app)
	if err != nil {
		return nil, err
	}
	var alerts alertService.Store = alertStore.New()
	if app.redis != nil {
		alerts = alertStore.NewRedis(app.redis, log)
	}
	alertSvc := alertService.NewService(alerts, senders, app.auditor, log,
		alertService.WithMetrics(alertMetrics.New(reg)))

	// rules
	var rules notificationService.Store = notificationStore.New()
	if app.db != nil {
		rules = notificationStore.NewPostgres(app.db, log)
	}
	ruleSvc := notificationService.NewService(rules, validator, app.auditor, log,
		notificationService.WithMetrics(notificationMetrics.New(reg)))

	// analytics
	if cfg.AnonymizationKey == "" {
		log.Warn("anonymization_key not set; anonymized identifiers use an unkeyed hash")
	}
	anonymizer := privacy.New(app.auditor, log,
		privacy.WithHashKey([]byte(cfg.AnonymizationKey)),
		privacy.WithBatching(cfg.BatchSize, cfg.BatchConcurrency),
	)
	directory := athlete.NewInMemoryDirectory()
	pipe := pipeline.New(directory, directory, scoring.NewEngine(), validator, anonymizer,
		ruleSvc, alertSvc, app.auditor, log)

	var reportStore report.Store = report.NewInMemoryStore(report.Retention)
	if app.db != nil {
		reportStore = report.NewPostgresStore(app.db, report.Retention, log)
	}
	reports := report.NewGenerator(alertSvc, reportStore, app.auditor, log,
		report.WithMetrics(report.NewMetrics(reg)))

	if cfg.KafkaBrokers != "" {
		ccfg := kafka.DefaultConsumerConfig()
		ccfg.Brokers = cfg.KafkaBrokers
		ccfg.Topics = []string{cfg.AssessmentsTopic}
		app.consumer, err = consumer.New(ccfg, pipeline.AssessmentHandler(pipe, log), log)
		if err != nil {
			return nil, err
		}
	}

	consentRoutes := consentHandler.New(consentSvc, validator, log)
	public := []httptransport.Registrar{
		consentRoutes,
		alertHandler.New(alertSvc, log),
		notificationHandler.New(ruleSvc, log),
		reportHandler.New(reports, log),
		pipelineHandler.New(pipe, log),
	}
	admin := []httptransport.AdminRegistrar{
		consentRoutes,
		auditHandler.New(app.auditor),
	}

	if cfg.RegistryURL != "" {
		client := registry.NewClient(cfg.RegistryURL,
			registry.NewClientCredentials(cfg.RegistryTokenURL, cfg.RegistryClientID, cfg.RegistryClientSecret, nil),
			cfg.RegistryTimeout, log,
			registry.WithBreaker(circuit.New("registry",
				circuit.WithFailureThreshold(cfg.RegistryFailures),
				circuit.WithCooldown(cfg.RegistryCooldown),
			)),
			registry.WithClientMetrics(registry.NewMetrics(reg)),
		)
		hc.Optional("registry", func(context.Context) error {
			if !client.Healthy() {
				return errors.New("registry circuit open")
			}
			return nil
		})
		syncer := registry.NewSyncer(client, validator, directory, directory, app.auditor, log,
			registry.WithBatchSize(cfg.BatchSize),
			registry.WithConcurrency(cfg.BatchConcurrency),
		)
		admin = append(admin, registryHandler.New(syncer, log))
	}

	proxies, err := metadata.ParsePrefixes(cfg.ProxyPrefixes())
	if err != nil {
		return nil, err
	}
	app.router = httptransport.NewRouter(hc, public, admin, httptransport.Options{
		Logger:         log,
		Metrics:        request.NewMetrics(reg),
		Gatherer:       reg,
		AllowedOrigins: cfg.AllowedOrigins(),
		TrustedProxies: proxies,
		AdminToken:     cfg.AdminToken,
	})

	if cfg.SeedDemoData {
		app.seeder = seeder.New(directory, consentSvc, ruleSvc, log)
	}
	return app, nil
}

func buildSenders(cfg *config.Config, app *application) ([]channel.Sender, error) {
	var senders []channel.Sender
	for _, name := range cfg.EnabledChannels() {
		switch name {
		case "email":
			senders = append(senders, channel.NewEmailRelay(cfg.EmailRelayURL, cfg.RelayTimeout,
				channel.WithAPIKey(cfg.RelayAPIKey)))
		case "sms":
			senders = append(senders, channel.NewSMSRelay(cfg.SMSRelayURL, cfg.RelayTimeout,
				channel.WithAPIKey(cfg.RelayAPIKey)))
		case "push":
			if app.producer == nil {
				return nil, errors.New("push channel requires kafka")
			}
			senders = append(senders, channel.NewPush(app.producer, cfg.AlertTopic))
		case "dashboard":
			var publisher channel.RedisPublisher
			if app.redis != nil {
				publisher = app.redis
			}
			senders = append(senders, channel.NewDashboard(publisher, cfg.DashboardTopic))
		}
	}
	return senders, nil
}

func (a *application) seed(ctx context.Context) error {
	if a.seeder == nil {
		return nil
	}
	ctx = requestcontext.WithActorID(requestcontext.WithTime(ctx, time.Now()), "system:seeder")
	return a.seeder.SeedAll(ctx)
}

// close releases resources in reverse order of acquisition.
func (a *application) close(log *slog.Logger) {
	if a.consumer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.consumer.Stop(ctx); err != nil {
			log.Warn("assessment consumer stop", "error", err)
		}
		cancel()
	}
	if a.auditor != nil {
		a.auditor.Close()
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			log.Warn("kafka producer close", "error", err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Warn("redis close", "error", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			log.Warn("postgres close", "error", err)
		}
	}
}
