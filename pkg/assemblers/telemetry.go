package assemblers

import (
	"fmt"

	rediscache "github.com/iotflow/iotflow/engines/cache/redis"
	"github.com/iotflow/iotflow/engines/storage/cassandra"
	"github.com/iotflow/iotflow/engines/storage/couchdb"
	"github.com/iotflow/iotflow/engines/storage/postgres"
	"github.com/iotflow/iotflow/pkg/config"
	"github.com/iotflow/iotflow/pkg/engines/cache"
	"github.com/iotflow/iotflow/pkg/engines/eventbus"
	"github.com/iotflow/iotflow/pkg/helpers"
	"github.com/iotflow/iotflow/pkg/jobs"
	"github.com/iotflow/iotflow/pkg/middlewares/eventpub"
	"github.com/iotflow/iotflow/pkg/models"
	"github.com/iotflow/iotflow/pkg/routes"
	"github.com/iotflow/iotflow/pkg/services"
)

const serviceID = "telemetry"

func AssembleTelemetryServiceWithHTTPServer(conf config.TelemetryBackendConfig, serviceInfo models.APIServiceInfo) (*services.TelemetryService, int, error) {
	service, deviceCache, err := AssembleTelemetryService(conf)
	if err != nil {
		return nil, -1, fmt.Errorf("could not assemble Telemetry Service. Exiting: %s", err)
	}

	lHttp := helpers.SetupLogger(conf.Server.LogLevel, "Telemetry", "HTTP Server")

	httpEngine := routes.NewGinEngine(lHttp)
	httpGrp := httpEngine.Group("/")
	routes.NewTelemetryHTTPLayer(httpGrp, *service, deviceCache, conf.RateLimit, lHttp)
	port, err := routes.RunHttpRouter(lHttp, httpEngine, conf.Server, *service, serviceInfo)
	if err != nil {
		return nil, -1, fmt.Errorf("could not run Telemetry http server: %s", err)
	}

	return service, port, nil
}

func AssembleTelemetryService(conf config.TelemetryBackendConfig) (*services.TelemetryService, cache.DeviceCache, error) {
	lSvc := helpers.SetupLogger(conf.Logs.Level, "Telemetry", "Service")
	lIdentity := helpers.SetupLogger(conf.IdentityStorage.LogLevel, "Telemetry", "Identity Storage")
	lTimeSeries := helpers.SetupLogger(conf.TimeSeriesStorage.LogLevel, "Telemetry", "TimeSeries Storage")
	lDocuments := helpers.SetupLogger(conf.DocumentStorage.LogLevel, "Telemetry", "Document Storage")
	lCache := helpers.SetupLogger(conf.Cache.LogLevel, "Telemetry", "Cache")

	gormDB, err := postgres.CreatePostgresDBConnection(lIdentity, conf.IdentityStorage)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to identity storage: %s", err)
	}
	identityStorage, err := postgres.NewDeviceIdentityRepository(lIdentity, gormDB)
	if err != nil {
		return nil, nil, fmt.Errorf("could not create identity repository: %s", err)
	}

	session, err := cassandra.CreateCassandraConnection(lTimeSeries, conf.TimeSeriesStorage)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to time-series storage: %s", err)
	}
	telemetryStorage, err := cassandra.NewTelemetryRepository(lTimeSeries, session)
	if err != nil {
		return nil, nil, fmt.Errorf("could not create telemetry repository: %s", err)
	}

	kivikClient, err := couchdb.CreateCouchDBConnection(lDocuments, conf.DocumentStorage, []string{couchdb.EventLogsDB, couchdb.DeviceConfigsDB})
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to document storage: %s", err)
	}
	eventsStorage, err := couchdb.NewAuditEventRepository(lDocuments, kivikClient)
	if err != nil {
		return nil, nil, fmt.Errorf("could not create audit event repository: %s", err)
	}
	configsStorage, err := couchdb.NewDeviceConfigRepository(lDocuments, kivikClient)
	if err != nil {
		return nil, nil, fmt.Errorf("could not create device config repository: %s", err)
	}

	redisClient, err := rediscache.CreateRedisConnection(lCache, conf.Cache)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to cache: %s", err)
	}
	deviceCache := rediscache.NewDeviceCache(lCache, redisClient)

	svc := services.NewTelemetryService(services.TelemetryServiceBuilder{
		Logger:           lSvc,
		IdentityStorage:  identityStorage,
		TelemetryStorage: telemetryStorage,
		EventsStorage:    eventsStorage,
		ConfigsStorage:   configsStorage,
		Cache:            deviceCache,
	})

	telemetrySvc := svc.(*services.TelemetryServiceBackend)

	if conf.PublisherEventBus.Enabled {
		lMessaging := helpers.SetupLogger(conf.PublisherEventBus.LogLevel, "Telemetry", "Event Bus")
		lMessaging.Infof("Publisher Event Bus is enabled")

		engine, err := eventbus.GetEventBusEngine(string(conf.PublisherEventBus.Provider), conf.PublisherEventBus.Config, serviceID, lMessaging)
		if err != nil {
			return nil, nil, fmt.Errorf("could not create Event Bus engine: %s", err)
		}

		pub, err := engine.Publisher()
		if err != nil {
			return nil, nil, fmt.Errorf("could not create Event Bus publisher: %s", err)
		}

		svc = eventpub.NewTelemetryEventPublisher(&eventpub.CloudEventPublisher{
			Publisher: pub,
			ServiceID: serviceID,
			Logger:    lMessaging,
		})(svc)

		telemetrySvc.SetService(svc)
	}

	if conf.Retention.Enabled {
		lJobs := helpers.SetupLogger(conf.Logs.Level, "Telemetry", "Jobs")
		sweeper := jobs.NewRetentionSweeper(lJobs, identityStorage, telemetryStorage, conf.Retention.MaxAgeDays)
		scheduler := jobs.NewJobScheduler(lJobs, conf.Retention.Schedule, sweeper)
		scheduler.Start()
	}

	return &svc, deviceCache, nil
}
