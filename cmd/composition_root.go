package cmd

import (
	"context"
	"log/slog"
	"time"

	httpin "orderflow/internal/adapters/in/http"
	"orderflow/internal/adapters/in/realtime"
	"orderflow/internal/adapters/out/broker"
	"orderflow/internal/adapters/out/postgres"
	"orderflow/internal/adapters/out/postgres/idempotencyrepo"
	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/menu"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/core/ports"
	"orderflow/internal/jobs"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	configs    Config
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	now        func() time.Time
	logger     *slog.Logger

	metrics    *realtime.Metrics
	hub        *realtime.Hub
	publisher  ports.Publisher
	broker     *broker.Connection
	abuseGuard *services.AbuseGuard
	idemStore  *idempotencyrepo.GormIdempotencyStore
	websocket  *realtime.WebSocketTransport
	events     *realtime.SSETransport
}

// NewCompositionRoot wires the process. With a broker connection events
// travel through the exchange and come back to the local hub through a
// consumer; without one they go to the hub directly.
func NewCompositionRoot(
	configs Config,
	gormDB *gorm.DB,
	brokerConn *broker.Connection,
	logger *slog.Logger,
) (*CompositionRoot, error) {
	now := time.Now
	guard, err := services.NewAbuseGuard(services.AbuseGuardConfig{
		Threshold: configs.Tuning.Abuse.Threshold,
		Window:    configs.Tuning.Abuse.Window,
		Cooldown:  configs.Tuning.Abuse.Cooldown,
	}, now)
	if err != nil {
		return nil, err
	}

	metrics := realtime.NewMetrics()
	hub := realtime.NewHub(metrics, logger)
	limiter := realtime.NewConnLimiter(configs.Tuning.Realtime.MaxConnsPerSource)
	settings := realtime.Settings{
		Watermark:    configs.Tuning.Realtime.OutboundWatermark,
		Keepalive:    configs.Tuning.Realtime.Keepalive,
		WriteTimeout: configs.Tuning.Realtime.WriteTimeout,
	}

	var fanout ports.Publisher = hub
	if brokerConn != nil {
		fanout = broker.NewPublisher(brokerConn)
	}

	return &CompositionRoot{
		configs:    configs,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		now:        now,
		logger:     logger,
		metrics:    metrics,
		hub:        hub,
		publisher:  realtime.NewMetricsPublisher(fanout, metrics),
		broker:     brokerConn,
		abuseGuard: guard,
		idemStore:  idempotencyrepo.NewGormIdempotencyStore(gormDB, now),
		websocket:  realtime.NewWebSocketTransport(hub, limiter, metrics, settings, logger),
		events:     realtime.NewSSETransport(hub, limiter, metrics, settings, logger),
	}, nil
}

func (c *CompositionRoot) admissionUoWFactory() commands.AdmissionUoWFactory {
	return FuncAdmissionUoWFactory(func(tenant kernel.TenantID) commands.AdmissionUoW {
		return c.uowFactory.Create(tenant)
	})
}

func (c *CompositionRoot) transitionUoWFactory() commands.TransitionUoWFactory {
	return FuncTransitionUoWFactory(func(tenant kernel.TenantID) commands.TransitionUoW {
		return c.uowFactory.Create(tenant)
	})
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.admissionUoWFactory(), c.publisher, c.now, c.logger)
}

func (c *CompositionRoot) CreateIngestBatchCommandHandler() commands.IngestBatchCommandHandler {
	return commands.NewIngestBatchCommandHandler(c.CreateCreateOrderCommandHandler(), c.logger)
}

func (c *CompositionRoot) CreateTransitionOrderCommandHandler() commands.TransitionOrderCommandHandler {
	return commands.NewTransitionOrderCommandHandler(
		c.transitionUoWFactory(),
		c.publisher,
		c.abuseGuard,
		c.configs.Tuning.ETA.WindowCap,
		c.now,
		c.logger,
	)
}

func (c *CompositionRoot) CreateTransitionItemCommandHandler() commands.TransitionItemCommandHandler {
	return commands.NewTransitionItemCommandHandler(c.transitionUoWFactory(), c.publisher, c.now, c.logger)
}

func (c *CompositionRoot) CreateGetActiveOrdersQueryHandler() queries.GetActiveOrdersQueryHandler {
	return queries.NewGetActiveOrdersQueryHandler(c.gormDB, c.now)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB, c.now)
}

// CreateHTTPServer returns the router with every endpoint mounted.
func (c *CompositionRoot) CreateHTTPServer() (*echo.Echo, error) {
	createOrder := c.CreateCreateOrderCommandHandler()
	ingestBatch := c.CreateIngestBatchCommandHandler()
	transitionOrder := c.CreateTransitionOrderCommandHandler()
	transitionItem := c.CreateTransitionItemCommandHandler()
	activeOrders := c.CreateGetActiveOrdersQueryHandler()
	getOrder := c.CreateGetOrderQueryHandler()

	server, err := httpin.NewServer(
		createOrder,
		ingestBatch,
		transitionOrder,
		transitionItem,
		activeOrders,
		getOrder,
		resourceResolver{uowFactory: c.uowFactory},
		c.websocket,
		c.events,
	)
	if err != nil {
		return nil, err
	}

	e := httpin.NewEcho(c.logger)
	idem := httpin.NewIdempotency(
		c.idemStore,
		c.configs.Tuning.Idempotency.TTL,
		c.configs.Tuning.Idempotency.Wait,
		c.logger,
	)
	server.Register(e, c.abuseGuard, idem, c.metrics.Handler())
	return e, nil
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(c.idemStore, c.abuseGuard, c.now, c.logger)
}

// CreateBrokerConsumer returns nil when the process runs without a broker.
func (c *CompositionRoot) CreateBrokerConsumer() *broker.Consumer {
	if c.broker == nil {
		return nil
	}
	return broker.NewConsumer(c.broker, c.hub, c.logger)
}

// CloseStreams ends every open WebSocket and SSE connection.
func (c *CompositionRoot) CloseStreams() {
	c.websocket.Close()
	c.events.Close()
}

// resourceResolver reads the catalog outside of any transaction.
type resourceResolver struct {
	uowFactory *postgres.GormUnitOfWorkFactory
}

func (r resourceResolver) ResolveResource(
	ctx context.Context,
	tenant kernel.TenantID,
	token string,
) (menu.Resource, error) {
	return r.uowFactory.Create(tenant).ResourceLookup().ResourceByToken(ctx, token)
}

type FuncAdmissionUoWFactory func(tenant kernel.TenantID) commands.AdmissionUoW

func (f FuncAdmissionUoWFactory) Create(tenant kernel.TenantID) commands.AdmissionUoW {
	return f(tenant)
}

type FuncTransitionUoWFactory func(tenant kernel.TenantID) commands.TransitionUoW

func (f FuncTransitionUoWFactory) Create(tenant kernel.TenantID) commands.TransitionUoW {
	return f(tenant)
}
