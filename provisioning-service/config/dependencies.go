package config

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/draftea/provisioning-system/provisioning-service/adapters"
	"github.com/draftea/provisioning-system/provisioning-service/application"
	"github.com/draftea/provisioning-system/provisioning-service/domain"
	"github.com/draftea/provisioning-system/provisioning-service/handlers"
	"github.com/draftea/provisioning-system/provisioning-service/infrastructure"
	"github.com/draftea/provisioning-system/provisioning-service/saga"
	"github.com/draftea/provisioning-system/shared/events"
	sharedinfra "github.com/draftea/provisioning-system/shared/infrastructure"
	"github.com/draftea/provisioning-system/shared/logging"
	"github.com/draftea/provisioning-system/shared/models"
	"github.com/draftea/provisioning-system/shared/telemetry"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
)

type Dependencies struct {
	Logger zerolog.Logger

	// Database, nil with the memory store
	DB *sqlx.DB

	// Repositories
	WorkflowRepository domain.WorkflowRepository

	// Saga
	Adapters    *adapters.Registry
	Coordinator *saga.Coordinator
	Dispatcher  *application.Dispatcher
	Recovery    *application.Recovery

	// Use Cases
	ProvisionSubscriber    *application.ProvisionSubscriber
	StartWorkflow          *application.StartWorkflow
	CancelWorkflow         *application.CancelWorkflow
	RetryWorkflow          *application.RetryWorkflow
	GetWorkflow            *application.GetWorkflow
	GetWorkflowTransitions *application.GetWorkflowTransitions
	ListWorkflows          *application.ListWorkflows
	WorkflowStatistics     *application.WorkflowStatistics
	RunningWorkflows       *application.RunningWorkflows

	// HTTP Handlers
	WorkflowHandlers *handlers.WorkflowHandlers
	HealthChecks     map[string]handlers.HealthCheck

	// Event Handlers
	CommandRouter *handlers.CommandRouter

	// Infrastructure
	EventPublisher  events.Publisher
	EventSubscriber *sharedinfra.SQSSubscriberAdapter

	// Telemetry
	Telemetry         *telemetry.Telemetry
	TelemetryShutdown func()
}

func BuildDependencies(ctx context.Context, config *Config) (*Dependencies, error) {
	deps := &Dependencies{}

	if config.InstanceID == "" {
		config.InstanceID = models.GenerateUUID().String()
	}
	deps.Logger = logging.NewLogger(logging.Config{
		ServiceName: config.ServiceName,
		Environment: config.Env,
		InstanceID:  config.InstanceID,
		Level:       config.Log.Level,
		Console:     config.Log.Console,
	})
	logger := deps.Logger

	// Initialize telemetry first
	if config.Telemetry.Enabled {
		telConfig := telemetry.ProvisioningServiceConfig.
			WithOTLPEndpoint(config.Telemetry.OTLPEndpoint).
			WithEnvironment(config.Env)
		tel, telemetryShutdown, err := telemetry.InitTelemetry(ctx, telConfig)
		if err != nil {
			// Continue without telemetry rather than failing
			logger.Warn().Err(err).Msg("failed to initialize telemetry")
		} else {
			deps.Telemetry = tel
			deps.TelemetryShutdown = telemetryShutdown
		}
	}

	if err := deps.buildStore(ctx, config); err != nil {
		deps.Close(ctx)
		return nil, err
	}

	if err := deps.buildMessaging(ctx, config); err != nil {
		deps.Close(ctx)
		return nil, err
	}

	// Step adapters
	deps.Adapters = adapters.NewRegistry()
	systems := make([]string, 0, len(config.Systems))
	for name := range config.Systems {
		systems = append(systems, name)
	}
	sort.Strings(systems)
	for _, name := range systems {
		sys := config.Systems[name]
		deps.Adapters.RegisterClient(adapters.NewRESTClient(adapters.SystemConfig{
			System:   name,
			BaseURL:  sys.BaseURL,
			Token:    sys.Token,
			Timeout:  sys.Timeout,
			UndoNoop: sys.UndoNoop,
		}))
	}
	if missing := deps.Adapters.Missing(); len(missing) > 0 {
		// workflows reaching these steps fail with a permanent error
		logger.Warn().Strs("actions", missing).Msg("step actions without adapter")
	}

	// Saga
	byType := make(map[domain.WorkflowType]int, len(config.Saga.MaxRetriesByType))
	for name, n := range config.Saga.MaxRetriesByType {
		workflowType, err := domain.NewWorkflowType(name)
		if err != nil {
			deps.Close(ctx)
			return nil, fmt.Errorf("invalid saga.max_retries_by_type: %w", err)
		}
		byType[workflowType] = n
	}
	policy := saga.NewRetryPolicy(saga.RetryConfig{
		MaxRetries:             config.Saga.MaxRetries,
		MaxRetriesByType:       byType,
		MaxCompensationRetries: config.Saga.MaxCompensationRetries,
		InitialInterval:        config.Saga.InitialBackoff,
		MaxInterval:            config.Saga.MaxBackoff,
		Multiplier:             config.Saga.BackoffMultiplier,
		RandomizationFactor:    config.Saga.BackoffJitter,
	})
	deps.Coordinator = saga.NewCoordinator(deps.WorkflowRepository, deps.Adapters, policy, deps.EventPublisher, logger, saga.CoordinatorConfig{
		InstanceID:         config.InstanceID,
		LeaseTTL:           config.Saga.LeaseTTL,
		MaxWorkflowRetries: config.Saga.MaxWorkflowRetries,
	})
	deps.Dispatcher = application.NewDispatcher(deps.Coordinator, config.Dispatcher.MaxConcurrent, logger)
	deps.Recovery = application.NewRecovery(deps.WorkflowRepository, deps.Dispatcher, config.Dispatcher.RecoveryInterval, config.Dispatcher.RecoveryBatch, logger)

	// Initialize use cases
	repo := deps.WorkflowRepository
	deps.ProvisionSubscriber = application.NewProvisionSubscriber(repo, deps.EventPublisher, deps.Dispatcher, logger)
	deps.StartWorkflow = application.NewStartWorkflow(repo, deps.EventPublisher, deps.Dispatcher, logger)
	deps.CancelWorkflow = application.NewCancelWorkflow(repo, deps.EventPublisher, deps.Dispatcher, logger)
	deps.RetryWorkflow = application.NewRetryWorkflow(repo, deps.EventPublisher, deps.Dispatcher, logger)
	deps.GetWorkflow = application.NewGetWorkflow(repo)
	deps.GetWorkflowTransitions = application.NewGetWorkflowTransitions(repo)
	deps.ListWorkflows = application.NewListWorkflows(repo)
	deps.WorkflowStatistics = application.NewWorkflowStatistics(repo)
	deps.RunningWorkflows = application.NewRunningWorkflows(repo)

	// Initialize handlers
	deps.WorkflowHandlers = handlers.NewWorkflowHandlers(
		deps.ProvisionSubscriber,
		deps.StartWorkflow,
		deps.CancelWorkflow,
		deps.RetryWorkflow,
		deps.GetWorkflow,
		deps.GetWorkflowTransitions,
		deps.ListWorkflows,
		deps.WorkflowStatistics,
		deps.RunningWorkflows,
		logger,
	)
	deps.CommandRouter = handlers.NewCommandRouter(logger)
	handlers.NewCommandHandlers(
		deps.ProvisionSubscriber,
		deps.StartWorkflow,
		deps.CancelWorkflow,
		deps.RetryWorkflow,
	).Register(deps.CommandRouter)

	deps.HealthChecks = map[string]handlers.HealthCheck{}
	if deps.DB != nil {
		deps.HealthChecks["database"] = deps.DB.PingContext
	}

	return deps, nil
}

func (d *Dependencies) buildStore(ctx context.Context, config *Config) error {
	switch config.Store.Driver {
	case "memory":
		d.Logger.Warn().Msg("using in-memory workflow store; workflows do not survive a restart")
		d.WorkflowRepository = infrastructure.NewMemoryWorkflowRepository()
		return nil
	case "postgres", "":
	default:
		return fmt.Errorf("unknown store driver %q", config.Store.Driver)
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", config.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	d.DB = db

	if config.Database.MaxOpenConns > 0 {
		db.SetMaxOpenConns(config.Database.MaxOpenConns)
	}
	if config.Database.MaxIdleConns > 0 {
		db.SetMaxIdleConns(config.Database.MaxIdleConns)
	}
	if config.Database.ConnMaxLife > 0 {
		db.SetConnMaxLifetime(config.Database.ConnMaxLife)
	}

	if config.Store.RunMigrations {
		if err := infrastructure.RunMigrations(db.DB); err != nil {
			return err
		}
	}

	d.WorkflowRepository = infrastructure.NewPostgresWorkflowRepository(db)
	return nil
}

func (d *Dependencies) buildMessaging(ctx context.Context, config *Config) error {
	if !config.AWS.Enabled {
		d.EventPublisher = sharedinfra.NewLogEventPublisher(d.Logger)
		return nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(config.AWS.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			config.AWS.AccessKeyID, config.AWS.SecretAccessKey, "",
		)),
	)
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %w", err)
	}

	snsCfg := awsCfg.Copy()
	if config.AWS.EndpointSNS != "" {
		snsCfg.BaseEndpoint = aws.String(config.AWS.EndpointSNS)
	}
	d.EventPublisher = sharedinfra.NewSNSPublisherAdapter(snsCfg, config.AWS.SNSTopicArn, d.Logger)

	if config.AWS.SQSQueueURL != "" {
		sqsCfg := awsCfg.Copy()
		if config.AWS.EndpointSQS != "" {
			sqsCfg.BaseEndpoint = aws.String(config.AWS.EndpointSQS)
		}
		var opts []sharedinfra.SQSSubscriberOption
		if config.AWS.SQSWorkers > 0 {
			opts = append(opts, sharedinfra.WithWorkers(config.AWS.SQSWorkers))
		}
		d.EventSubscriber = sharedinfra.NewSQSSubscriberAdapter(sqsCfg, config.AWS.SQSQueueURL, d.Logger, opts...)
	}
	return nil
}

// Close closes all dependencies. The dispatcher is drained by the caller
// before Close so in-flight drives can still reach the store.
func (d *Dependencies) Close(ctx context.Context) error {
	var errs []error

	if d.EventSubscriber != nil {
		if err := d.EventSubscriber.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to close event subscriber: %w", err))
		}
	}

	if closer, ok := d.EventPublisher.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close event publisher: %w", err))
		}
	}

	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if d.TelemetryShutdown != nil {
		d.TelemetryShutdown()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing dependencies: %v", errs)
	}

	return nil
}
