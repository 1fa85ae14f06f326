//go:build wireinject
// +build wireinject

package wire

import (
	"context"

	"github.com/google/wire"

	"agent-console/internal/application/account"
	"agent-console/internal/application/analytics"
	"agent-console/internal/application/billing"
	"agent-console/internal/application/settings"
	"agent-console/internal/config"
	"agent-console/internal/domain/repository"
	"agent-console/internal/domain/service"
	"agent-console/internal/infrastructure/llm"
	"agent-console/internal/infrastructure/messaging"
	"agent-console/internal/infrastructure/persistence/postgres"
	"agent-console/internal/infrastructure/persistence/redis"
	"agent-console/internal/interfaces/http/handler"
	"agent-console/internal/interfaces/http/middleware"
	"agent-console/internal/interfaces/http/router"
)

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		RepoSet,
		RedisSet,
		MessagingSet,
		ServiceSet,
		RouterSet,
	)
	return nil, nil, nil
}

// InitializeBootstrap 初始化引导命令所需依赖
func InitializeBootstrap(ctx context.Context, cfg *config.Config) (*BootstrapLayer, func(), error) {
	wire.Build(
		RepoSet,
		ProvideRedisClient,
		redis.NewCache,
		ProvideSettingsService,
		account.NewService,
		wire.Struct(new(BootstrapLayer), "*"),
	)
	return nil, nil, nil
}

// InitializeWorker 初始化异步任务执行器所需依赖
func InitializeWorker(ctx context.Context, cfg *config.Config) (*WorkerLayer, func(), error) {
	wire.Build(
		RepoSet,
		ProvideRedisClient,
		ProvidePriceTable,
		ProvideRecalculator,
		wire.Struct(new(WorkerLayer), "*"),
	)
	return nil, nil, nil
}

// PostgresSet PostgreSQL 提供者集合
var PostgresSet = wire.NewSet(
	ProvidePostgresClient,
	postgres.NewTxManager,
	postgres.NewOrgContext,
	postgres.NewOrganizationRepository,
	postgres.NewUserRepository,
	postgres.NewAgentRepository,
	postgres.NewSettingRepository,
	postgres.NewUsageRepository,
	postgres.NewTimingRepository,
	postgres.NewOutcomeRepository,
)

// RepoSet 整合了具体实现与接口绑定的集合
var RepoSet = wire.NewSet(
	PostgresSet,
	wire.Bind(new(repository.Transactor), new(*postgres.TxManager)),
	wire.Bind(new(repository.OrgContextManager), new(*postgres.OrgContext)),
	wire.Bind(new(repository.OrganizationRepository), new(*postgres.OrganizationRepository)),
	wire.Bind(new(repository.UserRepository), new(*postgres.UserRepository)),
	wire.Bind(new(repository.AgentRepository), new(*postgres.AgentRepository)),
	wire.Bind(new(repository.SettingRepository), new(*postgres.SettingRepository)),
	wire.Bind(new(repository.UsageRepository), new(*postgres.UsageRepository)),
	wire.Bind(new(repository.TimingRepository), new(*postgres.TimingRepository)),
	wire.Bind(new(repository.OutcomeRepository), new(*postgres.OutcomeRepository)),
)

// RedisSet Redis 提供者集合
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	redis.NewCache,
	redis.NewRateLimiter,
	ProvidePreferenceStore,
	ProvideFetchSequencer,
	wire.Bind(new(middleware.RateLimiter), new(*redis.RateLimiter)),
)

// MessagingSet 消息队列提供者集合
var MessagingSet = wire.NewSet(
	ProvideMessagingProducer,
	wire.Bind(new(billing.Publisher), new(*messaging.Producer)),
)

// ServiceSet 应用服务提供者集合
var ServiceSet = wire.NewSet(
	account.NewService,
	ProvideSettingsService,
	ProvideColorAssigner,
	ProvideAnalyticsConfig,
	analytics.NewFetchGuard,
	analytics.NewService,
	wire.Bind(new(analytics.SettingsProvider), new(*settings.Service)),
	ProvidePriceTable,
	billing.NewUsageRecorder,
	billing.NewService,
	wire.Bind(new(service.LLMUsageRecorder), new(*billing.UsageRecorder)),
	ProvideLLMRegistry,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	ProvideAuthConfig,
	ProvideJWTConfig,
	ProvideRateLimitKeyFunc,
	ProvideHealthHandler,
	handler.NewAuthHandler,
	handler.NewOrganizationHandler,
	handler.NewUserHandler,
	handler.NewAgentHandler,
	handler.NewDashboardHandler,
	handler.NewSettingsHandler,
	handler.NewBillingHandler,
	handler.NewProviderHandler,
	handler.NewPreferenceHandler,
	wire.Bind(new(handler.DashboardService), new(*analytics.Service)),
	wire.Bind(new(handler.SettingsService), new(*settings.Service)),
	wire.Bind(new(handler.BillingService), new(*billing.Service)),
	wire.Bind(new(handler.ProviderRegistry), new(*llm.Registry)),
	wire.Bind(new(handler.ProviderCatalog), new(*llm.Registry)),
	wire.Struct(new(router.RouterHandlers), "*"),
	router.NewWithDeps,
)
