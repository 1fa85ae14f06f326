// Package wire 提供依赖注入配置
package wire

import (
	"context"
	"fmt"
	"strings"

	"agent-console/internal/application/analytics"
	"agent-console/internal/application/billing"
	"agent-console/internal/application/settings"
	"agent-console/internal/config"
	"agent-console/internal/domain/repository"
	"agent-console/internal/infrastructure/llm"
	"agent-console/internal/infrastructure/messaging"
	"agent-console/internal/infrastructure/persistence/postgres"
	"agent-console/internal/infrastructure/persistence/preference"
	"agent-console/internal/infrastructure/persistence/redis"
	"agent-console/internal/interfaces/http/handler"
	"agent-console/internal/interfaces/http/middleware"
	"agent-console/pkg/logger"
)

// ProvidePostgresClient 提供 PostgreSQL 客户端，按配置执行自动迁移
func ProvidePostgresClient(ctx context.Context, cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = client.Close()
	}
	if cfg.Database.Postgres.AutoMigrate {
		if err := client.AutoMigrate(ctx); err != nil {
			cleanup()
			return nil, nil, err
		}
		logger.Info(ctx, "database schema migrated")
	}
	return client, cleanup, nil
}

// ProvideRedisClient 提供 Redis 客户端
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideMessagingProducer 提供消息生产者
func ProvideMessagingProducer(redisClient *redis.Client, cfg *config.Config) *messaging.Producer {
	maxLen := cfg.Messaging.RedisStream.MaxLen
	if maxLen <= 0 {
		maxLen = 100000
	}
	return messaging.NewProducer(redisClient.Redis(), int64(maxLen))
}

// ProvidePreferenceStore 按配置选择偏好存储后端
func ProvidePreferenceStore(cfg *config.Config, redisClient *redis.Client) (repository.PreferenceStore, func(), error) {
	p := cfg.Preferences
	switch strings.ToLower(p.Backend) {
	case "", "redis":
		return redis.NewPreferenceStore(redisClient, p.KeyPrefix), func() {}, nil
	case "bolt":
		store, err := preference.OpenBoltStore(p.BoltPath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	case "memory":
		return preference.NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown preferences backend: %s", p.Backend)
	}
}

// ProvideFetchSequencer 按配置选择看板请求序号后端
func ProvideFetchSequencer(cfg *config.Config, redisClient *redis.Client) repository.FetchSequencer {
	if strings.EqualFold(cfg.Preferences.SequenceBackend, "memory") {
		return preference.NewMemorySequencer()
	}
	return redis.NewSequencer(redisClient, cfg.Preferences.KeyPrefix)
}

// ProvideSettingsService 提供业务参数服务（Redis 读穿缓存）
func ProvideSettingsService(
	cfg *config.Config,
	repo repository.SettingRepository,
	orgRepo repository.OrganizationRepository,
	cache *redis.Cache,
) *settings.Service {
	return settings.NewService(repo, orgRepo, cache, redis.SettingsKey, cfg.Cache.SettingsTTL, cfg.Analytics.DefaultParameters)
}

// ProvideColorAssigner 提供类别配色分配器
func ProvideColorAssigner(cfg *config.Config, store repository.PreferenceStore) *analytics.ColorAssigner {
	return analytics.NewColorAssigner(store, cfg.Analytics.Palette)
}

// ProvideAnalyticsConfig 提供看板配置
func ProvideAnalyticsConfig(cfg *config.Config) config.AnalyticsConfig {
	return cfg.Analytics
}

// ProvidePriceTable 提供模型价格表
func ProvidePriceTable(cfg *config.Config) *billing.PriceTable {
	return billing.NewPriceTable(cfg.Billing.Pricing)
}

// ProvideRecalculator 提供成本重算器
func ProvideRecalculator(cfg *config.Config, usage repository.UsageRepository, prices *billing.PriceTable) *billing.Recalculator {
	return billing.NewRecalculator(usage, prices, cfg.Billing.BatchSize)
}

// ProvideLLMRegistry 提供模型供应商能力表
func ProvideLLMRegistry(cfg *config.Config, recorder *billing.UsageRecorder) *llm.Registry {
	return llm.NewRegistry(cfg.Providers, recorder)
}

// ProvideHealthHandler 提供健康检查处理器，PostgreSQL 与 Redis 为就绪依赖
func ProvideHealthHandler(cfg *config.Config, pg *postgres.Client, rc *redis.Client) *handler.HealthHandler {
	return handler.NewHealthHandler(cfg.App.Version, map[string]handler.HealthChecker{
		"postgres": pg,
		"redis":    rc,
	})
}

// ProvideAuthConfig 提供认证配置
func ProvideAuthConfig(cfg *config.Config) middleware.AuthConfig {
	return middleware.AuthConfig{
		Secret:    cfg.Security.JWT.Secret,
		Issuer:    cfg.Security.JWT.Issuer,
		SkipPaths: middleware.DefaultSkipPaths,
		Enabled:   true,
	}
}

// ProvideJWTConfig 提供 JWT 配置
func ProvideJWTConfig(cfg *config.Config) config.JWTConfig {
	return cfg.Security.JWT
}

// ProvideRateLimitKeyFunc 提供限流键生成函数
func ProvideRateLimitKeyFunc(cfg *config.Config) middleware.KeyFunc {
	if cfg.Security.RateLimit.PerUser {
		return redis.BuildUserRateLimitKey
	}
	return redis.BuildRateLimitKey
}
