package wire

import (
	"agent-console/internal/application/account"
	"agent-console/internal/application/billing"
	"agent-console/internal/application/settings"
	"agent-console/internal/infrastructure/persistence/postgres"
	"agent-console/internal/infrastructure/persistence/redis"
)

// BootstrapLayer 引导命令依赖容器
type BootstrapLayer struct {
	TxManager  *postgres.TxManager
	OrgContext *postgres.OrgContext
	Accounts   *account.Service
	Settings   *settings.Service
}

// WorkerLayer 异步任务执行器依赖容器
type WorkerLayer struct {
	RedisClient  *redis.Client
	TxManager    *postgres.TxManager
	OrgContext   *postgres.OrgContext
	Recalculator *billing.Recalculator
}
