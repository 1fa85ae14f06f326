package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"agent-console/internal/domain/entity"
	"agent-console/internal/domain/repository"
)

// dryRunDB 只生成 SQL，不连接数据库
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=agent dbname=agent_console sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func TestApplyUsageQuery_KeepsNewestRowsWhenLimited(t *testing.T) {
	db := dryRunDB(t)
	to := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	q := repository.UsageQuery{
		OrgID:   "org-1",
		From:    to.AddDate(0, 0, -30),
		To:      &to,
		AgentID: "a1",
		Limit:   50001,
	}

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var records []*entity.UsageRecord
		return applyUsageQuery(tx.Model(&entity.UsageRecord{}), q).Find(&records)
	})
	assert.Contains(t, sql, "agent_id = 'a1'")
	assert.Contains(t, sql, "ORDER BY created_at DESC LIMIT 50001")
}

func TestRecalcQuery_ProviderIgnoresCase(t *testing.T) {
	db := dryRunDB(t)

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var records []*entity.UsageRecord
		return recalcQuery(tx.Model(&entity.UsageRecord{}), "org-1", "OpenAI", "r-10", 500).Find(&records)
	})
	assert.Contains(t, sql, "LOWER(provider) = LOWER('OpenAI')")
	assert.Contains(t, sql, "id > 'r-10'")
	assert.Contains(t, sql, "ORDER BY id ASC LIMIT 500")

	sql = db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var records []*entity.UsageRecord
		return recalcQuery(tx.Model(&entity.UsageRecord{}), "org-1", "", "", 500).Find(&records)
	})
	assert.NotContains(t, sql, "provider")
}
