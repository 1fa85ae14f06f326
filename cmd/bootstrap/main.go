// Package main 初始化引导：创建默认组织与管理员，可选写入默认业务参数
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"agent-console/internal/application/account"
	"agent-console/internal/config"
	"agent-console/internal/domain/entity"
	"agent-console/internal/wire"
	"agent-console/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	fmt.Println("Starting system bootstrap...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)

	b := cfg.Bootstrap
	if b.AdminEmail == "" || b.AdminPassword == "" {
		log.Fatalf("bootstrap.admin_email and bootstrap.admin_password are required")
	}

	ctx := context.Background()
	layer, cleanup, err := wire.InitializeBootstrap(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize data layer: %v", err)
	}
	defer cleanup()

	admin, created, err := layer.Accounts.EnsureAdmin(ctx, account.EnsureAdminInput{
		OrgName:  b.OrgName,
		Email:    b.AdminEmail,
		Password: b.AdminPassword,
		Name:     b.AdminName,
	})
	if err != nil {
		log.Fatalf("failed to ensure admin: %v", err)
	}
	if created {
		fmt.Printf("Admin user created: %s (org %s)\n", admin.Email, admin.OrgID)
	} else {
		fmt.Printf("Admin user already exists: %s (org %s)\n", admin.Email, admin.OrgID)
	}

	if b.SeedSettings {
		err := layer.TxManager.WithTransaction(ctx, func(txCtx context.Context) error {
			if err := layer.OrgContext.SetOrg(txCtx, admin.OrgID); err != nil {
				return err
			}
			res := layer.Settings.Bootstrap(txCtx, admin.OrgID, entity.UserRoleAdmin)
			if res.Seeded {
				fmt.Println("Default business settings seeded")
			} else {
				fmt.Printf("Settings seed skipped: %s\n", res.Reason)
			}
			return nil
		})
		if err != nil {
			log.Fatalf("failed to seed settings: %v", err)
		}
	}

	fmt.Println("Bootstrap completed.")
}
