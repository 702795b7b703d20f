package cron

import (
	"context"
	"time"

	"billstack/internal/service"

	"github.com/google/wire"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var ProviderSet = wire.NewSet(NewCron)

type Cron struct {
	logger         *zap.Logger
	server         *cron.Cron
	tenantsService *service.TenantsService
}

// NewCron .
func NewCron(logger *zap.Logger, tenantsService *service.TenantsService) *Cron {
	server := cron.New(
		cron.WithSeconds(),
	)

	return &Cron{
		logger:         logger,
		server:         server,
		tenantsService: tenantsService,
	}
}

func (c *Cron) Run() error {
	// 每月 1 號 00:00:00 全租戶發票用量歸零
	if _, err := c.server.AddFunc("0 0 0 1 * *", c.resetMonthlyUsage); err != nil {
		return err
	}

	c.server.Start()
	return nil
}

func (c *Cron) Stop(ctx context.Context) error {
	c.server.Stop()
	return nil
}

func (c *Cron) resetMonthlyUsage() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := c.tenantsService.ResetMonthlyUsage(ctx); err != nil {
		c.logger.Error("monthly usage reset job failed", zap.Error(err))
	}
}
