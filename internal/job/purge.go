package job

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"guidance-planner/config"
)

// SlotPurger 硬删除过期的软删除时间块
type SlotPurger interface {
	PurgeDeleted(ctx context.Context, before time.Time) (int64, error)
}

// PurgeJob 定期清理软删除超过保留天数的时间块
type PurgeJob struct {
	purger    SlotPurger
	retention time.Duration
	timeout   time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewPurgeJob 创建清理任务
func NewPurgeJob(purger SlotPurger, retentionDays int, logger *zap.Logger) *PurgeJob {
	return &PurgeJob{
		purger:    purger,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		timeout:   4 * time.Minute,
		logger:    logger,
		now:       time.Now,
	}
}

// Run 执行一次清理，返回删除条数
func (j *PurgeJob) Run(ctx context.Context) (int64, error) {
	before := j.now().Add(-j.retention)
	n, err := j.purger.PurgeDeleted(ctx, before)
	if err != nil {
		j.logger.Error("清理软删除时间块失败", zap.Time("before", before), zap.Error(err))
		return 0, err
	}
	j.logger.Info("清理软删除时间块完成", zap.Time("before", before), zap.Int64("purged", n))
	return n, nil
}

// Start 按 cron 表达式注册任务并启动调度器；调用方负责 Stop
func Start(cfg *config.JobsConfig, purger SlotPurger, logger *zap.Logger) (*cron.Cron, error) {
	if cfg.RetentionDays <= 0 {
		return nil, fmt.Errorf("jobs.retention_days 必须为正数: %d", cfg.RetentionDays)
	}

	j := NewPurgeJob(purger, cfg.RetentionDays, logger)
	c := cron.New(cron.WithChain(
		cron.Recover(cron.PrintfLogger(zap.NewStdLog(logger))),
		cron.SkipIfStillRunning(cron.PrintfLogger(zap.NewStdLog(logger))),
	))

	if _, err := c.AddFunc(cfg.PurgeCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
		defer cancel()
		_, _ = j.Run(ctx)
	}); err != nil {
		return nil, fmt.Errorf("注册清理任务失败: %w", err)
	}

	logger.Info("清理任务已启动",
		zap.String("schedule", cfg.PurgeCron),
		zap.Int("retention_days", cfg.RetentionDays),
	)
	c.Start()
	return c, nil
}
