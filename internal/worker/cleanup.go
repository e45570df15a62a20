package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// CompletedDeleter borra en bloque las tareas completadas.
type CompletedDeleter interface {
	CleanupCompleted(ctx context.Context) (int64, error)
}

// Cleaner borra tareas completadas en un intervalo fijo. No coordina con
// mutaciones en vuelo; la atomicidad por fila del storage es suficiente.
type Cleaner struct {
	logger   *zap.Logger
	tasks    CompletedDeleter
	interval time.Duration
}

func NewCleaner(logger *zap.Logger, tasks CompletedDeleter, interval time.Duration) *Cleaner {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Cleaner{
		logger:   logger,
		tasks:    tasks,
		interval: interval,
	}
}

// Run ejecuta el ciclo hasta que el contexto se cancele.
func (c *Cleaner) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.runOnce(ctx)
		}
	}
}

func (c *Cleaner) runOnce(ctx context.Context) {
	count, err := c.tasks.CleanupCompleted(ctx)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("cleanup completed tasks failed", zap.Error(err))
		}
		return
	}
	if c.logger != nil {
		c.logger.Info("deleted completed tasks", zap.Int64("count", count))
	}
}
