package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"courtside/internal/config"
	cronrunner "courtside/internal/cron"
	"courtside/internal/repository"
	"courtside/internal/settlement"
)

// Scheduler registers the periodic jobs: the settlement pass over pending
// bets and the notification retention prune.
type Scheduler struct {
	Engine *settlement.Engine
	Repo   repository.Repository
	Logger *zap.Logger
	Config config.Config
}

// Register wires both jobs onto the runner. Schedules come from config;
// neither job is registered when its spec is empty.
func (s *Scheduler) Register(runner *cronrunner.Runner) error {
	if spec := s.Config.Cron.SettlementPass; spec != "" {
		if _, err := runner.Add(spec, s.settlementPass); err != nil {
			return err
		}
	}
	if spec := s.Config.Cron.NotificationPrune; spec != "" {
		if _, err := runner.Add(spec, s.notificationPrune); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) settlementPass(ctx context.Context) {
	if _, err := s.Engine.RunPass(ctx); err != nil && s.Logger != nil {
		s.Logger.Error("settlement pass failed", zap.Error(err))
	}
}

func (s *Scheduler) notificationPrune(ctx context.Context) {
	retention := s.Config.Alerts.RetentionPeriod
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	cutoff := time.Now().UTC().Add(-retention)
	deleted, err := s.Repo.DeleteNotificationsBefore(ctx, cutoff)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Error("notification prune failed", zap.Error(err))
		}
		return
	}
	if deleted > 0 && s.Logger != nil {
		s.Logger.Info("notifications pruned", zap.Int64("deleted", deleted))
	}
}
