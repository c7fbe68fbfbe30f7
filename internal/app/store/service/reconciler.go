package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"hazelmart/internal/app/store/repository"
	"hazelmart/pkg/logger"
	"hazelmart/pkg/metrics"
)

// RatingReconciler - фоновый обход каталога, пересчитывающий агрегат
// рейтинга каждого товара. Пересчёт идемпотентен, поэтому обход
// безопасно выправляет агрегаты, пропущенные из-за частичных отказов
// (запись отзыва прошла, пересчёт - нет)
type RatingReconciler struct {
	productRepo repository.ProductRepository
	recomputer  RatingRecomputer
	schedule    string
	cron        *cron.Cron
}

func NewRatingReconciler(
	productRepo repository.ProductRepository,
	recomputer RatingRecomputer,
	schedule string,
) *RatingReconciler {
	return &RatingReconciler{
		productRepo: productRepo,
		recomputer:  recomputer,
		schedule:    schedule,
	}
}

// Start запускает периодический обход по cron-расписанию
func (r *RatingReconciler) Start() error {
	r.cron = cron.New()

	if _, err := r.cron.AddFunc(r.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if err := r.ReconcileOnce(ctx); err != nil {
			logger.Error().Err(err).Msg("rating reconciliation sweep failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule rating reconciler: %w", err)
	}

	r.cron.Start()
	logger.Info().Str("schedule", r.schedule).Msg("rating reconciler started")

	return nil
}

// Stop останавливает планировщик и дожидается текущего обхода
func (r *RatingReconciler) Stop() {
	if r.cron != nil {
		<-r.cron.Stop().Done()
	}
}

// ReconcileOnce пересчитывает агрегат каждого товара каталога
// Отказ на одном товаре не прерывает обход остальных
func (r *RatingReconciler) ReconcileOnce(ctx context.Context) error {
	ids, err := r.productRepo.GetAllIDs(ctx)
	if err != nil {
		metrics.ReconcilerRuns.WithLabelValues("failed").Inc()
		return fmt.Errorf("failed to list products: %w", err)
	}

	var failures int
	for _, id := range ids {
		if err := r.recomputer.RecomputeRating(ctx, id); err != nil {
			failures++
			logger.Warn().Err(err).Str("product_id", id).Msg("failed to reconcile product rating")
		}
	}

	if failures > 0 {
		metrics.ReconcilerRuns.WithLabelValues("failed").Inc()
		return fmt.Errorf("reconciliation finished with %d failures out of %d products", failures, len(ids))
	}

	metrics.ReconcilerRuns.WithLabelValues("success").Inc()
	logger.Info().Int("products", len(ids)).Msg("rating reconciliation sweep finished")

	return nil
}
