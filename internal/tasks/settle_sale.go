package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/papersbook/storefront/internal/settlement"
)

// SettleSaleTask settles a single pending sale. It is enqueued when the
// synchronous settlement attempt during a payment callback fails, so the
// purchase is retried in the background instead of being lost.
type SettleSaleTask struct {
	SaleID uint `json:"sale_id"`
}

// Config returns the queue configuration for sale settlement tasks.
func (t SettleSaleTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "settle_sale",
		MaxAttempts: 5,
		Backoff:     30 * time.Second,
		Timeout:     1 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   7 * 24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// SettleSaleProcessor creates a processor function for SettleSaleTask.
func SettleSaleProcessor(svc *settlement.Service) backlite.QueueProcessor[SettleSaleTask] {
	return func(ctx context.Context, task SettleSaleTask) error {
		if svc == nil {
			return fmt.Errorf("settlement service not configured")
		}

		result, err := svc.Settle(ctx, task.SaleID)
		if err != nil {
			// A cancelled sale will never become settleable, retrying is pointless.
			if errors.Is(err, settlement.ErrSaleCancelled) || errors.Is(err, settlement.ErrSaleNotFound) {
				log.Printf("[TASK] Dropping settlement of sale %d: %v", task.SaleID, err)
				return nil
			}
			return fmt.Errorf("settle sale %d: %w", task.SaleID, err)
		}

		if result.AlreadySettled {
			log.Printf("[TASK] Sale %d already settled, nothing to do", task.SaleID)
		} else {
			log.Printf("[TASK] Settled sale %d: book %d to user %d, author %d credited %d cents",
				task.SaleID, result.BookID, result.UserID, result.AuthorID, result.AuthorNetCents)
		}

		return nil
	}
}

// NewSettleSaleQueue creates a backlite queue for sale settlement tasks.
func NewSettleSaleQueue(svc *settlement.Service) backlite.Queue {
	return backlite.NewQueue(SettleSaleProcessor(svc))
}
