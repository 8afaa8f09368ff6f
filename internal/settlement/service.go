// Package settlement reconciles purchases after the payment provider
// reports success.
//
// Settling a sale grants the buyer's entitlement, credits the author's
// balance together with a matching ledger entry, records the platform's
// share and marks the sale settled, all inside a single database
// transaction keyed on the sale's idempotency key. Replayed callbacks
// (back button, duplicate webhooks, two tabs racing on the same sale)
// observe the settled state or the existing ledger entry and become
// no-ops instead of double credits.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/papersbook/storefront/internal/database/authors"
	"github.com/papersbook/storefront/internal/entities"
)

var (
	ErrSaleNotFound  = errors.New("sale not found")
	ErrSaleCancelled = errors.New("sale was cancelled")
)

// Auditor persists settlement events for support escalations.
type Auditor interface {
	SaveJSON(data any) (string, error)
}

// Result describes the outcome of settling one sale.
type Result struct {
	SaleID           uint   `json:"sale_id"`
	BookID           uint   `json:"book_id"`
	UserID           uint   `json:"user_id"`
	AuthorID         uint   `json:"author_id"`
	AmountCents      int64  `json:"amount_cents"`
	AuthorNetCents   int64  `json:"author_net_cents"`
	PlatformFeeCents int64  `json:"platform_fee_cents"`
	AlreadySettled   bool   `json:"already_settled"`
	IdempotencyKey   string `json:"idempotency_key"`
}

// Service performs purchase reconciliation.
type Service struct {
	db             *gorm.DB
	authorsRepo    *authors.Repository
	platformFeeBps int
	auditor        Auditor
}

// NewService creates a settlement service. platformFeeBps is the
// platform's share in basis points; 0 disables the split and credits the
// full price to the author. auditor may be nil.
func NewService(db *gorm.DB, authorsRepo *authors.Repository, platformFeeBps int, auditor Auditor) *Service {
	return &Service{
		db:             db,
		authorsRepo:    authorsRepo,
		platformFeeBps: platformFeeBps,
		auditor:        auditor,
	}
}

// Settle reconciles a single sale exactly once. Settling an
// already-settled sale returns a Result with AlreadySettled set and makes
// no further writes. Any failure rolls the whole transaction back and
// leaves the sale pending, so the callback can be retried.
func (s *Service) Settle(ctx context.Context, saleID uint) (*Result, error) {
	var result Result

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sale entities.Sale
		if err := tx.First(&sale, saleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSaleNotFound
			}
			return fmt.Errorf("failed to load sale: %w", err)
		}

		result = Result{
			SaleID:         sale.ID,
			BookID:         sale.BookID,
			UserID:         sale.UserID,
			AuthorID:       sale.AuthorID,
			AmountCents:    sale.PriceCents,
			IdempotencyKey: sale.IdempotencyKey,
		}

		switch sale.Status {
		case entities.SaleStatusSettled:
			result.AlreadySettled = true
			return nil
		case entities.SaleStatusCancelled:
			return ErrSaleCancelled
		}

		// Ledger guard: a credit recorded under this key means a previous
		// settlement got past the status check. Treat it as done.
		credited, err := hasLedgerEntry(tx, sale.IdempotencyKey)
		if err != nil {
			return err
		}
		if credited {
			result.AlreadySettled = true
			return markSettled(tx, &sale)
		}

		// Grant entitlement with set semantics
		saleRef := sale.ID
		ent := entities.Entitlement{UserID: sale.UserID, BookID: sale.BookID, SaleID: &saleRef}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "book_id"}},
			DoNothing: true,
		}).Create(&ent).Error; err != nil {
			return fmt.Errorf("failed to grant entitlement: %w", err)
		}

		// Split the price and credit the author
		fee := sale.PriceCents * int64(s.platformFeeBps) / 10000
		net := sale.PriceCents - fee
		result.PlatformFeeCents = fee
		result.AuthorNetCents = net

		if _, err := s.authorsRepo.CreditTx(tx, sale.AuthorID, &sale, net); err != nil {
			return fmt.Errorf("failed to credit author: %w", err)
		}

		if fee > 0 {
			earning := entities.PlatformEarning{SaleID: sale.ID, AmountCents: fee}
			if err := tx.Create(&earning).Error; err != nil {
				return fmt.Errorf("failed to record platform earning: %w", err)
			}
		}

		return markSettled(tx, &sale)
	})
	if err != nil {
		return nil, err
	}

	if !result.AlreadySettled {
		s.audit("settlement.completed", result)
	}

	return &result, nil
}

// GrantFree entitles a user to a zero-priced book without involving the
// payment provider or the ledger. Repeated grants are no-ops.
func (s *Service) GrantFree(ctx context.Context, userID, bookID uint) error {
	ent := entities.Entitlement{UserID: userID, BookID: bookID}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "book_id"}},
		DoNothing: true,
	}).Create(&ent).Error
	if err != nil {
		return fmt.Errorf("failed to grant free book: %w", err)
	}
	return nil
}

// ListPending returns the pending sales created before the cutoff, oldest
// first.
func (s *Service) ListPending(ctx context.Context, before time.Time) ([]entities.Sale, error) {
	var pending []entities.Sale
	err := s.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", entities.SaleStatusPending, before).
		Order("created_at ASC").
		Find(&pending).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending sales: %w", err)
	}
	return pending, nil
}

// SettlePending reconciles every pending sale created before the cutoff.
// Used by the sweep scheduler and the settle-pending CLI to catch sales
// whose browser callback never arrived. Individual failures are logged
// and do not stop the sweep.
func (s *Service) SettlePending(ctx context.Context, before time.Time) (settled, failed int) {
	pending, err := s.ListPending(ctx, before)
	if err != nil {
		log.Printf("Settlement sweep: failed to list pending sales: %v", err)
		return 0, 0
	}

	for _, sale := range pending {
		if ctx.Err() != nil {
			return settled, failed
		}
		result, err := s.Settle(ctx, sale.ID)
		if err != nil {
			failed++
			log.Printf("Settlement sweep: sale %d failed: %v", sale.ID, err)
			continue
		}
		if !result.AlreadySettled {
			settled++
		}
	}

	return settled, failed
}

func (s *Service) audit(event string, result Result) {
	if s.auditor == nil {
		return
	}
	record := struct {
		Event      string    `json:"event"`
		OccurredAt time.Time `json:"occurred_at"`
		Result     Result    `json:"result"`
	}{
		Event:      event,
		OccurredAt: time.Now(),
		Result:     result,
	}
	if _, err := s.auditor.SaveJSON(record); err != nil {
		log.Printf("Failed to write settlement audit event: %v", err)
	}
}

func hasLedgerEntry(tx *gorm.DB, idempotencyKey string) (bool, error) {
	var entry entities.AuthorTransaction
	err := tx.Where("idempotency_key = ?", idempotencyKey).First(&entry).Error
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check ledger: %w", err)
}

func markSettled(tx *gorm.DB, sale *entities.Sale) error {
	now := time.Now()
	result := tx.Model(&entities.Sale{}).
		Where("id = ? AND status = ?", sale.ID, entities.SaleStatusPending).
		Updates(map[string]any{
			"status":     entities.SaleStatusSettled,
			"settled_at": now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark sale settled: %w", result.Error)
	}
	return nil
}
