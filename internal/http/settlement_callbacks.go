package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/papersbook/storefront/internal/database/sales"
	"github.com/papersbook/storefront/internal/entities"
	"github.com/papersbook/storefront/internal/settlement"
	"github.com/papersbook/storefront/internal/tasks"
)

// SettlementController handles the redirect callbacks the payment provider
// sends the buyer back through after checkout.
type SettlementController struct {
	sales       SalesStore
	settlements *settlement.Service
	taskClient  *tasks.Client
}

func NewSettlementController(salesStore SalesStore, settlements *settlement.Service, taskClient *tasks.Client) *SettlementController {
	return &SettlementController{
		sales:       salesStore,
		settlements: settlements,
		taskClient:  taskClient,
	}
}

// resolveSale finds the sale a callback refers to. New checkout links carry
// saleId directly, links issued before that carry the bookId+userId pair,
// which maps to the buyer's most recent pending sale for that book.
func (sc *SettlementController) resolveSale(c *gin.Context) (*entities.Sale, bool) {
	if c.Query("saleId") != "" {
		saleID, ok := parseQueryID(c, "saleId")
		if !ok {
			return nil, false
		}
		sale, err := sc.sales.GetSaleByID(saleID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "sale")
			return nil, false
		}
		if err != nil {
			respondInternalError(c, err, "load sale")
			return nil, false
		}
		return sale, true
	}

	bookID, ok := parseQueryID(c, "bookId")
	if !ok {
		return nil, false
	}
	userID, ok := parseQueryID(c, "userId")
	if !ok {
		return nil, false
	}

	sale, err := sc.sales.GetPendingSaleForPurchase(userID, bookID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "pending sale")
		return nil, false
	}
	if err != nil {
		respondInternalError(c, err, "resolve pending sale")
		return nil, false
	}
	return sale, true
}

// Success settles the sale the provider reports as paid.
// GET /success?saleId= (legacy: ?bookId=&userId=)
func (sc *SettlementController) Success(c *gin.Context) {
	sale, ok := sc.resolveSale(c)
	if !ok {
		return
	}

	result, err := sc.settlements.Settle(c.Request.Context(), sale.ID)
	if errors.Is(err, settlement.ErrSaleCancelled) {
		respondError(c, http.StatusConflict, "sale was cancelled")
		return
	}
	if errors.Is(err, settlement.ErrSaleNotFound) {
		respondNotFound(c, "sale")
		return
	}
	if err != nil {
		// The sale stays pending, hand it to the retry queue when we have one.
		log.Printf("Settlement of sale %d failed, queueing retry: %v", sale.ID, err)
		if sc.taskClient != nil {
			if _, queueErr := sc.taskClient.Add(tasks.SettleSaleTask{SaleID: sale.ID}).Save(); queueErr != nil {
				respondInternalError(c, queueErr, "queue settlement retry")
				return
			}
			c.JSON(http.StatusAccepted, gin.H{
				"message": "payment received, settlement in progress",
				"sale_id": sale.ID,
			})
			return
		}
		respondInternalError(c, err, "settle sale")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "purchase complete",
		"sale_id":         result.SaleID,
		"book_id":         result.BookID,
		"already_settled": result.AlreadySettled,
	})
}

// Failure cancels the pending sale after an abandoned or failed checkout.
// GET /echec?saleId= (legacy: ?bookId=&userId=)
func (sc *SettlementController) Failure(c *gin.Context) {
	sale, ok := sc.resolveSale(c)
	if !ok {
		return
	}

	if err := sc.sales.CancelSale(sale.ID); err != nil {
		if errors.Is(err, sales.ErrSaleNotPending) {
			respondError(c, http.StatusConflict, "sale already finalized")
			return
		}
		respondInternalError(c, err, "cancel sale")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "purchase cancelled",
		"sale_id": sale.ID,
	})
}
