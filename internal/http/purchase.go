package http

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/papersbook/storefront/internal/entities"
	"github.com/papersbook/storefront/internal/payment"
	"github.com/papersbook/storefront/internal/settlement"
)

// SalesStore defines database operations needed to run a checkout.
type SalesStore interface {
	CreateSale(userID, authorID, bookID uint, priceCents int64, method string) (*entities.Sale, error)
	GetSaleByID(id uint) (*entities.Sale, error)
	GetPendingSaleForPurchase(userID, bookID uint) (*entities.Sale, error)
	GetSalesForUser(userID uint) ([]entities.Sale, error)
	CancelSale(id uint) error
}

type PurchaseController struct {
	books         CatalogStore
	library       LibraryStore
	sales         SalesStore
	payments      *payment.Client
	settlements   *settlement.Service
	publicBaseURL string
}

func NewPurchaseController(
	books CatalogStore,
	library LibraryStore,
	sales SalesStore,
	payments *payment.Client,
	settlements *settlement.Service,
	publicBaseURL string,
) *PurchaseController {
	return &PurchaseController{
		books:         books,
		library:       library,
		sales:         sales,
		payments:      payments,
		settlements:   settlements,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// Purchase starts a checkout for a book. Free books are granted on the
// spot, paid books get a pending sale and a provider checkout link.
// POST /api/books/:id/purchase
func (pc *PurchaseController) Purchase(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := GetUserID(c)

	book, err := pc.books.GetBookByID(bookID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "book")
		return
	}
	if err != nil {
		respondInternalError(c, err, "load book for purchase")
		return
	}

	owned, err := pc.library.HasEntitlement(userID, bookID)
	if err != nil {
		respondInternalError(c, err, "check ownership")
		return
	}
	if owned {
		respondError(c, http.StatusConflict, "book already owned")
		return
	}

	// Free books skip the payment provider entirely.
	if book.IsFree() {
		if err := pc.settlements.GrantFree(c.Request.Context(), userID, bookID); err != nil {
			respondInternalError(c, err, "grant free book")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "book added to library",
			"free":    true,
			"book_id": bookID,
		})
		return
	}

	// The provider bills whole currency units, prices are stored in cents.
	if book.PriceCents%100 != 0 {
		respondError(c, http.StatusUnprocessableEntity, "book price is not a whole currency unit")
		return
	}

	sale, err := pc.sales.CreateSale(userID, book.AuthorID, bookID, book.PriceCents, entities.SaleMethodMobileMoney)
	if err != nil {
		respondInternalError(c, err, "create sale")
		return
	}

	checkoutURL, err := pc.payments.CreateLink(c.Request.Context(), payment.LinkRequest{
		AmountCents: book.PriceCents,
		ProductCode: fmt.Sprintf("book-%d", book.ID),
		ProductName: book.Title,
		ImageURL:    book.CoverURL,
		SuccessURL:  fmt.Sprintf("%s/success?saleId=%d", pc.publicBaseURL, sale.ID),
		FailureURL:  fmt.Sprintf("%s/echec?saleId=%d", pc.publicBaseURL, sale.ID),
	})
	if err != nil {
		// The checkout never started, release the pending sale.
		if cancelErr := pc.sales.CancelSale(sale.ID); cancelErr != nil {
			log.Printf("Failed to cancel sale %d after provider error: %v", sale.ID, cancelErr)
		}
		log.Printf("Payment link creation failed for sale %d: %v", sale.ID, err)
		respondError(c, http.StatusBadGateway, "payment provider unavailable")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sale_id":      sale.ID,
		"checkout_url": checkoutURL,
	})
}
