package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	handler "invoice-matching-backend/internal/handlers"
	"invoice-matching-backend/internal/repository"
	"invoice-matching-backend/internal/services/payment"
	"invoice-matching-backend/internal/services/threeway"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB) {
	invoiceRepo := repository.NewInvoiceRepository(db)
	accountRepo := repository.NewBankAccountRepository(db)
	transactionRepo := repository.NewBankTransactionRepository(db)
	orderRepo := repository.NewPurchaseOrderRepository(db)
	noteRepo := repository.NewDeliveryNoteRepository(db)
	matchRepo := repository.NewMatchRepository(db)

	paymentMatcher := payment.NewMatcher(invoiceRepo, accountRepo, transactionRepo, matchRepo)
	documentMatcher := threeway.NewMatcher(invoiceRepo, orderRepo, noteRepo, matchRepo)

	matchingHandler := handler.NewMatchingHandler(paymentMatcher, documentMatcher, matchRepo)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Matching operations
	match := api.Group("/matching")
	match.POST("/invoices/:id/payment", matchingHandler.MatchInvoicePayment)
	match.POST("/companies/:id/three-way", matchingHandler.RunThreeWayMatch)

	// Read endpoints over match results
	companies := api.Group("/companies")
	{
		companies.GET("/:id/three-way-matches", matchingHandler.ListThreeWayMatches)
		companies.GET("/:id/anomalies", matchingHandler.ListAnomalies)
	}
}
