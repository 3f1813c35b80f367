package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vitalpath/vitalpath/internal/providers/pdf"
)

func (s *Server) ListPurchases(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	records, err := s.purchaseSvc.ListByUser(c.Request.Context(), identity.UserID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": records})
}

func (s *Server) GetMe(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	user, err := s.userSvc.GetByID(c.Request.Context(), identity.UserID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": user})
}

func (s *Server) GetPurchaseReceipt(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	record, err := s.purchaseSvc.GetByID(c.Request.Context(), identity.UserID, strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	reader, err := s.receipts.GenerateReceipt(c.Request.Context(), pdf.ReceiptData{
		ReceiptNumber: record.TransactionID,
		DatePaid:      record.PurchaseDate.Format("2006-01-02"),
		BilledToName:  identity.Name,
		BilledToEmail: identity.Email,
		ItemTitle:     record.ItemTitle,
		ItemType:      string(record.Type),
		Amount:        formatAmount(record.AmountMinor, record.Currency),
	})
	if err != nil || reader == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	doc, err := io.ReadAll(reader)
	if err != nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=receipt-%s.pdf", record.ID.String()))
	c.Data(http.StatusOK, "application/pdf", doc)
}

func formatAmount(minor int64, currency string) string {
	return fmt.Sprintf("%d.%02d %s", minor/100, minor%100, strings.ToUpper(currency))
}
