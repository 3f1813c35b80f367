package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	checkoutdomain "github.com/vitalpath/vitalpath/internal/checkout/domain"
	confirmationdomain "github.com/vitalpath/vitalpath/internal/confirmation/domain"
)

type initiateCheckoutRequest struct {
	ProductID  string `json:"product_id"`
	GuestEmail string `json:"guest_email"`
}

func (s *Server) InitiateCheckout(c *gin.Context) {
	var req initiateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if strings.TrimSpace(req.ProductID) == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	initiate := checkoutdomain.InitiateRequest{
		ProductID:  strings.TrimSpace(req.ProductID),
		VisitorID:  visitorFromContext(c),
		GuestEmail: strings.TrimSpace(req.GuestEmail),
	}
	if identity, ok := identityFromContext(c); ok {
		initiate.UserID = identity.UserID
		initiate.UserEmail = identity.Email
	}

	resp, err := s.checkoutSvc.Initiate(c.Request.Context(), initiate)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ConfirmCheckout(c *gin.Context) {
	sessionRef := strings.TrimSpace(c.Query("session_id"))

	result, err := s.confirmationSvc.Confirm(c.Request.Context(), confirmationdomain.ConfirmRequest{
		SessionRef: sessionRef,
		VisitorID:  visitorFromContext(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}
