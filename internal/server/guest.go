package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	reconciledomain "github.com/vitalpath/vitalpath/internal/reconcile/domain"
)

func (s *Server) GetGuestSession(c *gin.Context) {
	session, err := s.guestSvc.GetCurrent(c.Request.Context(), visitorFromContext(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// No current session is a normal state, not an error.
	c.JSON(http.StatusOK, gin.H{"data": session})
}

func (s *Server) GetGuestHistory(c *gin.Context) {
	history, err := s.guestSvc.History(c.Request.Context(), visitorFromContext(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": history})
}

type reconcileRequest struct {
	DisplayName string `json:"display_name"`
}

func (s *Server) ReconcileGuest(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req reconcileRequest
	_ = c.ShouldBindJSON(&req)

	result, err := s.reconcileSvc.Reconcile(c.Request.Context(), reconciledomain.ReconcileRequest{
		VisitorID:   visitorFromContext(c),
		UserID:      identity.UserID,
		Email:       identity.Email,
		DisplayName: strings.TrimSpace(req.DisplayName),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}
