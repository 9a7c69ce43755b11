// Package webhook exposes the async notification endpoint for providers that
// declare webhook support. A notification carries the transaction hash the
// gateway put on the notify URL; the handler resolves the pending transaction
// and drives the matching completion operation.
package webhook

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jmauzyk/commerce-omnipay/internal/commerce"
	"github.com/jmauzyk/commerce-omnipay/internal/gateway"
	"github.com/jmauzyk/commerce-omnipay/internal/request"
)

// TransactionSource resolves pending transactions by hash. Implemented by the
// hosting application's transaction store.
type TransactionSource interface {
	TransactionByHash(ctx context.Context, hash string) (*commerce.Transaction, error)
}

// Handler serves provider notifications.
type Handler struct {
	gw   *gateway.Gateway
	txns TransactionSource
}

// NewHandler creates a Handler.
func NewHandler(gw *gateway.Gateway, txns TransactionSource) *Handler {
	return &Handler{gw: gw, txns: txns}
}

// Register mounts the notification route.
func (h *Handler) Register(r gin.IRouter) {
	r.POST("/webhook", h.handleNotification)
}

type notificationResponse struct {
	Success   bool   `json:"success"`
	Reference string `json:"reference,omitempty"`
	Message   string `json:"message,omitempty"`
}

func (h *Handler) handleNotification(c *gin.Context) {
	hash := c.Query("commerceTransactionHash")
	if hash == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "commerceTransactionHash is required"})
		return
	}

	ctx := request.WithClientIP(c.Request.Context(), c.ClientIP())

	txn, err := h.txns.TransactionByHash(ctx, hash)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
		return
	}

	var result *gateway.Result
	switch txn.Type {
	case commerce.TypeAuthorize, commerce.TypeCompleteAuthorize:
		result, err = h.gw.CompleteAuthorize(ctx, txn)
	case commerce.TypePurchase, commerce.TypeCompletePurchase:
		result, err = h.gw.CompletePurchase(ctx, txn)
	default:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "transaction type cannot be completed via webhook"})
		return
	}

	if err != nil {
		log.Printf("webhook: completing transaction %s: %v", hash, err)

		var unsupported *gateway.UnsupportedOperationError
		var cancelled *gateway.RequestCancelledError
		switch {
		case errors.As(err, &unsupported):
			c.JSON(http.StatusNotImplemented, gin.H{"error": err.Error()})
		case errors.As(err, &cancelled):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": "provider error"})
		}
		return
	}

	c.JSON(http.StatusOK, notificationResponse{
		Success:   result.Success,
		Reference: result.Reference,
		Message:   result.Message,
	})
}
