package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PostCheckout handles POST /api/checkout. Each call re-prices the basket.
func (h *Handler) PostCheckout(c *gin.Context) {
	snap, err := h.checkout.Checkout(c.Request.Context(), h.session.Basket())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, snap)
}

// GetReceipt handles GET /api/receipt.
func (h *Handler) GetReceipt(c *gin.Context) {
	r, err := h.checkout.Receipt(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load receipt"})
		return
	}
	c.JSON(http.StatusOK, r)
}
