package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/concave-dev/orderpace/internal/logging"
	"github.com/concave-dev/orderpace/internal/shopify"
	"github.com/gin-gonic/gin"
)

// VariantLookup resolves a product page link to a variant id.
type VariantLookup interface {
	LookupVariantID(ctx context.Context, productURL string) (*shopify.Variant, error)
}

// LookupVariant resolves a product link so an operator can fill in the
// variant id and store of a submission.
//
// GET /api/v1/variants?product_url=https://example.myshopify.com/products/x
func LookupVariant(resolver VariantLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		productURL := strings.TrimSpace(c.Query("product_url"))
		if productURL == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Missing product URL",
				"details": "product_url query parameter is required",
			})
			return
		}
		if _, err := shopify.StoreFromProductURL(productURL); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid product URL",
				"details": err.Error(),
			})
			return
		}

		variant, err := resolver.LookupVariantID(c.Request.Context(), productURL)
		if err != nil {
			logging.Warn("Variant lookup for %s failed: %v", productURL, err)

			status := http.StatusBadGateway
			if errors.Is(err, shopify.ErrNoVariants) {
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{
				"error":   "Failed to fetch variant",
				"details": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, variant)
	}
}
