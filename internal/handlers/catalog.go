package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"photo-prints-backend/internal/models"
	"photo-prints-backend/internal/pricing"
)

// GetCatalog godoc
// @Summary     Product catalog
// @Description Returns the available print sizes, paper types, quantities, and the AED price table
// @Tags        catalog
// @Accept      json
// @Produce     json
// @Success     200 {object} models.CatalogResponse
// @Router      /catalog [get]
func GetCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, models.CatalogResponse{
		Sizes:      models.PrintSizes,
		Papers:     models.PaperTypes,
		Quantities: models.Quantities,
		Prices:     pricing.BasePrices(),
		GlossyFee:  pricing.GlossySurcharge,
		Delivery:   pricing.DeliveryFee,
		Currency:   "AED",
	})
}
