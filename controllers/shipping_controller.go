package controllers

import (
	"errors"

	"storefront/services"

	"github.com/gin-gonic/gin"
)

type ShippingController struct {
	shipping *services.ShippingService
}

func NewShippingController(shipping *services.ShippingService) *ShippingController {
	return &ShippingController{shipping: shipping}
}

// LookupCEP godoc
// @Summary Look up a postal code
// @Description Resolve an 8-digit postal code to an address and a shipping quote
// @Tags Shipping
// @Produce json
// @Param cep path string true "Postal code"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /shipping/{cep} [get]
func (ctrl *ShippingController) LookupCEP(c *gin.Context) {
	cep := c.Param("cep")

	address, err := ctrl.shipping.LookupCEP(c.Request.Context(), cep)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCEP) {
			c.JSON(400, gin.H{"success": false, "message": "Postal code must have 8 digits"})
			return
		}
		c.JSON(404, gin.H{"success": false, "message": "Postal code not found"})
		return
	}

	quote, err := ctrl.shipping.Quote(cep)
	if err != nil {
		c.JSON(400, gin.H{"success": false, "message": "Postal code must have 8 digits"})
		return
	}

	c.JSON(200, gin.H{
		"success": true, "message": "Postal code resolved",
		"data": gin.H{"address": address, "shipping": quote},
	})
}
