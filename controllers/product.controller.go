package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nstore-backend/catalog"
	"nstore-backend/middleware"
)

// GetProducts menangani pengambilan produk Ready untuk API publik.
func (ctrl *Controller) GetProducts(c *gin.Context) {
	products, err := ctrl.Products.ListProducts(c.Request.Context(), false)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	products = catalog.Filter(products, catalog.Criteria{
		Search:   c.Query("q"),
		Category: c.Query("category"),
		Public:   true,
	})
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// GetProduct menangani pengambilan satu produk berdasarkan ID.
func (ctrl *Controller) GetProduct(c *gin.Context) {
	p, err := ctrl.Products.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": p})
}
