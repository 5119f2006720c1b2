package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"nstore-backend/apperr"
	"nstore-backend/catalog"
	"nstore-backend/middleware"
	"nstore-backend/models"
)

// Home menampilkan katalog publik dengan pencarian dan filter kategori.
func (ctrl *Controller) Home(c *gin.Context) {
	search := strings.TrimSpace(c.Query("q"))
	category := strings.TrimSpace(c.Query("category"))
	if catalog.IsAllCategories(category) {
		category = ""
	}

	products, err := ctrl.Products.ListProducts(c.Request.Context(), false)
	if err != nil {
		ctrl.Log.Error("failed to load catalog", "request_id", middleware.GetRequestID(c), "error", err)
		products = []models.Product{}
	}

	data := ctrl.page(c, "")
	data["Search"] = search
	data["Category"] = category
	data["Categories"] = catalog.DefaultCategories
	data["Products"] = catalog.Filter(products, catalog.Criteria{
		Search:   search,
		Category: category,
		Public:   true,
	})
	ctrl.Views.Render(c, http.StatusOK, "home", data)
}

// ProductDetail menampilkan satu produk beserta tautan WhatsApp.
func (ctrl *Controller) ProductDetail(c *gin.Context) {
	p, err := ctrl.Products.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		if !apperr.Is(err, apperr.NotFound) {
			ctrl.Log.Error("failed to load product", "id", c.Param("id"), "error", err)
		}
		data := ctrl.page(c, "Produk Tidak Ditemukan")
		data["Heading"] = "Produk Tidak Ditemukan"
		ctrl.Views.Render(c, http.StatusNotFound, "not_found", data)
		return
	}

	data := ctrl.page(c, p.Name)
	data["Product"] = p
	data["ContactLink"] = catalog.ContactLink(ctrl.WhatsAppNumber, p.Name)
	ctrl.Views.Render(c, http.StatusOK, "detail", data)
}
