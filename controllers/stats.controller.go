package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"nstore-backend/middleware"
	"nstore-backend/models"
)

// HealthCheck memeriksa status koneksi penyimpanan data.
func (ctrl *Controller) HealthCheck(c *gin.Context) {
	dbStatus := "connected"
	if ctrl.Ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		if err := ctrl.Ping(ctx); err != nil {
			ctrl.Log.Warn("health check ping failed", "error", err)
			dbStatus = "disconnected"
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"database":  dbStatus,
		"timestamp": time.Now().Unix(),
	})
}

// GetStats mengambil data statistik katalog.
func (ctrl *Controller) GetStats(c *gin.Context) {
	products, err := ctrl.Products.ListProducts(c.Request.Context(), true)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": models.ComputeStats(products)})
}
