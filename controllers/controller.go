package controllers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"nstore-backend/editor"
	"nstore-backend/gateway"
	"nstore-backend/middleware"
	"nstore-backend/session"
	"nstore-backend/templates"
)

// Controller menampung dependensi yang akan digunakan oleh semua handler.
type Controller struct {
	Products *gateway.Gateway
	Editor   *editor.Editor
	Session  *session.Store
	Flash    *middleware.FlashCodec
	Views    *templates.Views
	Log      *slog.Logger

	WhatsAppNumber string
	// Ping memeriksa koneksi penyimpanan data; nil berarti selalu sehat.
	Ping func(ctx context.Context) error
}

// page menyiapkan data umum untuk layout.
func (ctrl *Controller) page(c *gin.Context, title string) gin.H {
	data := gin.H{"Title": title}
	if f := middleware.GetFlash(c); f != nil {
		data["Flash"] = f
	}
	return data
}

// adminPage menambahkan email admin agar tombol logout tampil.
func (ctrl *Controller) adminPage(c *gin.Context, title string) gin.H {
	data := ctrl.page(c, title)
	if snap := ctrl.Session.Snapshot(); snap.Session != nil {
		data["AdminEmail"] = snap.Session.Email
	}
	return data
}

// NotFound menampilkan halaman 404.
func (ctrl *Controller) NotFound(c *gin.Context) {
	if middleware.WantsJSON(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Endpoint not found"})
		return
	}
	ctrl.Views.Render(c, http.StatusNotFound, "not_found", ctrl.page(c, "Halaman Tidak Ditemukan"))
}

// Checking menampilkan halaman sementara selama sesi masih diperiksa.
func (ctrl *Controller) Checking(c *gin.Context) {
	ctrl.Views.Render(c, http.StatusOK, "checking", ctrl.page(c, "Memeriksa sesi"))
}
