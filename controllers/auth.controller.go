package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"nstore-backend/apperr"
	"nstore-backend/middleware"
	"nstore-backend/models"
)

// LoginForm menampilkan halaman login. Admin yang sudah login diarahkan ke
// dashboard; selama sesi masih diperiksa halaman sementara yang tampil.
func (ctrl *Controller) LoginForm(c *gin.Context) {
	snap := ctrl.Session.Snapshot()
	switch {
	case snap.Loading():
		c.Header("Cache-Control", "no-store")
		c.Header("Refresh", "1")
		ctrl.Checking(c)
	case snap.Authenticated():
		c.Redirect(http.StatusSeeOther, "/admin")
	default:
		ctrl.renderLogin(c, http.StatusOK, "", "")
	}
}

// Login menangani proses login admin.
func (ctrl *Controller) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		ctrl.renderLogin(c, http.StatusUnprocessableEntity, req.Email, "Email dan password wajib diisi dengan benar.")
		return
	}

	email := strings.TrimSpace(req.Email)
	if err := ctrl.Session.Login(c.Request.Context(), email, req.Password); err != nil {
		ctrl.Log.Warn("login failed", "email", email, "client_ip", c.ClientIP(), "error", err)
		ctrl.renderLogin(c, apperr.HTTPStatus(err), email, apperr.PublicMessage(err))
		return
	}

	ctrl.Flash.RedirectWithFlash(c, "/admin", middleware.FlashSuccess, "Berhasil login")
}

// Logout menangani proses logout. Sesi lokal selalu berakhir meskipun
// server auth gagal dihubungi.
func (ctrl *Controller) Logout(c *gin.Context) {
	if err := ctrl.Session.Logout(c.Request.Context()); err != nil {
		ctrl.Log.Warn("remote sign-out failed", "error", err)
		ctrl.Flash.RedirectWithFlash(c, "/login", middleware.FlashWarning,
			"Anda sudah logout, tetapi server auth tidak merespons.")
		return
	}
	ctrl.Flash.RedirectWithFlash(c, "/login", middleware.FlashSuccess, "Berhasil logout")
}

func (ctrl *Controller) renderLogin(c *gin.Context, status int, email, errMsg string) {
	data := ctrl.page(c, "Login Admin")
	data["Email"] = email
	data["Error"] = errMsg
	ctrl.Views.Render(c, status, "login", data)
}
