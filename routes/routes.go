package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"nstore-backend/controllers"
	"nstore-backend/middleware"
)

// Options berisi pengaturan yang berbeda antar listener.
type Options struct {
	Env         string
	Log         *slog.Logger
	CORSOrigins []string
	// MediaDir dan MediaPrefix diisi saat driver penyimpanan lokal dipakai.
	MediaDir    string
	MediaPrefix string
	// CSRFKey dan TrustedOrigins dipakai oleh listener admin.
	CSRFKey        []byte
	TrustedOrigins []string
}

func newEngine(ctrl *controllers.Controller, opts Options) *gin.Engine {
	if opts.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(opts.Log),
		middleware.Recovery(opts.Log),
		middleware.FlashMiddleware(ctrl.Flash),
		middleware.ErrorHandler(opts.Log),
	)
	r.NoRoute(ctrl.NotFound)
	return r
}

// SetupPublic mengonfigurasi Gin engine untuk etalase publik dan API.
func SetupPublic(ctrl *controllers.Controller, opts Options) *gin.Engine {
	r := newEngine(ctrl, opts)

	r.GET("/", ctrl.Home)
	r.GET("/products/:id", ctrl.ProductDetail)
	if opts.MediaDir != "" {
		r.Static(opts.MediaPrefix, opts.MediaDir)
	}

	config := cors.DefaultConfig()
	config.AllowOrigins = opts.CORSOrigins
	config.AllowMethods = []string{"GET", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	config.MaxAge = 12 * time.Hour

	api := r.Group("/api", cors.New(config))
	{
		// Rute utilitas
		api.GET("/health", ctrl.HealthCheck)
		api.GET("/stats", ctrl.GetStats)

		// Rute produk (hanya baca)
		api.GET("/products", ctrl.GetProducts)
		api.GET("/products/:id", ctrl.GetProduct)
	}
	return r
}

// SetupAdmin mengonfigurasi Gin engine untuk panel admin.
func SetupAdmin(ctrl *controllers.Controller, guard middleware.Checker, opts Options) *gin.Engine {
	r := newEngine(ctrl, opts)
	r.Use(middleware.CSRF(opts.CSRFKey, opts.TrustedOrigins, opts.Log))
	r.MaxMultipartMemory = 32 << 20

	r.GET("/", func(c *gin.Context) { c.Redirect(http.StatusSeeOther, "/admin") })

	// Rute otentikasi
	login := r.Group("/login", middleware.LoginRateLimit(rate.Every(12*time.Second), 5, ctrl.Flash))
	{
		login.GET("", ctrl.LoginForm)
		login.POST("", ctrl.Login)
	}
	r.POST("/logout", ctrl.Logout)

	// Rute admin
	admin := r.Group("/admin", middleware.RequireSession(guard, ctrl.Flash, ctrl.Checking))
	{
		admin.GET("", ctrl.Dashboard)
		admin.GET("/products/new", ctrl.NewProduct)
		admin.POST("/products", ctrl.CreateProduct)
		admin.GET("/products/:id/edit", ctrl.EditProduct)
		admin.POST("/products/:id", ctrl.UpdateProduct)
		admin.POST("/products/:id/delete", ctrl.DeleteProduct)
		admin.POST("/products/:id/images/delete", ctrl.DeleteImage)
	}
	return r
}
