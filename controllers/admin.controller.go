package controllers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"nstore-backend/apperr"
	"nstore-backend/catalog"
	"nstore-backend/editor"
	"nstore-backend/middleware"
	"nstore-backend/models"
)

const maxMultipartMemory = 32 << 20

// Dashboard menampilkan semua produk dengan filter nama, kategori dan status.
func (ctrl *Controller) Dashboard(c *gin.Context) {
	search := strings.TrimSpace(c.Query("q"))
	category := strings.TrimSpace(c.Query("category"))
	status := catalog.ParseStatusFilter(c.Query("status"))

	data := ctrl.adminPage(c, "Admin Dashboard")

	products, err := ctrl.Products.ListProducts(c.Request.Context(), true)
	if err != nil {
		ctrl.Log.Error("failed to load products", "error", err)
		data["Flash"] = &middleware.Flash{Kind: middleware.FlashError, Message: "Gagal memuat data produk."}
		products = []models.Product{}
	}

	data["Search"] = search
	data["Category"] = category
	data["Status"] = string(status)
	data["Categories"] = catalog.Categories(products)
	data["Stats"] = models.ComputeStats(products)
	data["Products"] = catalog.Filter(products, catalog.Criteria{
		Search:   search,
		Category: category,
		Status:   status,
	})
	ctrl.Views.Render(c, http.StatusOK, "dashboard", data)
}

// NewProduct menampilkan form tambah produk.
func (ctrl *Controller) NewProduct(c *gin.Context) {
	ctrl.renderForm(c, http.StatusOK, editor.Draft{
		Category: catalog.DefaultCategories[0],
		Status:   models.StatusReady,
	}, nil)
}

// EditProduct menampilkan form edit produk.
func (ctrl *Controller) EditProduct(c *gin.Context) {
	p, err := ctrl.Editor.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		ctrl.productLoadFailed(c, err)
		return
	}
	ctrl.renderForm(c, http.StatusOK, editor.DraftFrom(p), nil)
}

// CreateProduct menangani pembuatan produk baru beserta gambarnya.
func (ctrl *Controller) CreateProduct(c *gin.Context) {
	ctrl.saveProduct(c, editor.Draft{})
}

// UpdateProduct menangani perubahan produk. Gambar baru ditambahkan
// setelah gambar yang sudah ada.
func (ctrl *Controller) UpdateProduct(c *gin.Context) {
	p, err := ctrl.Editor.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		ctrl.productLoadFailed(c, err)
		return
	}
	ctrl.saveProduct(c, editor.DraftFrom(p))
}

func (ctrl *Controller) saveProduct(c *gin.Context, d editor.Draft) {
	uploads, err := formUploads(c)
	if err != nil {
		ctrl.renderForm(c, http.StatusBadRequest, d, apperr.ValidationErr("Form tidak dapat dibaca.", nil))
		return
	}

	d.Name = c.PostForm("name")
	d.Category = c.PostForm("category")
	d.Description = c.PostForm("description")
	d.Status = models.Status(c.PostForm("status"))

	price, err := parsePrice(c.PostForm("price"))
	if err != nil {
		ctrl.renderForm(c, http.StatusUnprocessableEntity, d, apperr.ValidationErr(
			"Periksa kembali data produk.",
			map[string]string{"price": "Harga harus berupa angka bulat tanpa minus, misal 10.000."}))
		return
	}
	d.Price = price

	p, err := ctrl.Editor.Save(c.Request.Context(), d, uploads)
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			ctrl.productLoadFailed(c, err)
			return
		}
		ctrl.renderForm(c, apperr.HTTPStatus(err), d, err)
		return
	}

	msg := "Produk berhasil ditambahkan!"
	if d.ID != "" {
		msg = "Produk berhasil diperbarui!"
	}
	ctrl.Log.Info("product saved from admin", "id", p.ID)
	ctrl.Flash.RedirectWithFlash(c, "/admin", middleware.FlashSuccess, msg)
}

// DeleteProduct menangani penghapusan produk.
func (ctrl *Controller) DeleteProduct(c *gin.Context) {
	id := c.Param("id")
	if err := ctrl.Products.DeleteProduct(c.Request.Context(), id); err != nil {
		ctrl.Log.Error("failed to delete product", "id", id, "error", err)
		msg := "Gagal menghapus produk."
		if apperr.Is(err, apperr.NotFound) {
			msg = apperr.PublicMessage(err)
		}
		ctrl.Flash.RedirectWithFlash(c, "/admin", middleware.FlashError, msg)
		return
	}
	ctrl.Flash.RedirectWithFlash(c, "/admin", middleware.FlashSuccess, "Produk berhasil dihapus!")
}

// DeleteImage menghapus satu gambar dari produk dan dari penyimpanan.
func (ctrl *Controller) DeleteImage(c *gin.Context) {
	id := c.Param("id")
	back := "/admin/products/" + id + "/edit"

	if _, err := ctrl.Editor.DeleteImage(c.Request.Context(), id, c.PostForm("url")); err != nil {
		if apperr.Is(err, apperr.NotFound) {
			ctrl.productLoadFailed(c, err)
			return
		}
		ctrl.Flash.RedirectWithFlash(c, back, middleware.FlashError, "Gagal menghapus gambar. "+apperr.PublicMessage(err))
		return
	}
	ctrl.Flash.RedirectWithFlash(c, back, middleware.FlashSuccess, "Gambar dihapus!")
}

func (ctrl *Controller) productLoadFailed(c *gin.Context, err error) {
	if apperr.Is(err, apperr.NotFound) {
		data := ctrl.adminPage(c, "Produk Tidak Ditemukan")
		data["Heading"] = "Produk Tidak Ditemukan"
		data["Back"] = "/admin"
		ctrl.Views.Render(c, http.StatusNotFound, "not_found", data)
		return
	}
	ctrl.Log.Error("failed to load product", "id", c.Param("id"), "error", err)
	ctrl.Flash.RedirectWithFlash(c, "/admin", middleware.FlashError, "Gagal memuat data produk.")
}

func (ctrl *Controller) renderForm(c *gin.Context, status int, d editor.Draft, err error) {
	title := "Tambah Produk"
	if d.ID != "" {
		title = "Edit Produk"
	}
	data := ctrl.adminPage(c, title)

	categories := catalog.DefaultCategories
	if d.Category != "" && !slices.Contains(categories, d.Category) {
		categories = append(slices.Clone(categories), d.Category)
	}

	var fields map[string]string
	if err != nil {
		data["Error"] = apperr.PublicMessage(err)
		if ae, ok := apperr.As(err); ok {
			fields = ae.Fields
		}
	}
	data["Draft"] = d
	data["Fields"] = fields
	data["Categories"] = categories
	ctrl.Views.Render(c, status, "form", data)
}

// formUploads mengambil file dari field "images". Form tanpa multipart
// berarti tidak ada gambar baru.
func formUploads(c *gin.Context) ([]editor.Upload, error) {
	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}

	var uploads []editor.Upload
	for _, fh := range c.Request.MultipartForm.File["images"] {
		if fh.Filename == "" && fh.Size == 0 {
			continue
		}
		uploads = append(uploads, editor.Upload{
			Filename: fh.Filename,
			Size:     fh.Size,
			Open:     opener(fh),
		})
	}
	return uploads, nil
}

func opener(fh *multipart.FileHeader) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) { return fh.Open() }
}

var errInvalidPrice = errors.New("invalid price")

// parsePrice menerima "10.000", "Rp 10.000" maupun "10000". Tanda minus,
// pecahan desimal dan angka yang terlalu besar ditolak.
func parsePrice(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && strings.EqualFold(s[:2], "rp") {
		s = strings.TrimSpace(strings.TrimPrefix(s[2:], "."))
	}
	if s == "" {
		return 0, nil
	}

	groups := strings.Split(s, ".")
	for i, g := range groups {
		if g == "" || strings.TrimFunc(g, isDigit) != "" {
			return 0, errInvalidPrice
		}
		if len(groups) > 1 && (len(g) > 3 || (i > 0 && len(g) != 3)) {
			return 0, errInvalidPrice
		}
	}

	n, err := strconv.ParseInt(strings.Join(groups, ""), 10, 64)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
