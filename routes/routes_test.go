package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nstore-backend/auth"
	"nstore-backend/controllers"
	"nstore-backend/editor"
	"nstore-backend/gateway"
	"nstore-backend/middleware"
	"nstore-backend/models"
	"nstore-backend/session"
	"nstore-backend/templates"
)

const (
	adminEmail    = "admin@nstore.com"
	adminPassword = "password"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type testApp struct {
	public *gin.Engine
	admin  *gin.Engine
	store  *session.Store
	gw     *gateway.Gateway
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	mediaDir := t.TempDir()
	gw := gateway.New(
		gateway.NewMemoryProducts(gateway.DemoCatalog(time.Now())...),
		gateway.NewLocalImages(mediaDir, "/media"),
		log,
	)

	tokens, err := auth.NewTokens([]byte("0123456789abcdef0123456789abcdef"), time.Hour)
	require.NoError(t, err)
	svc, err := auth.NewMemoryService(tokens, adminEmail, adminPassword)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	store := session.New(svc, log)
	t.Cleanup(store.Close)
	store.Start()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, store.WaitReady(ctx))

	views, err := templates.New()
	require.NoError(t, err)

	ctrl := &controllers.Controller{
		Products:       gw,
		Editor:         editor.New(gw, log),
		Session:        store,
		Flash:          middleware.NewFlashCodec([]byte("flash-secret-flash-secret-flash-secret"), false),
		Views:          views,
		Log:            log,
		WhatsAppNumber: "6285363619829",
	}
	opts := Options{
		Env:         "test",
		Log:         log,
		CORSOrigins: []string{"http://localhost:5173"},
		MediaDir:    mediaDir,
		MediaPrefix: "/media",
		CSRFKey:     []byte("0123456789abcdef0123456789abcdef"),
	}

	return &testApp{
		public: SetupPublic(ctrl, opts),
		admin:  SetupAdmin(ctrl, session.NewGuard(store), opts),
		store:  store,
		gw:     gw,
	}
}

func do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func (a *testApp) login(t *testing.T) {
	t.Helper()
	rec := do(a.admin, postForm("/login", url.Values{"email": {adminEmail}, "password": {adminPassword}}))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/admin", rec.Header().Get("Location"))
}

func TestPublicCatalog(t *testing.T) {
	app := newTestApp(t)

	rec := do(app.public, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "iPhone 14 Pro")
	assert.Contains(t, body, "Samsung Galaxy S23 Ultra")
	assert.NotContains(t, body, "Google Pixel 7 Pro")
	assert.Contains(t, body, "Rp 14.999.000")

	rec = do(app.public, httptest.NewRequest(http.MethodGet, "/?q=iphone", nil))
	body = rec.Body.String()
	assert.Contains(t, body, "iPhone 14 Pro")
	assert.Contains(t, body, "iPhone 13")
	assert.NotContains(t, body, "Samsung Galaxy S23 Ultra")

	rec = do(app.public, httptest.NewRequest(http.MethodGet, "/?category=laptop", nil))
	body = rec.Body.String()
	assert.Contains(t, body, "MacBook Pro 14")
	assert.NotContains(t, body, "iPhone 13")

	rec = do(app.public, httptest.NewRequest(http.MethodGet, "/?q=zzz", nil))
	assert.Contains(t, rec.Body.String(), "Tidak ada produk ditemukan.")
}

func TestPublicProductDetail(t *testing.T) {
	app := newTestApp(t)
	list, err := app.gw.ListProducts(context.Background(), true)
	require.NoError(t, err)

	var sold models.Product
	for _, p := range list {
		if p.Status == models.StatusSold {
			sold = p
		}
	}
	require.NotEmpty(t, sold.ID)

	rec := do(app.public, httptest.NewRequest(http.MethodGet, "/products/"+sold.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Google Pixel 7 Pro")
	assert.Contains(t, rec.Body.String(), "https://wa.me/6285363619829?text=")
	assert.Contains(t, rec.Body.String(), "<li>Google Tensor G2</li>")

	rec = do(app.public, httptest.NewRequest(http.MethodGet, "/products/doesnotexist", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Produk Tidak Ditemukan")

	rec = do(app.public, httptest.NewRequest(http.MethodGet, "/no/such/page", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPublicAPI(t *testing.T) {
	app := newTestApp(t)

	rec := do(app.public, httptest.NewRequest(http.MethodGet, "/api/products", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Products []models.Product `json:"products"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Products, 4)
	for _, p := range resp.Products {
		assert.Equal(t, models.StatusReady, p.Status)
	}

	rec = do(app.public, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var stats struct {
		Stats models.Stats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 5, int(stats.Stats.TotalProducts))
	assert.Equal(t, 1, int(stats.Stats.SoldProducts))

	rec = do(app.public, httptest.NewRequest(http.MethodGet, "/api/products/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)

	rec = do(app.public, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"connected"`)

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec = do(app.public, req)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestAdminRequiresSession(t *testing.T) {
	app := newTestApp(t)

	rec := do(app.admin, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = do(app.admin, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Admin Panel Login")
}

func TestAdminLoginFlow(t *testing.T) {
	app := newTestApp(t)

	rec := do(app.admin, postForm("/login", url.Values{"email": {adminEmail}, "password": {"wrong"}}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid login credentials")
	assert.False(t, app.store.Snapshot().Authenticated())

	app.login(t)
	assert.True(t, app.store.Snapshot().Authenticated())

	rec = do(app.admin, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin", rec.Header().Get("Location"))

	rec = do(app.admin, httptest.NewRequest(http.MethodGet, "/admin", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Google Pixel 7 Pro")
	assert.Contains(t, rec.Body.String(), adminEmail)

	rec = do(app.admin, httptest.NewRequest(http.MethodGet, "/admin?status=Sold", nil))
	assert.Contains(t, rec.Body.String(), "Google Pixel 7 Pro")
	assert.NotContains(t, rec.Body.String(), "iPhone 13")

	rec = do(app.admin, postForm("/logout", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = do(app.admin, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func multipartProduct(t *testing.T, path string, fields map[string]string, files map[string][]byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for name, data := range files {
		fw, err := w.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestAdminCreateEditAndDeleteImage(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	rec := do(app.admin, multipartProduct(t, "/admin/products", map[string]string{
		"name": "Xiaomi 13T", "category": "Android", "price": "Rp 5.499.000", "status": "Ready",
	}, map[string][]byte{"front.png": pngBytes}))
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())

	list, err := app.gw.ListProducts(context.Background(), true)
	require.NoError(t, err)
	created := list[0]
	require.Equal(t, "Xiaomi 13T", created.Name)
	assert.Equal(t, int64(5_499_000), created.Price)
	require.Len(t, created.Images, 1)
	assert.True(t, strings.HasPrefix(created.Images[0], "/media/uploads/"))
	require.NotNil(t, created.Thumbnail)
	assert.Equal(t, created.Images[0], *created.Thumbnail)

	rec = do(app.public, httptest.NewRequest(http.MethodGet, created.Images[0], nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(app.admin, httptest.NewRequest(http.MethodGet, "/admin/products/"+created.ID+"/edit", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Xiaomi 13T")

	rec = do(app.admin, postForm("/admin/products/"+created.ID+"/images/delete", url.Values{"url": {created.Images[0]}}))
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	p, err := app.gw.GetProduct(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Empty(t, p.Images)
	assert.Nil(t, p.Thumbnail)

	rec = do(app.public, httptest.NewRequest(http.MethodGet, created.Images[0], nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(app.admin, multipartProduct(t, "/admin/products/"+created.ID, map[string]string{
		"name": "Xiaomi 13T", "category": "Android", "price": "5.299.000", "status": "Sold",
	}, nil))
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())

	p, err = app.gw.GetProduct(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{}, p.Images)
	assert.Nil(t, p.Thumbnail)
	assert.Equal(t, int64(5_299_000), p.Price)
	assert.Equal(t, models.StatusSold, p.Status)

	rec = do(app.admin, postForm("/admin/products/"+created.ID+"/delete", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	_, err = app.gw.GetProduct(context.Background(), created.ID)
	assert.Error(t, err)
}

func TestAdminSaveRejectsNonImage(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	before, err := app.gw.ListProducts(context.Background(), true)
	require.NoError(t, err)

	rec := do(app.admin, multipartProduct(t, "/admin/products", map[string]string{
		"name": "Bad Upload", "category": "Android", "price": "1000", "status": "Ready",
	}, map[string][]byte{"notes.txt": []byte("plain text, not an image")}))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "File yang diunggah harus berupa gambar.")
	assert.Contains(t, rec.Body.String(), "Bad Upload")

	after, err := app.gw.ListProducts(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, after, len(before))
}

func TestAdminSaveRejectsBadPrice(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	before, err := app.gw.ListProducts(context.Background(), true)
	require.NoError(t, err)

	for _, price := range []string{"-500", "12.5", "99999999999999999999"} {
		rec := do(app.admin, multipartProduct(t, "/admin/products", map[string]string{
			"name": "Harga Aneh", "category": "Android", "price": price, "status": "Ready",
		}, nil))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, price)
		assert.Contains(t, rec.Body.String(), "Harga harus berupa angka bulat", price)
		assert.Contains(t, rec.Body.String(), "Harga Aneh", price)
	}

	after, err := app.gw.ListProducts(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, after, len(before))
}

func TestAdminCrossSiteSubmitRejected(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	req := postForm("/admin/products/x/delete", nil)
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	rec := do(app.admin, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
