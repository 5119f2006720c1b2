// Package gateway membungkus backend yang dipakai toko: penyimpanan data
// produk dan penyimpanan gambar. Bagian lain aplikasi hanya mengakses
// keduanya lewat method Gateway.
package gateway

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.mongodb.org/mongo-driver/mongo"

	"nstore-backend/apperr"
	"nstore-backend/models"
)

// ErrNotFound dikembalikan driver jika data atau objek tidak ada.
var ErrNotFound = errors.New("not found")

// UploadFolder adalah segmen path pertama setiap gambar yang disimpan.
const UploadFolder = "uploads"

const (
	defaultCallTimeout   = 10 * time.Second
	defaultUploadTimeout = 60 * time.Second
)

// ProductStore menyimpan data produk.
type ProductStore interface {
	List(ctx context.Context, includeSold bool) ([]models.Product, error)
	Get(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, in models.ProductInput) (*models.Product, error)
	Update(ctx context.Context, id string, in models.ProductInput) (*models.Product, error)
	Delete(ctx context.Context, id string) error
}

// ImageStore menyimpan objek gambar dengan storage key dan menyajikannya
// lewat URL publik yang dua segmen path terakhirnya sama dengan key itu.
type ImageStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

type Gateway struct {
	products ProductStore
	images   ImageStore
	log      *slog.Logger

	callTimeout   time.Duration
	uploadTimeout time.Duration

	mu      sync.Mutex
	now     func() time.Time
	entropy io.Reader
}

type Option func(*Gateway)

// WithClock mengganti jam yang dipakai untuk storage key.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.now = now }
}

// WithTimeouts mengganti batas waktu per panggilan.
func WithTimeouts(call, upload time.Duration) Option {
	return func(g *Gateway) {
		g.callTimeout = call
		g.uploadTimeout = upload
	}
}

func New(products ProductStore, images ImageStore, logger *slog.Logger, opts ...Option) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Gateway{
		products:      products,
		images:        images,
		log:           logger,
		callTimeout:   defaultCallTimeout,
		uploadTimeout: defaultUploadTimeout,
		now:           time.Now,
		entropy:       ulid.Monotonic(rand.Reader, 0),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ListProducts mengembalikan produk dari yang terbaru. Produk Sold hanya
// disertakan jika includeSold bernilai true.
func (g *Gateway) ListProducts(ctx context.Context, includeSold bool) ([]models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	products, err := g.products.List(ctx, includeSold)
	if err != nil {
		return nil, classify(err, "list products", "Produk tidak ditemukan.")
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

func (g *Gateway) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	p, err := g.products.Get(ctx, id)
	if err != nil {
		return nil, classify(err, "get product "+id, "Produk tidak ditemukan.")
	}
	return p, nil
}

// CreateProduct menyimpan produk baru. Thumbnail selalu dihitung ulang dari
// daftar gambar.
func (g *Gateway) CreateProduct(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	in.SyncThumbnail()
	p, err := g.products.Create(ctx, in)
	if err != nil {
		return nil, classify(err, "create product", "Produk tidak ditemukan.")
	}
	return p, nil
}

func (g *Gateway) UpdateProduct(ctx context.Context, id string, in models.ProductInput) (*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	in.SyncThumbnail()
	p, err := g.products.Update(ctx, id, in)
	if err != nil {
		return nil, classify(err, "update product "+id, "Produk tidak ditemukan.")
	}
	return p, nil
}

func (g *Gateway) DeleteProduct(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	if err := g.products.Delete(ctx, id); err != nil {
		return classify(err, "delete product "+id, "Produk tidak ditemukan.")
	}
	return nil
}

// UploadImage menyimpan satu gambar dengan key baru dan mengembalikan URL
// publiknya.
func (g *Gateway) UploadImage(ctx context.Context, r io.Reader, fileName, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.uploadTimeout)
	defer cancel()

	key := g.newKey(fileName)
	u, err := g.images.Upload(ctx, key, r, contentType)
	if err != nil {
		return "", classify(err, "upload image "+key, "Gambar tidak ditemukan.")
	}
	g.log.Debug("image uploaded", "key", key, "url", u)
	return u, nil
}

// DeleteImage menghapus objek di balik URL publik.
func (g *Gateway) DeleteImage(ctx context.Context, publicURL string) error {
	key, err := StorageKey(publicURL)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	if err := g.images.Delete(ctx, key); err != nil {
		return classify(err, "delete image "+key, "Gambar tidak ditemukan.")
	}
	g.log.Debug("image deleted", "key", key)
	return nil
}

// newKey builds "uploads/<ulid><ext>". The ULID is a millisecond timestamp
// followed by random bits, so keys sort by upload time.
func (g *Gateway) newKey(fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))

	g.mu.Lock()
	id, err := ulid.New(ulid.Timestamp(g.now()), g.entropy)
	g.mu.Unlock()
	if err != nil {
		// monotonic entropy overflow within one millisecond
		id = ulid.Make()
	}
	return UploadFolder + "/" + strings.ToLower(id.String()) + ext
}

// StorageKey menyusun ulang storage key dari URL publik, yaitu dua segmen
// path terakhir yang digabung dengan garis miring.
func StorageKey(publicURL string) (string, error) {
	u, err := url.Parse(publicURL)
	if err != nil {
		return "", apperr.ValidationErr("URL gambar tidak valid.", map[string]string{"image": publicURL})
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 || segments[len(segments)-2] == "" || segments[len(segments)-1] == "" {
		return "", apperr.ValidationErr("URL gambar tidak valid.", map[string]string{"image": publicURL})
	}
	return strings.Join(segments[len(segments)-2:], "/"), nil
}

func classify(err error, op, notFoundMsg string) error {
	if _, ok := apperr.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return &apperr.AppError{Kind: apperr.NotFound, PublicMsg: notFoundMsg, Err: fmt.Errorf("%s: %w", op, err)}
	case isNetwork(err):
		return apperr.NetworkErr("Server tidak dapat dihubungi. Silakan coba lagi.", fmt.Errorf("%s: %w", op, err))
	default:
		return apperr.Wrap(fmt.Errorf("%s: %w", op, err))
	}
}

func isNetwork(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
