// Package editor menangani alur simpan produk dari admin: validasi, unggah
// gambar baru, gabungkan setelah gambar lama, hitung ulang thumbnail, lalu
// buat atau perbarui data produk.
package editor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"nstore-backend/apperr"
	"nstore-backend/models"
)

// MaxImageSize adalah ukuran maksimal satu file gambar.
const MaxImageSize = 10 << 20

const (
	uploadConcurrency     = 3
	defaultDiscardTimeout = 10 * time.Second
)

// Backend adalah bagian gateway data yang dibutuhkan editor.
type Backend interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	CreateProduct(ctx context.Context, in models.ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, in models.ProductInput) (*models.Product, error)
	UploadImage(ctx context.Context, r io.Reader, fileName, contentType string) (string, error)
	DeleteImage(ctx context.Context, publicURL string) error
}

// Draft adalah isi form produk yang dikirim. ID kosong berarti produk baru.
type Draft struct {
	ID          string
	Name        string        `validate:"required,max=200"`
	Category    string        `validate:"max=100"`
	Price       int64         `validate:"gte=0"`
	Description string        `validate:"max=5000"`
	Status      models.Status `validate:"omitempty,oneof=Ready Sold"`
	Images      []string
}

// DraftFrom mengisi draft dari produk yang sudah tersimpan.
func DraftFrom(p *models.Product) Draft {
	return Draft{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Price:       p.Price,
		Description: p.Description,
		Status:      p.Status,
		Images:      append([]string(nil), p.Images...),
	}
}

// Upload adalah satu file gambar yang dipilih di form.
type Upload struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

type Editor struct {
	backend  Backend
	log      *slog.Logger
	validate *validator.Validate
}

func New(backend Backend, logger *slog.Logger) *Editor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Editor{
		backend:  backend,
		log:      logger.With("component", "editor"),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Load mengambil produk untuk diedit.
func (e *Editor) Load(ctx context.Context, id string) (*models.Product, error) {
	p, err := e.backend.GetProduct(ctx, id)
	if err != nil {
		if !apperr.Is(err, apperr.NotFound) {
			e.log.Error("failed to load product", "id", id, "error", err)
		}
		return nil, err
	}
	return p, nil
}

// Save menjalankan seluruh alur simpan. Tidak ada yang disimpan jika
// validasi atau salah satu unggahan gagal.
func (e *Editor) Save(ctx context.Context, d Draft, uploads []Upload) (*models.Product, error) {
	d.Name = strings.TrimSpace(d.Name)
	d.Category = strings.TrimSpace(d.Category)
	if d.Status == "" {
		d.Status = models.StatusReady
	}
	if err := e.validateDraft(d); err != nil {
		return nil, err
	}

	files, err := readUploads(uploads)
	if err != nil {
		return nil, err
	}

	uploaded, err := e.uploadAll(ctx, files)
	if err != nil {
		return nil, err
	}

	in := models.ProductInput{
		Name:        d.Name,
		Category:    d.Category,
		Price:       d.Price,
		Description: d.Description,
		Status:      d.Status,
		Images:      append(append([]string{}, d.Images...), uploaded...),
	}
	in.SyncThumbnail()

	var p *models.Product
	if d.ID == "" {
		p, err = e.backend.CreateProduct(ctx, in)
	} else {
		p, err = e.backend.UpdateProduct(ctx, d.ID, in)
	}
	if err != nil {
		e.log.Error("failed to save product", "id", d.ID, "error", err)
		e.discard(uploaded)
		if apperr.Is(err, apperr.NotFound) {
			return nil, err
		}
		return nil, apperr.SaveErr("Gagal menyimpan produk.", err)
	}

	e.log.Info("product saved", "id", p.ID, "images", len(p.Images), "uploaded", len(uploaded))
	return p, nil
}

// DeleteImage melepas satu gambar dari produk dan menurunkan ulang
// thumbnail dalam update yang sama. Objek di penyimpanan baru dihapus
// setelah produk tersimpan.
func (e *Editor) DeleteImage(ctx context.Context, productID, imageURL string) (*models.Product, error) {
	p, err := e.Load(ctx, productID)
	if err != nil {
		return nil, err
	}
	idx := slices.Index(p.Images, imageURL)
	if idx < 0 {
		return nil, apperr.ValidationErr("Gambar bukan milik produk ini.", map[string]string{"image": imageURL})
	}

	in := p.Input()
	in.Images = slices.Delete(in.Images, idx, idx+1)
	in.SyncThumbnail()

	updated, err := e.backend.UpdateProduct(ctx, productID, in)
	if err != nil {
		e.log.Error("failed to update product after image delete", "id", productID, "error", err)
		if apperr.Is(err, apperr.NotFound) {
			return nil, err
		}
		return nil, apperr.SaveErr("Gagal menyimpan produk.", err)
	}

	e.discard([]string{imageURL})
	return updated, nil
}

func (e *Editor) validateDraft(d Draft) error {
	err := e.validate.Struct(d)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return apperr.ValidationErr("Data produk tidak valid.", map[string]string{"_": err.Error()})
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[strings.ToLower(fe.StructField())] = messageForTag(fe.Tag(), fe.Param())
	}
	return apperr.ValidationErr("Periksa kembali data produk.", fields)
}

func messageForTag(tag, param string) string {
	switch tag {
	case "required":
		return "Wajib diisi."
	case "max":
		return "Maksimal " + param + " karakter."
	case "gte":
		return "Tidak boleh negatif."
	case "oneof":
		return "Pilih salah satu: " + param + "."
	default:
		return "Nilai tidak valid."
	}
}

type imageFile struct {
	name        string
	contentType string
	data        []byte
}

// readUploads loads every file and rejects non-images before any remote
// call is made.
func readUploads(uploads []Upload) ([]imageFile, error) {
	files := make([]imageFile, 0, len(uploads))
	for _, u := range uploads {
		if u.Size > MaxImageSize {
			return nil, apperr.ValidationErr(
				fmt.Sprintf("File %s terlalu besar. Maksimal 10MB.", u.Filename),
				map[string]string{"images": u.Filename})
		}
		rc, err := u.Open()
		if err != nil {
			return nil, apperr.ValidationErr("File tidak dapat dibaca.", map[string]string{"images": u.Filename})
		}
		data, err := io.ReadAll(io.LimitReader(rc, MaxImageSize+1))
		rc.Close()
		if err != nil {
			return nil, apperr.ValidationErr("File tidak dapat dibaca.", map[string]string{"images": u.Filename})
		}
		if len(data) > MaxImageSize {
			return nil, apperr.ValidationErr(
				fmt.Sprintf("File %s terlalu besar. Maksimal 10MB.", u.Filename),
				map[string]string{"images": u.Filename})
		}

		mtype := mimetype.Detect(data)
		if !strings.HasPrefix(mtype.String(), "image/") {
			return nil, apperr.ValidationErr("File yang diunggah harus berupa gambar.", map[string]string{"images": u.Filename})
		}
		files = append(files, imageFile{name: u.Filename, contentType: mtype.String(), data: data})
	}
	return files, nil
}

// uploadAll uploads files concurrently; the returned URLs are in the same
// order as files. On failure the images that did upload are removed again.
func (e *Editor) uploadAll(ctx context.Context, files []imageFile) ([]string, error) {
	if len(files) == 0 {
		return []string{}, nil
	}

	urls := make([]string, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadConcurrency)
	for i, f := range files {
		g.Go(func() error {
			u, err := e.backend.UploadImage(gctx, bytes.NewReader(f.data), f.name, f.contentType)
			if err != nil {
				return fmt.Errorf("uploading %s: %w", f.name, err)
			}
			urls[i] = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		e.log.Error("image upload failed", "error", err)
		e.discard(urls)
		return nil, apperr.UploadErr("Gagal mengunggah gambar.", err)
	}
	return urls, nil
}

// discard best-effort deletes images that will not be referenced.
func (e *Editor) discard(urls []string) {
	for _, u := range urls {
		if u == "" {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), defaultDiscardTimeout)
		if err := e.backend.DeleteImage(ctx, u); err != nil {
			e.log.Warn("failed to remove orphaned image", "url", u, "error", err)
		}
		cancel()
	}
}
