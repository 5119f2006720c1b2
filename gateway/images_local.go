package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalImages menyimpan gambar di disk di bawah BaseDir. Listener publik
// menyajikan BaseDir pada URLPrefix.
type LocalImages struct {
	BaseDir   string
	URLPrefix string
}

func NewLocalImages(baseDir, urlPrefix string) *LocalImages {
	return &LocalImages{BaseDir: baseDir, URLPrefix: strings.TrimRight(urlPrefix, "/")}
}

func (l *LocalImages) Upload(ctx context.Context, key string, r io.Reader, _ string) (string, error) {
	dstPath := l.path(key)
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return "", err
	}

	f, err := os.OpenFile(dstPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, readerWithContext(ctx, r)); err != nil {
		f.Close()
		_ = os.Remove(dstPath)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return l.URLPrefix + "/" + filepath.ToSlash(filepath.Clean(key)), nil
}

func (l *LocalImages) Delete(_ context.Context, key string) error {
	err := os.Remove(l.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	return err
}

// path keeps key inside BaseDir.
func (l *LocalImages) path(key string) string {
	return filepath.Join(l.BaseDir, filepath.Clean("/"+filepath.FromSlash(key)))
}

func (l *LocalImages) String() string { return fmt.Sprintf("local(%s)", l.BaseDir) }

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return &ctxReader{ctx: ctx, r: r}
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
