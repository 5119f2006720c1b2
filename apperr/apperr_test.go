package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", ValidationErr("bad", nil), http.StatusUnprocessableEntity},
		{"authentication", AuthenticationErr("Invalid login credentials", nil), http.StatusUnauthorized},
		{"not found", NotFoundErr("gone"), http.StatusNotFound},
		{"network", NetworkErr("down", errors.New("dial tcp")), http.StatusBadGateway},
		{"upload", UploadErr("upload", errors.New("boom")), http.StatusBadGateway},
		{"save", SaveErr("save", errors.New("boom")), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("ctx: %w", NotFoundErr("gone")), http.StatusNotFound},
		{"plain", errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestWrapKeepsAppError(t *testing.T) {
	orig := UploadErr("Gagal mengunggah gambar.", errors.New("timeout"))
	assert.Same(t, orig, Wrap(fmt.Errorf("saving: %w", orig)))
	assert.Nil(t, Wrap(nil))

	w := Wrap(errors.New("boom"))
	assert.Equal(t, Internal, w.Kind)
	assert.Equal(t, defaultPublicMsg, PublicMessage(w))
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("outer: %w", SaveErr("x", nil))
	assert.True(t, Is(err, Save))
	assert.False(t, Is(err, Upload))
	assert.False(t, Is(errors.New("x"), Save))
}
