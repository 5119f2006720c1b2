package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const CtxKeyFlash = "flash"

type FlashKind string

const (
	FlashInfo    FlashKind = "info"
	FlashSuccess FlashKind = "success"
	FlashWarning FlashKind = "warning"
	FlashError   FlashKind = "error"
)

// Flash is a one-shot message shown on the page after a redirect.
type Flash struct {
	Kind    FlashKind `json:"kind"`
	Message string    `json:"message"`
}

var ErrInvalidFlash = errors.New("invalid flash cookie")

// FlashCodec signs flash cookies with HMAC-SHA256.
type FlashCodec struct {
	Secret     []byte
	CookieName string
	Secure     bool
	MaxAge     time.Duration
}

func NewFlashCodec(secret []byte, secure bool) *FlashCodec {
	return &FlashCodec{Secret: secret, CookieName: "nstore_flash", Secure: secure, MaxAge: 2 * time.Minute}
}

// Encode returns base64(json) "." base64(hmac).
func (fc *FlashCodec) Encode(f Flash) (string, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return "", err
	}
	payload := base64.RawURLEncoding.EncodeToString(b)
	return payload + "." + fc.sign(payload), nil
}

func (fc *FlashCodec) Decode(v string) (*Flash, error) {
	payload, sig, ok := strings.Cut(v, ".")
	if !ok || !hmac.Equal([]byte(fc.sign(payload)), []byte(sig)) {
		return nil, ErrInvalidFlash
	}
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil, ErrInvalidFlash
	}
	var f Flash
	if err := json.Unmarshal(raw, &f); err != nil || strings.TrimSpace(f.Message) == "" {
		return nil, ErrInvalidFlash
	}
	return &f, nil
}

func (fc *FlashCodec) sign(payload string) string {
	mac := hmac.New(sha256.New, fc.Secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// FlashMiddleware reads the flash cookie into the context and clears it.
func FlashMiddleware(fc *FlashCodec) gin.HandlerFunc {
	return func(c *gin.Context) {
		if v, err := c.Cookie(fc.CookieName); err == nil && v != "" {
			if f, err := fc.Decode(v); err == nil {
				c.Set(CtxKeyFlash, f)
			}
			fc.clear(c)
		}
		c.Next()
	}
}

func GetFlash(c *gin.Context) *Flash {
	if v, ok := c.Get(CtxKeyFlash); ok {
		if f, ok := v.(*Flash); ok {
			return f
		}
	}
	return nil
}

func (fc *FlashCodec) Set(c *gin.Context, kind FlashKind, msg string) {
	val, err := fc.Encode(Flash{Kind: kind, Message: msg})
	if err != nil {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(fc.CookieName, val, int(fc.MaxAge.Seconds()), "/", "", fc.Secure, true)
}

func (fc *FlashCodec) clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(fc.CookieName, "", -1, "/", "", fc.Secure, true)
}

// RedirectWithFlash sets a flash and answers 303 See Other.
func (fc *FlashCodec) RedirectWithFlash(c *gin.Context, location string, kind FlashKind, msg string) {
	fc.Set(c, kind, msg)
	c.Redirect(http.StatusSeeOther, location)
}
