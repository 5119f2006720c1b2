package catalog

import (
	"bytes"
	"html/template"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	markdown = goldmark.New(
		goldmark.WithExtensions(extension.Linkify),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)
	policy   = bluemonday.UGCPolicy()
)

// FormatPrice formats an amount in rupiah with Indonesian digit grouping,
// e.g. "Rp 10.000".
func FormatPrice(price int64) string {
	// message.Printer is not safe for concurrent use
	return message.NewPrinter(language.Indonesian).Sprintf("Rp %d", price)
}

// ContactLink builds the WhatsApp chat link shown on a product page.
func ContactLink(number, productName string) string {
	msg := "Halo, saya tertarik dengan produk " + productName + ". Apakah masih tersedia?"
	return "https://wa.me/" + digits(number) + "?text=" + strings.ReplaceAll(url.QueryEscape(msg), "+", "%20")
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// RenderDescription renders a product description written in Markdown and
// strips anything unsafe.
func RenderDescription(src string) template.HTML {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(policy.SanitizeBytes(buf.Bytes()))
}
