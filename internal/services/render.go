// internal/services/render.go
package services

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Raw HTML in provider output or form fields is escaped, never passed
// through.
var licenseMarkdown = goldmark.New(
	goldmark.WithExtensions(extension.Table, extension.Strikethrough),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// RenderLicenseHTML renders agreement text for display. Providers usually
// answer in Markdown; the static template reads fine as Markdown too.
func RenderLicenseHTML(text string) (string, error) {
	var buf bytes.Buffer
	if err := licenseMarkdown.Convert([]byte(text), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
