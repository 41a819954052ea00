// Package prompts holds the instruction templates sent to the generation
// service. The templates are versionable data, not pipeline logic; only
// their output schemas are contracts the adapters depend on.
package prompts

import (
	"embed"
	"strings"
	"text/template"
)

//go:embed *.tmpl
var files embed.FS

var normalizationTmpl = template.Must(template.ParseFS(files, "normalization.tmpl"))

// Extraction returns the entity-extraction instruction.
func Extraction() string {
	return mustRead("extraction.tmpl")
}

// OCR returns the image-to-text instruction.
func OCR() string {
	return mustRead("ocr.tmpl")
}

// Normalization renders the normalization instruction for the given
// canonical timezone.
func Normalization(timezone string) (string, error) {
	var sb strings.Builder
	err := normalizationTmpl.Execute(&sb, struct{ Timezone string }{Timezone: timezone})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}

func mustRead(name string) string {
	data, err := files.ReadFile(name)
	if err != nil {
		panic(err)
	}
	return strings.TrimSpace(string(data))
}
