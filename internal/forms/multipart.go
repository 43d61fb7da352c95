package forms

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"

	"tokoadmin/internal/models"
)

// ImagesField is the repeated multipart key carrying image files.
const ImagesField = "images"

// BuildCreatePayload encodes the add flow body. Every non-file field is
// JSON-encoded on its own, in the order name, category, price, stock,
// description, specifications, variants (then brand when set), followed by one
// "images" part per file.
func (d *ProductDraft) BuildCreatePayload() (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	variants := d.Variants
	if variants == nil {
		variants = []models.Variant{}
	}
	fields := []struct {
		name  string
		value any
	}{
		{"name", d.Name},
		{"category", d.Category},
		{"price", d.Price},
		{"stock", d.Stock},
		{"description", d.Description},
		{"specifications", d.Specifications},
		{"variants", variants},
	}
	if d.Brand != "" {
		fields = append(fields, struct {
			name  string
			value any
		}{"brand", d.Brand})
	}

	for _, f := range fields {
		encoded, err := json.Marshal(f.value)
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode field %s: %w", f.name, err)
		}
		if err := w.WriteField(f.name, string(encoded)); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", f.name, err)
		}
	}

	for _, img := range d.Images {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, ImagesField, escapeQuotes(img.Filename)))
		ct := img.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create image part: %w", err)
		}
		if _, err := part.Write(img.Data); err != nil {
			return nil, "", fmt.Errorf("failed to write image %s: %w", img.Filename, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart body: %w", err)
	}
	return body, w.FormDataContentType(), nil
}

// DecodeField reads one multipart value written by BuildCreatePayload. Values
// that are not valid JSON are taken as plain strings when out is a *string.
func DecodeField(raw string, out any) error {
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		if s, ok := out.(*string); ok {
			*s = raw
			return nil
		}
		return err
	}
	return nil
}

// ParseMultipartDraft rebuilds a draft from a multipart form in the add-flow
// encoding.
func ParseMultipartDraft(form *multipart.Form) (*ProductDraft, error) {
	d := NewProductDraft()
	targets := map[string]any{
		"name":           &d.Name,
		"category":       &d.Category,
		"price":          &d.Price,
		"stock":          &d.Stock,
		"description":    &d.Description,
		"brand":          &d.Brand,
		"specifications": &d.Specifications,
		"variants":       &d.Variants,
	}
	for key, out := range targets {
		values := form.Value[key]
		if len(values) == 0 || values[0] == "" {
			continue
		}
		if err := DecodeField(values[0], out); err != nil {
			return nil, fmt.Errorf("invalid field %s: %w", key, err)
		}
	}

	for _, fh := range form.File[ImagesField] {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open image %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read image %s: %w", fh.Filename, err)
		}
		d.AddImage(ImageFile{Filename: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Data: data})
	}
	return d, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
