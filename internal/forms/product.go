package forms

import (
	"encoding/json"
	"errors"
	"fmt"

	"tokoadmin/internal/models"
	"tokoadmin/internal/viewmodels"
)

var ErrIndexOutOfRange = errors.New("index out of range")

// ImageFile is an image chosen in the form but not uploaded yet.
type ImageFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ProductDraft is the state of the add/edit product modal.
type ProductDraft struct {
	ID             string           `json:"id,omitempty"`
	Name           string           `json:"name" validate:"required"`
	Category       string           `json:"category" validate:"required,oneof=GPU CPU RAM Storage"`
	Price          float64          `json:"price" validate:"gte=0"`
	Stock          int              `json:"stock" validate:"gte=0"`
	Description    string           `json:"description"`
	Brand          string           `json:"brand,omitempty"`
	Specifications Specs            `json:"specifications"`
	Variants       []models.Variant `json:"variants" validate:"dive"`
	Images         []ImageFile      `json:"-"`
	ExistingImages []models.Image   `json:"images,omitempty"`
}

// NewProductDraft returns the empty add-product form.
func NewProductDraft() *ProductDraft {
	return &ProductDraft{Specifications: Specs{}, Variants: []models.Variant{}}
}

// DraftFromRow fills the edit form from a product row.
func DraftFromRow(r viewmodels.ProductRow) *ProductDraft {
	d := &ProductDraft{
		ID:             r.ID,
		Name:           r.Name,
		Category:       r.Category,
		Price:          r.Price,
		Stock:          r.Stock,
		Description:    r.Description,
		Brand:          r.Brand,
		Specifications: SpecsFromMap(r.Specifications),
		Variants:       append([]models.Variant{}, r.Variants...),
		ExistingImages: append([]models.Image(nil), r.Images...),
	}
	return d
}

// AddSpecification adds a row with an empty key. Only one such row can exist.
func (d *ProductDraft) AddSpecification() {
	if d.Specifications.index("") >= 0 {
		return
	}
	d.Specifications = append(d.Specifications, Spec{Key: "", Value: ""})
}

// RenameSpecification changes the key of a row, keeping its value and position.
func (d *ProductDraft) RenameSpecification(oldKey, newKey string) error {
	if oldKey == newKey {
		return nil
	}
	i := d.Specifications.index(oldKey)
	if i < 0 {
		return fmt.Errorf("%q: %w", oldKey, ErrUnknownSpecification)
	}
	if d.Specifications.index(newKey) >= 0 {
		return fmt.Errorf("%q: %w", newKey, ErrDuplicateKey)
	}
	d.Specifications[i].Key = newKey
	return nil
}

// SetSpecification sets the value of key, adding the row if needed.
func (d *ProductDraft) SetSpecification(key string, value any) {
	d.Specifications.set(key, value)
}

// RemoveSpecification deletes the row with key. Missing keys are ignored.
func (d *ProductDraft) RemoveSpecification(key string) {
	if i := d.Specifications.index(key); i >= 0 {
		d.Specifications = append(d.Specifications[:i], d.Specifications[i+1:]...)
	}
}

// AddVariant appends a variant with the form defaults.
func (d *ProductDraft) AddVariant() {
	d.Variants = append(d.Variants, models.Variant{
		MemorySize: models.MemorySize{Size: 0, Unit: "GB"},
	})
}

// UpdateVariant edits the variant at i in place.
func (d *ProductDraft) UpdateVariant(i int, fn func(v *models.Variant)) error {
	if i < 0 || i >= len(d.Variants) {
		return fmt.Errorf("variant %d: %w", i, ErrIndexOutOfRange)
	}
	fn(&d.Variants[i])
	return nil
}

// RemoveVariant deletes the variant at i.
func (d *ProductDraft) RemoveVariant(i int) error {
	if i < 0 || i >= len(d.Variants) {
		return fmt.Errorf("variant %d: %w", i, ErrIndexOutOfRange)
	}
	d.Variants = append(d.Variants[:i], d.Variants[i+1:]...)
	return nil
}

// AddImage queues a new image file for upload.
func (d *ProductDraft) AddImage(f ImageFile) {
	d.Images = append(d.Images, f)
}

// RemoveImage drops the queued image at i.
func (d *ProductDraft) RemoveImage(i int) error {
	if i < 0 || i >= len(d.Images) {
		return fmt.Errorf("image %d: %w", i, ErrIndexOutOfRange)
	}
	d.Images = append(d.Images[:i], d.Images[i+1:]...)
	return nil
}

// Validate checks the draft before submit.
func (d *ProductDraft) Validate() error {
	return Validate(d)
}

// BuildUpdatePayload is the JSON body of the edit flow.
func (d *ProductDraft) BuildUpdatePayload() ([]byte, error) {
	out := *d
	if out.Variants == nil {
		out.Variants = []models.Variant{}
	}
	body, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode product draft: %w", err)
	}
	return body, nil
}

// ResolvedVariants returns the variants to store. The form's price and stock
// always describe the first variant; a draft without variants gets one.
func (d *ProductDraft) ResolvedVariants() []models.Variant {
	variants := append([]models.Variant{}, d.Variants...)
	if len(variants) == 0 {
		variants = append(variants, models.Variant{MemorySize: models.MemorySize{Unit: "GB"}})
	}
	variants[0].Price = d.Price
	variants[0].Stock = d.Stock
	return variants
}
