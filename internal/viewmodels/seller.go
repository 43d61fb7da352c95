package viewmodels

import (
	"time"

	"tokoadmin/internal/models"
)

// SellerRow is a row of the seller requests table.
type SellerRow struct {
	ID               string              `json:"id"`
	Name             string              `json:"name"`
	Email            string              `json:"email"`
	Phone            string              `json:"phone"`
	BusinessName     string              `json:"businessName"`
	Address          string              `json:"address"`
	Status           models.SellerStatus `json:"status"`
	RegistrationDate time.Time           `json:"registrationDate"`
	Registered       string              `json:"registered"`
	EmailVerified    bool                `json:"emailVerified"`
	PhoneVerified    bool                `json:"phoneVerified"`
}

// Pending reports whether accept and reject are offered for the row.
func (r SellerRow) Pending() bool {
	return r.Status == models.SellerPending
}

// NewSellerRow flattens a seller record.
func NewSellerRow(u models.User) SellerRow {
	business := ""
	if u.BusinessProfile != nil {
		business = u.BusinessProfile.Name
	}
	address := ""
	if len(u.Address) > 0 {
		address = u.Address[0]
	}
	return SellerRow{
		ID:               u.ID,
		Name:             u.Name,
		Email:            u.Email,
		Phone:            u.Phone,
		BusinessName:     orDefault(business, NotProvided),
		Address:          orDefault(address, NotProvided),
		Status:           u.Status,
		RegistrationDate: u.CreatedAt,
		Registered:       FormatDate(u.CreatedAt),
		EmailVerified:    u.EmailVerified,
		PhoneVerified:    u.PhoneVerified,
	}
}

// ContactLine is one line of the seller contact block.
type ContactLine struct {
	Value    string `json:"value"`
	Verified bool   `json:"verified"`
	Label    string `json:"label"`
}

// SellerDetail is the expanded panel under a seller row.
type SellerDetail struct {
	SellerRow
	EmailLine ContactLine `json:"emailLine"`
	PhoneLine ContactLine `json:"phoneLine"`
	Actions   []string    `json:"actions"`
}

// NewSellerDetail builds the detail panel of a row.
func NewSellerDetail(r SellerRow) SellerDetail {
	d := SellerDetail{
		SellerRow: r,
		EmailLine: ContactLine{Value: r.Email, Verified: r.EmailVerified, Label: VerifiedLabel(r.EmailVerified)},
		PhoneLine: ContactLine{Value: r.Phone, Verified: r.PhoneVerified, Label: VerifiedLabel(r.PhoneVerified)},
		Actions:   []string{},
	}
	if r.Pending() {
		d.Actions = []string{"accept", "reject"}
	}
	return d
}
