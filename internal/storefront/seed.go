package storefront

import (
	"fmt"
	"time"

	"tokoadmin/internal/models"
)

// SeedData is what Seed created.
type SeedData struct {
	Admin    models.User
	Customer models.User
	Sellers  []models.User
	Products []models.Product
	Orders   []models.Order
}

// Seed fills an empty database with an admin, a customer, a few sellers,
// products in every approval state and orders for the customer. password is
// used for every account.
func (s *Server) Seed(password string) (*SeedData, error) {
	out := &SeedData{}

	admin := models.User{Name: "Ada Admin", Email: "admin@technologyheaven.test", Phone: "9000000001",
		Password: password, Role: models.RoleAdmin, EmailVerified: true, PhoneVerified: true}
	if err := s.auth.Register(&admin); err != nil {
		return nil, fmt.Errorf("seed admin: %w", err)
	}
	out.Admin = admin

	customer := models.User{Name: "Ravi Kumar", Email: "ravi@technologyheaven.test", Phone: "9000000002",
		Password: password, Role: models.RoleCustomer, Address: []string{"12 MG Road, Bengaluru"}}
	if err := s.auth.Register(&customer); err != nil {
		return nil, fmt.Errorf("seed customer: %w", err)
	}
	out.Customer = customer

	sellers := []models.User{
		{Name: "Asha Rao", Email: "asha@chiphub.test", Phone: "9000000003", Status: models.SellerPending,
			BusinessProfile: &models.BusinessProfile{Name: "Chip Hub"}, Address: []string{"4 Park Street, Kolkata"},
			EmailVerified: true},
		{Name: "Vikram Shah", Email: "vikram@pcpoint.test", Phone: "9000000004", Status: models.SellerApproved,
			BusinessProfile: &models.BusinessProfile{Name: "PC Point"}, EmailVerified: true, PhoneVerified: true},
		{Name: "Meera Iyer", Email: "meera@example.test", Phone: "9000000005", Status: models.SellerPending},
	}
	for i := range sellers {
		sellers[i].Password = password
		sellers[i].Role = models.RoleSeller
		if err := s.auth.Register(&sellers[i]); err != nil {
			return nil, fmt.Errorf("seed seller %s: %w", sellers[i].Email, err)
		}
	}
	out.Sellers = sellers

	until := time.Now().AddDate(0, 1, 0).Truncate(24 * time.Hour)
	chipHub := &models.SellerRef{ID: sellers[0].ID, Name: sellers[0].Name}
	pcPoint := &models.SellerRef{ID: sellers[1].ID, Name: sellers[1].Name}
	products := []models.Product{
		{Title: "RTX 4090", Category: "GPU", Brand: "NVIDIA", Status: models.ProductActive, Seller: pcPoint,
			Description: "Flagship Ada Lovelace graphics card.",
			Specifications: models.Specifications{
				"clockSpeed": map[string]any{"boost": 2.52, "unit": "GHz"},
				"ports":      []any{"HDMI 2.1", "DisplayPort 1.4a"},
				"cudaCores":  16384.0,
			},
			Variants: []models.Variant{
				{MemorySize: models.MemorySize{Size: 24, Unit: "GB"}, Price: 1599, Stock: 10,
					Discount: models.Discount{Percentage: 5, ValidUntil: &until}},
			},
			Images: []models.Image{{URL: "/uploads/rtx-4090.png", Alt: "RTX 4090"}}},
		{Title: "Ryzen 9 7950X", Category: "CPU", Brand: "AMD", Status: models.ProductPending, Seller: chipHub,
			Description: "16 cores, 32 threads.",
			Specifications: models.Specifications{
				"cores":      16.0,
				"clockSpeed": map[string]any{"base": 4.5, "boost": 5.7, "unit": "GHz"},
			},
			Variants: []models.Variant{{MemorySize: models.MemorySize{Unit: "GB"}, Price: 549, Stock: 25}}},
		{Title: "Vengeance DDR5", Category: "RAM", Brand: "Corsair", Status: models.ProductInactive, Seller: chipHub,
			Variants: []models.Variant{
				{MemorySize: models.MemorySize{Size: 32, Unit: "GB"}, Price: 120, Stock: 40},
				{MemorySize: models.MemorySize{Size: 64, Unit: "GB"}, Price: 230, Stock: 12},
			}},
		{Title: "990 Pro", Category: "Storage", Brand: "Samsung", Status: models.ProductRejected, Seller: pcPoint,
			Variants: []models.Variant{{MemorySize: models.MemorySize{Size: 2, Unit: "TB"}, Price: 179, Stock: 0}}},
	}
	for i := range products {
		if err := s.products.Create(&products[i]); err != nil {
			return nil, fmt.Errorf("seed product %s: %w", products[i].Title, err)
		}
	}
	out.Products = products

	address := models.ShippingAddress{FullName: "Ravi Kumar", Phone: "9000000002", StreetAddress: "12 MG Road",
		City: "Bengaluru", State: "Karnataka", ZipCode: "560001", Country: "India"}
	for _, qty := range []int{1, 2} {
		order, err := s.orders.Create(customer.ID, CreateOrderRequest{
			Items:           []OrderLine{{ProductID: products[0].ID, Quantity: qty}},
			ShippingAddress: address,
		})
		if err != nil {
			return nil, fmt.Errorf("seed order: %w", err)
		}
		out.Orders = append(out.Orders, *order)
	}

	s.log.Info().
		Int("sellers", len(out.Sellers)).
		Int("products", len(out.Products)).
		Int("orders", len(out.Orders)).
		Msg("storefront seeded")
	return out, nil
}
