package handlers

import (
	"strconv"

	"tokoadmin/internal/table"
	"tokoadmin/internal/viewmodels"
)

// Tables are the declarations of the console's four data tables.
type Tables struct {
	Sellers   *table.Table[viewmodels.SellerRow]
	Products  *table.Table[viewmodels.ProductRow]
	Approvals *table.Table[viewmodels.ProductRow]
	Orders    *table.Table[viewmodels.OrderRow]
}

// NewTables declares the tables with rows as the default page size.
func NewTables(rows int) Tables {
	return Tables{
		Sellers:   sellerTable().WithDefaultRows(rows),
		Products:  productTable().WithDefaultRows(rows),
		Approvals: approvalTable().WithDefaultRows(rows),
		Orders:    orderTable().WithDefaultRows(rows),
	}
}

func byNumber(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func sellerTable() *table.Table[viewmodels.SellerRow] {
	type row = viewmodels.SellerRow
	return table.MustNew([]table.Column[row]{
		{Field: "name", Header: "Seller", Value: func(r row) string { return r.Name }, Sortable: true, Filter: table.Filter(table.StartsWith)},
		{Field: "businessName", Header: "Business", Value: func(r row) string { return r.BusinessName }, Sortable: true, Filter: table.Filter(table.StartsWith)},
		{Field: "email", Header: "Email", Value: func(r row) string { return r.Email }, Filter: table.Filter(table.StartsWith)},
		{Field: "phone", Header: "Phone", Value: func(r row) string { return r.Phone }},
		{Field: "status", Header: "Status", Value: func(r row) string { return string(r.Status) }, Sortable: true, Filter: table.Filter(table.Equals)},
		{Field: "registered", Header: "Registered", Value: func(r row) string { return r.Registered }, Sortable: true,
			Compare: func(a, b row) int { return a.RegistrationDate.Compare(b.RegistrationDate) }},
	}, []string{"name", "businessName", "email", "phone"}, func(r row) string { return r.ID })
}

func productTable() *table.Table[viewmodels.ProductRow] {
	type row = viewmodels.ProductRow
	return table.MustNew([]table.Column[row]{
		{Field: "name", Header: "Product", Value: func(r row) string { return r.Name }, Sortable: true, Filter: table.Filter(table.StartsWith)},
		{Field: "category", Header: "Category", Value: func(r row) string { return r.Category }, Sortable: true, Filter: table.Filter(table.Equals)},
		{Field: "brand", Header: "Brand", Value: func(r row) string { return r.Brand }, Sortable: true, Filter: table.Filter(table.StartsWith)},
		{Field: "price", Header: "Price", Value: func(r row) string { return byNumber(r.Price) }, Sortable: true,
			Compare: func(a, b row) int { return compareFloat(a.Price, b.Price) }},
		{Field: "stock", Header: "Stock", Value: func(r row) string { return strconv.Itoa(r.Stock) }, Sortable: true,
			Compare: func(a, b row) int { return a.Stock - b.Stock }},
		{Field: "seller", Header: "Seller", Value: func(r row) string { return r.SellerName }, Sortable: true, Filter: table.Filter(table.StartsWith)},
		{Field: "status", Header: "Status", Value: func(r row) string { return string(r.Status) }, Sortable: true, Filter: table.Filter(table.Equals)},
	}, []string{"name", "category", "brand", "seller"}, func(r row) string { return r.ID })
}

func approvalTable() *table.Table[viewmodels.ProductRow] {
	type row = viewmodels.ProductRow
	return table.MustNew([]table.Column[row]{
		{Field: "name", Header: "Product", Value: func(r row) string { return r.Name }, Sortable: true, Filter: table.Filter(table.StartsWith)},
		{Field: "seller", Header: "Seller", Value: func(r row) string { return r.SellerName }, Sortable: true, Filter: table.Filter(table.StartsWith)},
		{Field: "category", Header: "Category", Value: func(r row) string { return r.Category }, Sortable: true, Filter: table.Filter(table.Equals)},
		{Field: "price", Header: "Price", Value: func(r row) string { return byNumber(r.Price) }, Sortable: true,
			Compare: func(a, b row) int { return compareFloat(a.Price, b.Price) }},
		{Field: "created", Header: "Date", Value: func(r row) string { return r.Created }, Sortable: true,
			Compare: func(a, b row) int { return a.CreatedAt.Compare(b.CreatedAt) }},
		{Field: "status", Header: "Status", Value: func(r row) string { return string(r.Status) }, Sortable: true, Filter: table.Filter(table.Equals)},
	}, []string{"name", "seller", "category"}, func(r row) string { return r.ID })
}

func orderTable() *table.Table[viewmodels.OrderRow] {
	type row = viewmodels.OrderRow
	return table.MustNew([]table.Column[row]{
		{Field: "shortId", Header: "Order", Value: func(r row) string { return r.ShortID }, Filter: table.Filter(table.StartsWith)},
		{Field: "customer", Header: "Customer", Value: func(r row) string { return r.Customer }, Sortable: true, Filter: table.Filter(table.StartsWith)},
		{Field: "total", Header: "Total", Value: func(r row) string { return byNumber(r.Total) }, Sortable: true,
			Compare: func(a, b row) int { return compareFloat(a.Total, b.Total) }},
		{Field: "status", Header: "Status", Value: func(r row) string { return string(r.Status) }, Sortable: true, Filter: table.Filter(table.Equals)},
		{Field: "placed", Header: "Placed", Value: func(r row) string { return r.Placed }, Sortable: true,
			Compare: func(a, b row) int { return a.PlacedAt.Compare(b.PlacedAt) }},
	}, []string{"shortId", "customer", "status"}, func(r row) string { return r.ID })
}
