package domain

import "slices"

// Department is a top-level taxonomy entry with its allowed subcategories.
type Department struct {
	Name          string   `yaml:"name" json:"name"`
	Subcategories []string `yaml:"subcategories" json:"subcategories"`
}

// Taxonomy is an immutable, ordered department -> subcategory table.
type Taxonomy struct {
	departments []Department
}

// NewTaxonomy copies departments into a taxonomy value.
func NewTaxonomy(departments []Department) Taxonomy {
	copied := make([]Department, 0, len(departments))
	for _, d := range departments {
		copied = append(copied, Department{Name: d.Name, Subcategories: slices.Clone(d.Subcategories)})
	}
	return Taxonomy{departments: copied}
}

// DefaultTaxonomy is the built-in help-desk taxonomy.
func DefaultTaxonomy() Taxonomy {
	return NewTaxonomy([]Department{
		{Name: "Support", Subcategories: []string{"Hardware", "Software", "Access/Password", "Printers"}},
		{Name: "Infrastructure", Subcategories: []string{"Network/Wi-Fi", "Servers", "Backup", "VPN"}},
		{Name: "Systems", Subcategories: []string{"ERP", "CRM", "BI/Reports", "Integrations"}},
		{Name: "Finance", Subcategories: []string{"Invoices/Bills", "Payments", "Supplier Registration"}},
	})
}

// Departments returns a copy of the ordered department list.
func (t Taxonomy) Departments() []Department {
	return NewTaxonomy(t.departments).departments
}

// Subcategories returns the allowed subcategories for department, or nil.
func (t Taxonomy) Subcategories(department string) []string {
	for _, d := range t.departments {
		if d.Name == department {
			return slices.Clone(d.Subcategories)
		}
	}
	return nil
}

// Allows reports whether subcategory belongs to department.
func (t Taxonomy) Allows(department, subcategory string) bool {
	for _, d := range t.departments {
		if d.Name == department {
			return slices.Contains(d.Subcategories, subcategory)
		}
	}
	return false
}

// Len returns the number of departments.
func (t Taxonomy) Len() int {
	return len(t.departments)
}
