package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spec-kit/helpdesk/internal/domain"
)

type taxonomyFile struct {
	Departments []domain.Department `yaml:"departments"`
}

// LoadTaxonomy returns the built-in taxonomy, or the one described by cfg.File.
//
// The file lists departments in display order:
//
//	departments:
//	  - name: Support
//	    subcategories: [Hardware, Software]
func LoadTaxonomy(cfg TaxonomyConfig) (domain.Taxonomy, error) {
	if strings.TrimSpace(cfg.File) == "" {
		return domain.DefaultTaxonomy(), nil
	}
	raw, err := os.ReadFile(cfg.File)
	if err != nil {
		return domain.Taxonomy{}, fmt.Errorf("read taxonomy %s: %w", cfg.File, err)
	}
	return ParseTaxonomy(raw)
}

// ParseTaxonomy decodes a YAML taxonomy document.
func ParseTaxonomy(raw []byte) (domain.Taxonomy, error) {
	var doc taxonomyFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return domain.Taxonomy{}, fmt.Errorf("decode taxonomy: %w", err)
	}
	if len(doc.Departments) == 0 {
		return domain.Taxonomy{}, fmt.Errorf("taxonomy has no departments")
	}
	seen := make(map[string]struct{}, len(doc.Departments))
	departments := make([]domain.Department, 0, len(doc.Departments))
	for _, dept := range doc.Departments {
		name := strings.TrimSpace(dept.Name)
		if name == "" {
			return domain.Taxonomy{}, fmt.Errorf("taxonomy department without name")
		}
		if _, dup := seen[name]; dup {
			return domain.Taxonomy{}, fmt.Errorf("duplicate department %q", name)
		}
		seen[name] = struct{}{}
		if len(dept.Subcategories) == 0 {
			return domain.Taxonomy{}, fmt.Errorf("department %q has no subcategories", name)
		}
		subcategories := make([]string, 0, len(dept.Subcategories))
		for _, sub := range dept.Subcategories {
			sub = strings.TrimSpace(sub)
			if sub == "" {
				return domain.Taxonomy{}, fmt.Errorf("department %q has a blank subcategory", name)
			}
			subcategories = append(subcategories, sub)
		}
		departments = append(departments, domain.Department{Name: name, Subcategories: subcategories})
	}
	return domain.NewTaxonomy(departments), nil
}
