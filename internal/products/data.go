package products

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed data.yaml
var dataYAML []byte

type dataset struct {
	Products          []productRecord  `yaml:"products"`
	DeprecatedProduct deprecatedRecord `yaml:"deprecatedProduct"`
	Research          []researchRecord `yaml:"research"`
	User              userRecord       `yaml:"user"`
	Inventory         inventoryRecord  `yaml:"inventory"`
}

type productRecord struct {
	ID            string          `yaml:"id"`
	SKU           string          `yaml:"sku"`
	Package       string          `yaml:"package"`
	Variation     string          `yaml:"variation"`
	Dimensions    dimensionRecord `yaml:"dimensions"`
	ResearchCases []string        `yaml:"researchCases"`
}

type dimensionRecord struct {
	Size   string  `yaml:"size"`
	Weight float64 `yaml:"weight"`
	Unit   string  `yaml:"unit"`
}

type deprecatedRecord struct {
	SKU     string `yaml:"sku"`
	Package string `yaml:"package"`
	Reason  string `yaml:"reason"`
}

type researchRecord struct {
	CaseNumber  string `yaml:"caseNumber"`
	Description string `yaml:"description"`
}

type userRecord struct {
	Email                string `yaml:"email"`
	Name                 string `yaml:"name"`
	TotalProductsCreated int    `yaml:"totalProductsCreated"`
	YearsOfEmployment    int    `yaml:"yearsOfEmployment"`
}

type inventoryRecord struct {
	ID string `yaml:"id"`
}

func loadDataset() (*dataset, error) {
	var d dataset
	if err := yaml.Unmarshal(dataYAML, &d); err != nil {
		return nil, fmt.Errorf("decoding product dataset: %w", err)
	}
	return &d, nil
}

func (p productRecord) value() map[string]any {
	return map[string]any{
		"id":        p.ID,
		"sku":       p.SKU,
		"package":   p.Package,
		"variation": map[string]any{"id": p.Variation},
		"dimensions": map[string]any{
			"size":   p.Dimensions.Size,
			"weight": p.Dimensions.Weight,
			"unit":   p.Dimensions.Unit,
		},
		"notes":         nil,
		"researchCases": p.ResearchCases,
	}
}

func (d deprecatedRecord) value() map[string]any {
	return map[string]any{
		"sku":     d.SKU,
		"package": d.Package,
		"reason":  d.Reason,
	}
}

func (r researchRecord) value() map[string]any {
	return map[string]any{
		"study": map[string]any{
			"caseNumber":  r.CaseNumber,
			"description": r.Description,
		},
		"outcome": nil,
	}
}

func (u userRecord) value() map[string]any {
	return map[string]any{
		"email":                u.Email,
		"name":                 u.Name,
		"totalProductsCreated": u.TotalProductsCreated,
		"yearsOfEmployment":    u.YearsOfEmployment,
	}
}

func (i inventoryRecord) value() map[string]any {
	return map[string]any{"id": i.ID}
}
