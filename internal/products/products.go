// Package products is the built-in demonstration subgraph. It serves the
// product fixtures used throughout the federation compatibility suite and
// exercises every key shape the federation runtime supports: a single-field
// key, a compound key, a nested key and an @interfaceObject entity.
package products

import (
	"context"

	"go.uber.org/zap"

	executor "github.com/hanpama/fedgraph/internal/executor"
	federation "github.com/hanpama/fedgraph/internal/federation"
	funcrt "github.com/hanpama/fedgraph/internal/funcrt"
	schema "github.com/hanpama/fedgraph/internal/schema"
)

// Subgraph bundles the federation-extended schema with its runtime.
type Subgraph struct {
	SDL      string
	Schema   *schema.Schema
	Runtime  executor.Runtime
	Registry *federation.Registry
}

type options struct {
	logger *zap.Logger
}

type Option func(*options)

// WithLogger sets the logger passed through to the federation runtime.
func WithLogger(l *zap.Logger) Option { return func(o *options) { o.logger = l } }

// New builds the products subgraph from the embedded dataset.
func New(opts ...Option) (*Subgraph, error) {
	op := options{logger: zap.NewNop()}
	for _, f := range opts {
		f(&op)
	}

	data, err := loadDataset()
	if err != nil {
		return nil, err
	}
	sch, err := schema.BuildFromSDL(SDL)
	if err != nil {
		return nil, err
	}

	base := funcrt.New(sch)
	bindFields(base, data)

	w, err := federation.Wrap(base, sch,
		federation.WithSDL(SDL),
		federation.WithLogger(op.logger),
		federation.WithResolvers(referenceResolvers(data)))
	if err != nil {
		return nil, err
	}
	return &Subgraph{SDL: SDL, Schema: w.Schema, Runtime: w.Runtime, Registry: w.Registry}, nil
}

// bindFields registers the field resolvers the dataset cannot serve as plain
// map reads. Root lookups are async so they batch like real I/O would.
func bindFields(rt *funcrt.Runtime, data *dataset) {
	rt.RegisterAsync("Query", "product", func(ctx context.Context, source any, args map[string]any) (any, error) {
		id, _ := args["id"].(string)
		if p, ok := data.productByID(id); ok {
			return p.value(), nil
		}
		return nil, nil
	})
	rt.RegisterAsync("Query", "deprecatedProduct", func(ctx context.Context, source any, args map[string]any) (any, error) {
		sku, _ := args["sku"].(string)
		pkg, _ := args["package"].(string)
		if data.DeprecatedProduct.SKU == sku && data.DeprecatedProduct.Package == pkg {
			return data.DeprecatedProduct.value(), nil
		}
		return nil, nil
	})

	rt.Register("Product", "research", func(ctx context.Context, source any, args map[string]any) (any, error) {
		m, _ := source.(map[string]any)
		cases, _ := m["researchCases"].([]string)
		out := make([]any, 0, len(cases))
		for _, caseNumber := range cases {
			if r, ok := data.researchByCase(caseNumber); ok {
				out = append(out, r.value())
			}
		}
		return out, nil
	})
	rt.Register("Product", "createdBy", func(ctx context.Context, source any, args map[string]any) (any, error) {
		return data.User.value(), nil
	})
	rt.Register("DeprecatedProduct", "createdBy", func(ctx context.Context, source any, args map[string]any) (any, error) {
		return data.User.value(), nil
	})
	rt.Register("Inventory", "deprecatedProducts", func(ctx context.Context, source any, args map[string]any) (any, error) {
		return []any{data.DeprecatedProduct.value()}, nil
	})
	rt.Register("User", "averageProductsCreatedPerYear", func(ctx context.Context, source any, args map[string]any) (any, error) {
		m, _ := source.(map[string]any)
		total, _ := m["totalProductsCreated"].(int)
		years, _ := m["yearsOfEmployment"].(int)
		if years == 0 {
			return nil, nil
		}
		return total / years, nil
	})
}

func referenceResolvers(data *dataset) federation.ResolverMap {
	return federation.ResolverMap{
		"Product": func(ctx context.Context, ref federation.Reference) (any, error) {
			if p, ok := data.productByKey(ref.KeyValues); ok {
				return p.value(), nil
			}
			return nil, nil
		},
		"DeprecatedProduct": func(ctx context.Context, ref federation.Reference) (any, error) {
			if data.DeprecatedProduct.SKU == ref.KeyValues["sku"] &&
				data.DeprecatedProduct.Package == ref.KeyValues["package"] {
				return data.DeprecatedProduct.value(), nil
			}
			return nil, nil
		},
		"ProductResearch": func(ctx context.Context, ref federation.Reference) (any, error) {
			study, _ := ref.KeyValues["study"].(map[string]any)
			if r, ok := data.researchByCase(study["caseNumber"]); ok {
				return r.value(), nil
			}
			return nil, nil
		},
		"User": func(ctx context.Context, ref federation.Reference) (any, error) {
			if data.User.Email == ref.KeyValues["email"] {
				return data.User.value(), nil
			}
			return nil, nil
		},
		"Inventory": func(ctx context.Context, ref federation.Reference) (any, error) {
			if data.Inventory.ID == ref.KeyValues["id"] {
				return data.Inventory.value(), nil
			}
			return nil, nil
		},
	}
}

func (d *dataset) productByID(id string) (productRecord, bool) {
	for _, p := range d.Products {
		if p.ID == id {
			return p, true
		}
	}
	return productRecord{}, false
}

// productByKey routes a classified key to the matching fixture, whichever of
// the three Product keys it came from.
func (d *dataset) productByKey(key map[string]any) (productRecord, bool) {
	if id, ok := key["id"].(string); ok {
		return d.productByID(id)
	}
	sku, _ := key["sku"].(string)
	if pkg, ok := key["package"].(string); ok {
		for _, p := range d.Products {
			if p.SKU == sku && p.Package == pkg {
				return p, true
			}
		}
		return productRecord{}, false
	}
	if variation, ok := key["variation"].(map[string]any); ok {
		for _, p := range d.Products {
			if p.SKU == sku && p.Variation == variation["id"] {
				return p, true
			}
		}
	}
	return productRecord{}, false
}

func (d *dataset) researchByCase(caseNumber any) (researchRecord, bool) {
	for _, r := range d.Research {
		if r.CaseNumber == caseNumber {
			return r, true
		}
	}
	return researchRecord{}, false
}
