package demo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
)

// Product is a catalog entry.
type Product struct {
	ID          string
	Name        string
	Description string
	PriceCents  int
}

// Price formats the price in dollars.
func (p Product) Price() string {
	return fmt.Sprintf("$%d.%02d", p.PriceCents/100, p.PriceCents%100)
}

// ErrNoProduct is returned for unknown product ids.
var ErrNoProduct = errors.New("product not found")

// Catalog loads products. Lookups may block; the application tracks them.
type Catalog interface {
	Products(ctx context.Context) ([]Product, error)
	Product(ctx context.Context, id string) (Product, error)
}

// StaticCatalog serves a fixed product list, optionally after a delay that
// stands in for a backend call.
type StaticCatalog struct {
	items map[string]Product
	delay time.Duration
}

// NewStaticCatalog returns a catalog of products.
func NewStaticCatalog(delay time.Duration, products ...Product) *StaticCatalog {
	items := make(map[string]Product, len(products))
	for _, p := range products {
		items[p.ID] = p
	}
	return &StaticCatalog{items: items, delay: delay}
}

// DefaultCatalog is the catalog served by the demo application.
func DefaultCatalog() *StaticCatalog {
	return NewStaticCatalog(20*time.Millisecond,
		Product{ID: "1", Name: "Espresso Cup", Description: "Stoneware, 90 ml.", PriceCents: 1200},
		Product{ID: "2", Name: "Pour-over Kettle", Description: "Gooseneck spout, 1 l.", PriceCents: 4900},
		Product{ID: "3", Name: "Burr Grinder", Description: "Conical burrs, 40 settings.", PriceCents: 12900},
	)
}

func (c *StaticCatalog) wait(ctx context.Context) error {
	if c.delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(c.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Products returns every product ordered by id.
func (c *StaticCatalog) Products(ctx context.Context) ([]Product, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	out := make([]Product, 0, len(c.items))
	for _, p := range c.items {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Product returns the product with id.
func (c *StaticCatalog) Product(ctx context.Context, id string) (Product, error) {
	if err := c.wait(ctx); err != nil {
		return Product{}, err
	}
	p, ok := c.items[id]
	if !ok {
		return Product{}, fmt.Errorf("%w: %s", ErrNoProduct, id)
	}
	return p, nil
}
