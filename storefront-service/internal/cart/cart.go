// Package cart keeps the shopping cart of a session and mirrors it to the
// profile of the signed-in user.
package cart

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/Takamichi23/Nike-microservice/storefront-service/internal/domain"
	"github.com/Takamichi23/Nike-microservice/storefront-service/internal/session"
	"github.com/shopspring/decimal"
)

// SessionKey is the session attribute holding the cart lines.
const SessionKey = "session_key"

type Request interface {
	Session() *session.Session
	Identity() (userID int64, ok bool)
}

// Mirror persists the serialized cart of a signed-in user.
type Mirror interface {
	SaveCart(ctx context.Context, userID int64, serialized string) error
}

type ProductLookup interface {
	ProductsByIDs(ctx context.Context, ids []int64) ([]domain.Product, error)
}

// Cart maps product ids, as decimal strings, to quantities. Every mutation
// is applied to the session first and then written to the mirror.
type Cart struct {
	req      Request
	lines    map[string]int
	mirror   Mirror
	products ProductLookup
}

type Line struct {
	Product  domain.Product  `json:"product"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type Summary struct {
	Lines      []Line          `json:"lines"`
	Quantities map[string]int  `json:"quantities"`
	Total      decimal.Decimal `json:"total"`
}

// New attaches the cart stored in the session, creating an empty one when
// the session has none.
func New(req Request, mirror Mirror, products ProductLookup) (*Cart, error) {
	c := &Cart{
		req:      req,
		mirror:   mirror,
		products: products,
	}

	s := req.Session()
	lines := make(map[string]int)
	found, err := s.Get(SessionKey, &lines)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if !found || lines == nil {
		lines = make(map[string]int)
		if err := s.Set(SessionKey, lines); err != nil {
			return nil, err
		}
	}
	c.lines = lines
	return c, nil
}

// Add inserts a line. A product already in the cart keeps its quantity.
func (c *Cart) Add(ctx context.Context, productID int64, qty int) error {
	return c.AddFromRestore(ctx, strconv.FormatInt(productID, 10), qty)
}

// AddFromRestore is Add for a key read back from a serialized cart.
func (c *Cart) AddFromRestore(ctx context.Context, key string, qty int) error {
	if _, ok := c.lines[key]; !ok {
		c.lines[key] = qty
	}
	return c.commit(ctx)
}

// Merge applies lines with Add semantics and commits once.
func (c *Cart) Merge(ctx context.Context, lines map[string]int) error {
	if len(lines) == 0 {
		return nil
	}
	for key, qty := range lines {
		if _, ok := c.lines[key]; !ok {
			c.lines[key] = qty
		}
	}
	return c.commit(ctx)
}

// Update sets the quantity of a line, inserting it if needed.
func (c *Cart) Update(ctx context.Context, productID int64, qty int) (map[string]int, error) {
	c.lines[strconv.FormatInt(productID, 10)] = qty
	return c.Quantities(), c.commit(ctx)
}

// Delete removes a line. Removing a product that is not in the cart is not
// an error.
func (c *Cart) Delete(ctx context.Context, productID int64) error {
	delete(c.lines, strconv.FormatInt(productID, 10))
	return c.commit(ctx)
}

func (c *Cart) Size() int {
	return len(c.lines)
}

func (c *Cart) Quantities() map[string]int {
	return maps.Clone(c.lines)
}

// ResolveProducts returns the catalog records of the cart lines ordered by
// id. Lines whose product no longer exists are left out.
func (c *Cart) ResolveProducts(ctx context.Context) ([]domain.Product, error) {
	ids := c.productIDs()
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	products, err := c.products.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve cart products: %w", err)
	}

	wanted := make(map[int64]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if wanted[p.ID] {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b domain.Product) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

// Total is the sum of quantity times unit price over the lines whose
// product resolves.
func (c *Cart) Total(ctx context.Context) (decimal.Decimal, error) {
	products, err := c.ResolveProducts(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return c.summarize(products).Total, nil
}

// Summary resolves the products once and prices every line.
func (c *Cart) Summary(ctx context.Context) (*Summary, error) {
	products, err := c.ResolveProducts(ctx)
	if err != nil {
		return nil, err
	}
	return c.summarize(products), nil
}

// Clear drops the cart from the session. The mirror is left alone.
func (c *Cart) Clear() {
	c.req.Session().Delete(SessionKey)
	c.lines = make(map[string]int)
}

func (c *Cart) summarize(products []domain.Product) *Summary {
	s := &Summary{
		Lines:      make([]Line, 0, len(products)),
		Quantities: c.Quantities(),
		Total:      decimal.Zero,
	}
	for _, p := range products {
		qty, ok := c.lines[strconv.FormatInt(p.ID, 10)]
		if !ok {
			continue
		}
		subtotal := p.UnitPrice().Mul(decimal.NewFromInt(int64(qty)))
		s.Lines = append(s.Lines, Line{Product: p, Quantity: qty, Subtotal: subtotal})
		s.Total = s.Total.Add(subtotal)
	}
	return s
}

func (c *Cart) productIDs() []int64 {
	ids := make([]int64, 0, len(c.lines))
	for key := range c.lines {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (c *Cart) commit(ctx context.Context) error {
	if err := c.req.Session().Set(SessionKey, c.lines); err != nil {
		return err
	}

	userID, ok := c.req.Identity()
	if !ok || c.mirror == nil {
		return nil
	}
	serialized, err := Serialize(c.lines)
	if err != nil {
		return err
	}
	if err := c.mirror.SaveCart(ctx, userID, serialized); err != nil {
		return fmt.Errorf("save cart for user %d: %w", userID, err)
	}
	return nil
}
