package models

import "github.com/google/uuid"

// CartLine is a product in a cart together with how many times it was added
type CartLine struct {
	Product  *Product `json:"product"`
	Quantity int      `json:"quantity"`
}

// Subtotal returns the line price
func (l CartLine) Subtotal() int64 {
	return l.Product.Price * int64(l.Quantity)
}

// Cart is the server-side shopping cart of one subject
type Cart struct {
	Lines []CartLine `json:"products"`
}

// Add puts one unit of p into the cart
func (c *Cart) Add(p *Product) {
	for i := range c.Lines {
		if c.Lines[i].Product.ID == p.ID {
			c.Lines[i].Quantity++
			c.Lines[i].Product = p
			return
		}
	}
	c.Lines = append(c.Lines, CartLine{Product: p, Quantity: 1})
}

// Remove takes one unit of the product out of the cart. It returns false when
// the product is not in the cart.
func (c *Cart) Remove(productID uuid.UUID) bool {
	for i := range c.Lines {
		if c.Lines[i].Product.ID != productID {
			continue
		}
		c.Lines[i].Quantity--
		if c.Lines[i].Quantity <= 0 {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
		}
		return true
	}
	return false
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.Lines = nil
}

// Subtract takes the quantities of placed out of the cart. Lines that drop to
// zero are removed; anything added after placed was copied stays.
func (c *Cart) Subtract(placed *Cart) {
	for _, p := range placed.Lines {
		for i := range c.Lines {
			if c.Lines[i].Product.ID != p.Product.ID {
				continue
			}
			c.Lines[i].Quantity -= p.Quantity
			if c.Lines[i].Quantity <= 0 {
				c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			}
			break
		}
	}
}

// Empty reports whether the cart has no products
func (c *Cart) Empty() bool {
	return len(c.Lines) == 0
}

// Total returns the cart price
func (c *Cart) Total() int64 {
	var total int64
	for _, line := range c.Lines {
		total += line.Subtotal()
	}
	return total
}

// Clone returns a copy of the cart whose lines can be modified independently
func (c *Cart) Clone() *Cart {
	out := &Cart{Lines: make([]CartLine, len(c.Lines))}
	copy(out.Lines, c.Lines)
	return out
}

// CartView is the JSON representation of a cart with its computed total
type CartView struct {
	Products   []CartLine `json:"products"`
	TotalPrice int64      `json:"totalPrice"`
}

// View returns the cart with its total
func (c *Cart) View() CartView {
	lines := c.Lines
	if lines == nil {
		lines = []CartLine{}
	}
	return CartView{Products: lines, TotalPrice: c.Total()}
}
