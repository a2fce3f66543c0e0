package entity

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Cart is the single per-user cart, created lazily on first access.
type Cart struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartItem is one line in a cart. Two items with the same product and a
// semantically equal option set must be merged by summing quantity.
type CartItem struct {
	ID              int64        `json:"id"`
	CartID          int64        `json:"cart_id"`
	ProductID       int64        `json:"product_id"`
	Quantity        int          `json:"quantity"`
	SelectedOptions []ItemOption `json:"selected_options"`
	Product         *Product     `json:"product,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// ItemOption is one option selection on a cart line: a fixed core schema
// (name, value, price) plus a bag of extra attributes that callers may attach.
// Equality is defined over the full structural serialization, so a selection
// differing only in price is a different configuration.
type ItemOption struct {
	Name  string
	Value any
	Price *float64
	Extra map[string]any
}

func (o ItemOption) toMap() map[string]any {
	m := make(map[string]any, len(o.Extra)+3)
	for k, v := range o.Extra {
		m[k] = v
	}
	m["name"] = o.Name
	if o.Value != nil {
		m["value"] = o.Value
	}
	if o.Price != nil {
		m["price"] = *o.Price
	}
	return m
}

func (o ItemOption) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.toMap())
}

func (o *ItemOption) UnmarshalJSON(b []byte) error {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	*o = ItemOption{}
	for k, v := range m {
		switch k {
		case "name":
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("option name must be a string")
			}
			o.Name = s
		case "value":
			o.Value = v
		case "price":
			f, ok := v.(float64)
			if !ok {
				return fmt.Errorf("option price must be a number")
			}
			o.Price = &f
		default:
			if o.Extra == nil {
				o.Extra = make(map[string]any)
			}
			o.Extra[k] = v
		}
	}
	return nil
}

// Canonical returns a deterministic string form of the option record.
// encoding/json sorts map keys, which gives a total order over the full
// serialization; merge decisions are therefore reproducible regardless of
// the order fields arrived in.
func (o ItemOption) Canonical() string {
	b, err := json.Marshal(o.toMap())
	if err != nil {
		// Only unmarshalable Extra values can get here; fall back to a form
		// that never equals a valid serialization.
		return fmt.Sprintf("!%v", o)
	}
	return string(b)
}

// OptionsEqual reports whether two option sets are semantically equal:
// same cardinality and, after canonicalizing and sorting, element-wise
// identical. Two empty sets are equal. Selection order never matters.
func OptionsEqual(a, b []ItemOption) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	ca := canonicalForms(a)
	cb := canonicalForms(b)
	for i := range ca {
		if ca[i] != cb[i] {
			return false
		}
	}
	return true
}

func canonicalForms(opts []ItemOption) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Canonical()
	}
	sort.Strings(out)
	return out
}

// EncodeOptions serializes an option set for jsonb storage. A nil set is
// stored as an empty array so stored and requested empty sets compare equal.
func EncodeOptions(opts []ItemOption) ([]byte, error) {
	if opts == nil {
		opts = []ItemOption{}
	}
	return json.Marshal(opts)
}

// DecodeOptions parses a stored jsonb option set.
func DecodeOptions(raw []byte) ([]ItemOption, error) {
	if len(raw) == 0 {
		return []ItemOption{}, nil
	}
	var opts []ItemOption
	if err := json.Unmarshal(raw, &opts); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = []ItemOption{}
	}
	return opts, nil
}
