package entity

import "time"

// Category groups products. Names are bilingual (Thai primary, English optional).
type Category struct {
	ID           int64     `json:"id"`
	NameTH       string    `json:"name_th"`
	NameEN       string    `json:"name_en,omitempty"`
	ProductCount int       `json:"product_count,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Product struct {
	ID            int64           `json:"id"`
	CategoryID    int64           `json:"category_id"`
	NameTH        string          `json:"name_th"`
	NameEN        string          `json:"name_en,omitempty"`
	DescriptionTH string          `json:"description_th,omitempty"`
	DescriptionEN string          `json:"description_en,omitempty"`
	Price         float64         `json:"price"`
	IsRecommended bool            `json:"is_recommended"`
	IsAvailable   bool            `json:"is_available"`
	Category      *Category       `json:"category,omitempty"`
	Images        []ProductImage  `json:"images"`
	Options       []ProductOption `json:"options"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type ProductImage struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	URL       string `json:"url"`
}

// ProductOption is a configurable choice group on a product (e.g. size).
type ProductOption struct {
	ID         int64                 `json:"id"`
	ProductID  int64                 `json:"product_id"`
	NameTH     string                `json:"name_th"`
	NameEN     string                `json:"name_en,omitempty"`
	IsRequired bool                  `json:"is_required"`
	MaxSelect  int                   `json:"max_select"`
	Choices    []ProductOptionChoice `json:"choices"`
}

type ProductOptionChoice struct {
	ID       int64   `json:"id"`
	OptionID int64   `json:"option_id"`
	NameTH   string  `json:"name_th"`
	NameEN   string  `json:"name_en,omitempty"`
	Price    float64 `json:"price"`
}
