package model

import "time"

// Product 商品模型
type Product struct {
	ID            int             `json:"id"`
	Name          string          `json:"name"`
	Slug          string          `json:"slug"`
	Description   string          `json:"description"`
	Price         float64         `json:"price"`
	DiscountPrice *float64        `json:"discount_price,omitempty"`
	CategoryID    int             `json:"category_id"`
	Category      *Category       `json:"category,omitempty"`
	Images        []*ProductImage `json:"images"`
	Stock         int             `json:"stock"`
	Unit          string          `json:"unit"`
	Weight        *float64        `json:"weight,omitempty"`
	SKU           string          `json:"sku"`
	Tags          []string        `json:"tags"`
	IsFeatured    bool            `json:"is_featured"`
	IsActive      bool            `json:"is_active"`
	RatingAverage float64         `json:"rating_average"`
	RatingCount   int             `json:"rating_count"`
	VendorID      *int            `json:"vendor_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// EffectivePrice 返回生效价格，有折扣价时优先
func (p *Product) EffectivePrice() float64 {
	if p.DiscountPrice != nil && *p.DiscountPrice > 0 && *p.DiscountPrice < p.Price {
		return *p.DiscountPrice
	}
	return p.Price
}

// MainImage 返回商品主图地址，没有图片时返回空串
func (p *Product) MainImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0].URL
}

// ProductImage 商品图片
type ProductImage struct {
	ID        int    `json:"id"`
	ProductID int    `json:"product_id"`
	URL       string `json:"url"`
}

// ProductFilter 商品列表查询条件
type ProductFilter struct {
	Page         int
	PageSize     int
	CategoryID   int
	Search       string
	MinPrice     *float64
	MaxPrice     *float64
	FeaturedOnly bool
	ActiveOnly   bool
}
