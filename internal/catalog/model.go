package catalog

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/pricing"
)

type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Image       string    `json:"image,omitempty"`
	Count       int       `json:"count"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Color struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

// Overview, Specs, SizeChart and FAQ back the tabs on the product page.
type Overview struct {
	MaterialOptions  []string `json:"materialOptions,omitempty"`
	DesignGuidelines []string `json:"designGuidelines,omitempty"`
	QualityFeatures  []string `json:"qualityFeatures,omitempty"`
}

type Template struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Type string `json:"type"`
}

type Specs struct {
	Templates      []Template `json:"templates,omitempty"`
	Specifications []string   `json:"specifications,omitempty"`
}

type SizeRow struct {
	Size   string `json:"size"`
	Chest  string `json:"chest"`
	Length string `json:"length"`
}

type SizeChart struct {
	Sizes        []SizeRow `json:"sizes"`
	Instructions string    `json:"instructions,omitempty"`
}

type FAQEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Details groups the tab content; it is stored as a single JSON document.
type Details struct {
	Overview  *Overview  `json:"overview,omitempty"`
	Specs     *Specs     `json:"specs,omitempty"`
	SizeChart *SizeChart `json:"sizeChart,omitempty"`
	FAQ       []FAQEntry `json:"faq,omitempty"`
}

type Product struct {
	ID            string                 `json:"id"`
	Name          string                 `json:"name"`
	Price         decimal.Decimal        `json:"price"`
	Image         string                 `json:"image"`
	Images        []string               `json:"images,omitempty"`
	CategoryID    string                 `json:"categoryId"`
	CategoryName  string                 `json:"categoryName"`
	Description   string                 `json:"description"`
	Sizes         []string               `json:"sizes,omitempty"`
	Colors        []Color                `json:"colors,omitempty"`
	Rating        float64                `json:"rating"`
	Reviews       int                    `json:"reviews"`
	InStock       bool                   `json:"inStock"`
	IsNew         bool                   `json:"isNew,omitempty"`
	IsSale        bool                   `json:"isSale,omitempty"`
	Discount      int                    `json:"discount,omitempty"`
	IsPopular     bool                   `json:"isPopular,omitempty"`
	IsTrending    bool                   `json:"isTrending,omitempty"`
	QuantityTiers []pricing.QuantityTier `json:"quantityTiers,omitempty"`
	Details
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (p Product) BasePrice() decimal.Decimal { return p.Price }

func (p Product) PriceTiers() []pricing.QuantityTier { return p.QuantityTiers }
