// Package catalog is the read-only sports guide and the product range built
// from it: four products per sport.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

//go:embed sports.json
var sportsJSON []byte

const (
	CategoryEquipment    = "Equipment"
	CategoryFootwear     = "Footwear"
	CategoryApparel      = "Apparel"
	CategoryTrainingGear = "Training Gear"

	DefaultRelatedLimit = 4

	// filter value matching everything, next to the empty string
	All = "all"
)

type Exercise struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Duration    string `json:"duration"`
	// beginner, intermediate or advanced
	Difficulty string `json:"difficulty"`
}

type Sport struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	WarmupTips  []string   `json:"warmupTips"`
	Exercises   []Exercise `json:"exercises"`
}

type Product struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	FullDescription string            `json:"fullDescription"`
	Price           float64           `json:"price"`
	OriginalPrice   *float64          `json:"originalPrice,omitempty"`
	Rating          float64           `json:"rating"`
	Sport           string            `json:"sport"`
	Category        string            `json:"category"`
	Image           string            `json:"image"`
	Images          []string          `json:"images"`
	InStock         bool              `json:"inStock"`
	Features        []string          `json:"features"`
	Specifications  map[string]string `json:"specifications"`
}

// Filter narrows the product list. Empty (or "all") sport and category match
// any product; Query is a case insensitive substring of name or description.
type Filter struct {
	Sport    string
	Category string
	Query    string
}

func (f Filter) matches(p Product) bool {
	if f.Sport != "" && f.Sport != All && p.Sport != f.Sport {
		return false
	}
	if f.Category != "" && f.Category != All && p.Category != f.Category {
		return false
	}
	query := strings.ToLower(strings.TrimSpace(f.Query))
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), query) ||
		strings.Contains(strings.ToLower(p.Description), query)
}

type Catalog struct {
	sports       []Sport
	sportsByID   map[string]int
	products     []Product
	productsByID map[string]int
}

// Load builds the catalog from the embedded sports guide.
func Load() (*Catalog, error) {
	var sports []Sport
	if err := json.Unmarshal(sportsJSON, &sports); err != nil {
		return nil, fmt.Errorf("unmarshal sports: %w", err)
	}
	c := New(sports)
	log.Debugf("catalog loaded: %d sports, %d products", len(c.sports), len(c.products))
	return c, nil
}

func New(sports []Sport) *Catalog {
	c := &Catalog{
		sports:       sports,
		sportsByID:   make(map[string]int, len(sports)),
		productsByID: make(map[string]int, len(sports)*4),
	}
	for i, sport := range sports {
		c.sportsByID[sport.ID] = i
		for _, p := range productsFor(sport) {
			c.productsByID[p.ID] = len(c.products)
			c.products = append(c.products, p)
		}
	}
	return c
}

func (c *Catalog) Sports() []Sport {
	return append([]Sport(nil), c.sports...)
}

func (c *Catalog) Sport(id string) (Sport, bool) {
	i, ok := c.sportsByID[id]
	if !ok {
		return Sport{}, false
	}
	return c.sports[i], true
}

func (c *Catalog) Product(id string) (Product, bool) {
	i, ok := c.productsByID[id]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

// Products keeps catalog order: by sport, then the four product kinds.
func (c *Catalog) Products(filter Filter) []Product {
	matched := []Product{}
	for _, p := range c.products {
		if filter.matches(p) {
			matched = append(matched, p)
		}
	}
	return matched
}

// Related lists up to limit other products of the same sport or category.
func (c *Catalog) Related(product Product, limit int) []Product {
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}
	related := []Product{}
	for _, p := range c.products {
		if len(related) == limit {
			break
		}
		if p.ID != product.ID && (p.Sport == product.Sport || p.Category == product.Category) {
			related = append(related, p)
		}
	}
	return related
}

// Categories in order of first appearance.
func (c *Catalog) Categories() []string {
	var categories []string
	seen := make(map[string]bool)
	for _, p := range c.products {
		if !seen[p.Category] {
			seen[p.Category] = true
			categories = append(categories, p.Category)
		}
	}
	return categories
}

func productsFor(sport Sport) []Product {
	name := strings.ToLower(sport.Name)
	return []Product{
		{
			ID:              sport.ID + "-1",
			Name:            sport.Name + " Pro Gear Set",
			Description:     fmt.Sprintf("Professional-grade equipment for %s enthusiasts", name),
			FullDescription: fmt.Sprintf("Elevate your %s game with our Pro Gear Set. This comprehensive kit includes everything you need to perform at your best. Crafted with premium materials and designed for durability, this set is trusted by professionals worldwide.", name),
			Price:           149.99,
			OriginalPrice:   amount(199.99),
			Rating:          4.8,
			Sport:           sport.ID,
			Category:        CategoryEquipment,
			Image:           unsplash("1517836357463-d25dfeac3438", 400, 300),
			Images: []string{
				unsplash("1517836357463-d25dfeac3438", 800, 600),
				unsplash("1571019614242-c5c5dee9f50b", 800, 600),
				unsplash("1534438327276-14e5300c3a48", 800, 600),
			},
			InStock: true,
			Features: []string{
				"Professional-grade materials",
				"Ergonomic design for comfort",
				"Lightweight yet durable",
				"Easy to maintain",
				"Includes carrying case",
			},
			Specifications: map[string]string{
				"Material": "Premium composite",
				"Weight":   "1.2 kg",
				"Warranty": "2 years",
				"Color":    "Black/Silver",
			},
		},
		{
			ID:              sport.ID + "-2",
			Name:            sport.Name + " Training Shoes",
			Description:     fmt.Sprintf("Lightweight, responsive footwear designed for %s", name),
			FullDescription: fmt.Sprintf("Step into excellence with our %s Training Shoes. Advanced cushioning and breathable mesh uppers keep you comfortable during intense sessions, while the outsole offers grip and stability.", sport.Name),
			Price:           129.99,
			Rating:          4.6,
			Sport:           sport.ID,
			Category:        CategoryFootwear,
			Image:           unsplash("1542291026-7eec264c27ff", 400, 300),
			Images: []string{
				unsplash("1542291026-7eec264c27ff", 800, 600),
				unsplash("1560769629-975ec94e6a86", 800, 600),
				unsplash("1595950653106-6c9ebd614d3a", 800, 600),
			},
			InStock: true,
			Features: []string{
				"Advanced cushioning technology",
				"Breathable mesh upper",
				"Superior grip outsole",
				"Lightweight construction",
				"Available in multiple sizes",
			},
			Specifications: map[string]string{
				"Upper":  "Synthetic mesh",
				"Sole":   "Rubber compound",
				"Drop":   "8mm",
				"Weight": "280g per shoe",
			},
		},
		{
			ID:              sport.ID + "-3",
			Name:            sport.Name + " Performance Jersey",
			Description:     "Moisture-wicking fabric for peak performance",
			FullDescription: fmt.Sprintf("Stay cool and perform better with our %s Performance Jersey. The fabric pulls sweat away from your body and the athletic fit allows full range of motion.", sport.Name),
			Price:           59.99,
			OriginalPrice:   amount(79.99),
			Rating:          4.7,
			Sport:           sport.ID,
			Category:        CategoryApparel,
			Image:           unsplash("1556906781-9a412961c28c", 400, 300),
			Images: []string{
				unsplash("1556906781-9a412961c28c", 800, 600),
				unsplash("1571902943202-507ec2618e8f", 800, 600),
				unsplash("1518459031867-a89b944bffe4", 800, 600),
			},
			InStock: true,
			Features: []string{
				"Moisture-wicking technology",
				"Quick-dry fabric",
				"Athletic fit design",
				"Reinforced seams",
				"UV protection",
			},
			Specifications: map[string]string{
				"Material": "92% Polyester, 8% Spandex",
				"Care":     "Machine washable",
				"Fit":      "Athletic",
				"Sizes":    "XS-3XL",
			},
		},
		{
			ID:              sport.ID + "-4",
			Name:            sport.Name + " Training Kit",
			Description:     "Complete training accessories bundle",
			FullDescription: fmt.Sprintf("Get everything you need to level up your %s training with our Training Kit, an all-in-one bundle of essential accessories for home gyms or training on the go.", name),
			Price:           89.99,
			Rating:          4.5,
			Sport:           sport.ID,
			Category:        CategoryTrainingGear,
			Image:           unsplash("1571019614242-c5c5dee9f50b", 400, 300),
			Images: []string{
				unsplash("1571019614242-c5c5dee9f50b", 800, 600),
				unsplash("1534438327276-14e5300c3a48", 800, 600),
				unsplash("1517836357463-d25dfeac3438", 800, 600),
			},
			InStock: true,
			Features: []string{
				"Complete accessory bundle",
				"High-quality materials",
				"Portable design",
				"Suitable for all levels",
				"Storage bag included",
			},
			Specifications: map[string]string{
				"Items Included": "5 pieces",
				"Bag Size":       "45cm x 30cm",
				"Total Weight":   "2.5 kg",
				"Warranty":       "1 year",
			},
		},
	}
}

func unsplash(photo string, width, height int) string {
	return fmt.Sprintf("https://images.unsplash.com/photo-%s?w=%d&h=%d&fit=crop", photo, width, height)
}

func amount(v float64) *float64 {
	return &v
}
