// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package dressipi

import (
	"fmt"
	"strconv"
	"strings"
)

// Item is one product after field-name normalisation. Empty fields were
// not present in the source record.
type Item struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name,omitempty"`
	Price      string `json:"price,omitempty"`
	ImageURL   string `json:"imageUrl,omitempty"`
	ProductURL string `json:"productUrl,omitempty"`
}

func (it Item) empty() bool {
	return it.Name == "" && it.ImageURL == "" && it.ProductURL == ""
}

// RecommendationSet is the seed item and its related items.
type RecommendationSet struct {
	SeedItem *Item  `json:"seedItem,omitempty"`
	Items    []Item `json:"items"`
}

// Field names probed in priority order.
var (
	idKeys    = []string{"id", "garment_id", "item_id", "product_id"}
	nameKeys  = []string{"name", "title", "product_name"}
	priceKeys = []string{"price", "current_price", "sale_price", "price_amount"}
	urlKeys   = []string{"url", "product_url", "link", "pdp_url"}
)

// Normalize maps a related-items payload to a RecommendationSet. The seed
// comes from the seed detail when available, otherwise from the source
// record.
func Normalize(p *Payload) RecommendationSet {
	set := RecommendationSet{Items: []Item{}}
	if p == nil {
		return set
	}

	for _, raw := range itemList(p.Data) {
		rec, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if it := NormalizeItem(rec); !it.empty() {
			set.Items = append(set.Items, it)
		}
	}

	var seed Item
	if rec := detailRecord(p.SeedDetail); rec != nil {
		seed = NormalizeItem(rec)
	}
	if seed.empty() {
		if src, ok := p.Data["source"].(map[string]any); ok {
			seed = NormalizeItem(src)
		}
	}
	if !seed.empty() {
		set.SeedItem = &seed
	}
	return set
}

// NormalizeItem reads one product record.
func NormalizeItem(rec map[string]any) Item {
	return Item{
		ID:         scalarString(first(rec, idKeys)),
		Name:       strings.TrimSpace(scalarString(first(rec, nameKeys))),
		Price:      price(rec),
		ImageURL:   imageURL(rec),
		ProductURL: scalarString(first(rec, urlKeys)),
	}
}

func itemList(data map[string]any) []any {
	for _, k := range []string{"garment_data", "items", "results"} {
		if list, ok := data[k].([]any); ok {
			return list
		}
	}
	return nil
}

// detailRecord unwraps the item detail response, which may nest the record
// under garment_data.
func detailRecord(detail map[string]any) map[string]any {
	if detail == nil {
		return nil
	}
	switch gd := detail["garment_data"].(type) {
	case map[string]any:
		return gd
	case []any:
		if len(gd) > 0 {
			if rec, ok := gd[0].(map[string]any); ok {
				return rec
			}
		}
	}
	return detail
}

func first(rec map[string]any, keys []string) any {
	for _, k := range keys {
		if v, ok := rec[k]; ok && v != nil && scalarString(v) != "" {
			return v
		}
	}
	return nil
}

func price(rec map[string]any) string {
	v := first(rec, priceKeys)
	if v == nil {
		for _, k := range priceKeys {
			if m, ok := rec[k].(map[string]any); ok {
				v = m
				break
			}
		}
	}

	currency := scalarString(rec["currency"])
	var amount string
	switch p := v.(type) {
	case nil:
		return ""
	case map[string]any:
		amount = formatAmount(first(p, []string{"amount", "value", "formatted"}))
		if c := scalarString(p["currency"]); c != "" {
			currency = c
		}
	default:
		amount = formatAmount(p)
	}
	if amount == "" {
		return ""
	}
	if currency != "" && !strings.ContainsAny(amount, "£$€") {
		return currency + " " + amount
	}
	return amount
}

func formatAmount(v any) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'f', 2, 64)
	}
	return strings.TrimSpace(scalarString(v))
}

func imageURL(rec map[string]any) string {
	for _, k := range []string{"image_url", "image", "images", "image_urls", "thumbnail"} {
		if u := urlOf(rec[k]); u != "" {
			return u
		}
	}
	return ""
}

// urlOf accepts a string, a {url|src} object, or a list whose first
// element is either.
func urlOf(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case map[string]any:
		return scalarString(first(x, []string{"url", "src", "href"}))
	case []any:
		if len(x) > 0 {
			return urlOf(x[0])
		}
	}
	return ""
}

// scalarString formats JSON scalars. Whole numbers print without a
// fraction; objects and lists yield "".
func scalarString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case int, int64, int32:
		return fmt.Sprint(x)
	}
	return ""
}
