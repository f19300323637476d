package model

import "sort"

// AspectType names one of the classical aspects.
type AspectType string

// Aspect types.
const (
	Conjunction AspectType = "conjunction"
	Sextile     AspectType = "sextile"
	Square      AspectType = "square"
	Trine       AspectType = "trine"
	Opposition  AspectType = "opposition"
)

// AspectTypes lists the supported aspect types in their conventional order.
var AspectTypes = []AspectType{Conjunction, Sextile, Square, Trine, Opposition}

// AspectDefinition is one entry of an ordered aspect table.
type AspectDefinition struct {
	Name   AspectType `json:"name" mapstructure:"name" validate:"required,oneof=conjunction sextile square trine opposition"`
	Icon   string     `json:"icon,omitempty" mapstructure:"icon"`
	Angle  float64    `json:"angle" mapstructure:"angle" validate:"gte=0,lte=180"`
	MaxOrb float64    `json:"max_orb" mapstructure:"max_orb" validate:"gte=0,lte=30"`
}

// AspectInstance is a qualifying aspect between two points.
//
// For aspects inside one chart BaseKey < OtherKey. For cross-chart aspects
// BaseKey belongs to the first chart and OtherKey to the second.
type AspectInstance struct {
	BaseKey    string     `json:"base_key"`
	OtherKey   string     `json:"other_key"`
	Type       AspectType `json:"aspect_type"`
	Angle      float64    `json:"angle"`
	Orb        float64    `json:"orb"`
	Separation float64    `json:"separation"`
}

// Pair returns the two keys of the aspect.
func (a AspectInstance) Pair() [2]string {
	return [2]string{a.BaseKey, a.OtherKey}
}

// EndpointKeys returns the sorted set of keys named by the aspects.
func EndpointKeys(aspects []AspectInstance) []string {
	seen := make(map[string]bool)
	keys := make([]string, 0)
	for _, a := range aspects {
		for _, key := range a.Pair() {
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// Involves reports whether key is one of the aspect's endpoints.
func (a AspectInstance) Involves(key string) bool {
	return a.BaseKey == key || a.OtherKey == key
}

// PairKey returns the canonical identity of an unordered key pair.
func PairKey(a, b string) [2]string {
	if b < a {
		a, b = b, a
	}
	return [2]string{a, b}
}
