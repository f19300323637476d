package model

import "time"

// ChartRecord is a chart saved in the local chart library.
type ChartRecord struct {
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Chart      Chart     `json:"-"`
	ID         string    `json:"id" validate:"omitempty,uuid"`
	Name       string    `json:"name" validate:"required,max=120"`
	Notes      string    `json:"notes,omitempty" validate:"max=2000"`
	ActiveKeys []string  `json:"active_keys,omitempty" validate:"dive,required"`
}

// PointCount returns the number of stored points, usable or not.
func (r ChartRecord) PointCount() int {
	return len(r.Chart)
}
