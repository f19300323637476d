// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/Veraticus/stellium/internal/model"
)

// ChartStore defines the contract for the chart library.
type ChartStore interface {
	SaveChart(ctx context.Context, record *model.ChartRecord) error
	UpdateChart(ctx context.Context, record *model.ChartRecord) error
	GetChart(ctx context.Context, id string) (*model.ChartRecord, error)
	GetChartByName(ctx context.Context, name string) (*model.ChartRecord, error)
	FindChart(ctx context.Context, ref string) (*model.ChartRecord, error)
	ListCharts(ctx context.Context) ([]model.ChartRecord, error)
	DeleteChart(ctx context.Context, id string) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}
