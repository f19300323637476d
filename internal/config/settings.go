package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/Veraticus/stellium/internal/aspect"
	"github.com/Veraticus/stellium/internal/common"
	"github.com/Veraticus/stellium/internal/engine"
	"github.com/Veraticus/stellium/internal/model"
	"github.com/Veraticus/stellium/internal/pattern"
	"github.com/spf13/viper"
)

// Settings is the resolved application configuration.
type Settings struct {
	DatabasePath string
	Engine       engine.Config
	Top          int
	Workers      int
}

// SetDefaults registers default values for every key Load reads.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("output.top", 0)
	v.SetDefault("series.workers", 0)
}

// Load reads settings from the global viper instance.
func Load() (*Settings, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads settings from v. The aspect table and catalog are checked
// here so configuration mistakes surface before any chart is processed.
func LoadFrom(v *viper.Viper) (*Settings, error) {
	table, err := loadTable(v)
	if err != nil {
		return nil, err
	}

	catalog, err := pattern.DefaultCatalog().Subset(v.GetStringSlice("patterns.enabled")...)
	if err != nil {
		return nil, fmt.Errorf("%w: patterns.enabled: %w", common.ErrInvalidConfig, err)
	}

	top := v.GetInt("output.top")
	if top < 0 {
		return nil, fmt.Errorf("%w: output.top must not be negative", common.ErrInvalidConfig)
	}

	workers := v.GetInt("series.workers")
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	dbPath := v.GetString("database.path")
	if dbPath == "" {
		dbPath = DefaultDatabasePath
	}

	return &Settings{
		DatabasePath: ExpandPath(dbPath),
		Engine:       engine.Config{Table: table, Catalog: catalog},
		Top:          top,
		Workers:      workers,
	}, nil
}

func loadTable(v *viper.Viper) (aspect.Table, error) {
	table := aspect.DefaultTable()

	if v.IsSet("aspects.table") {
		var defs []model.AspectDefinition
		if err := v.UnmarshalKey("aspects.table", &defs); err != nil {
			return aspect.Table{}, fmt.Errorf("%w: aspects.table: %w", common.ErrInvalidConfig, err)
		}
		for i := range defs {
			defs[i].Name = model.AspectType(strings.ToLower(string(defs[i].Name)))
			if defs[i].Icon == "" {
				if std, ok := table.Lookup(defs[i].Name); ok {
					defs[i].Icon = std.Icon
				}
			}
		}
		// A custom table carries no tie-break unless one is configured explicitly.
		table = aspect.Table{Definitions: defs}
	}

	orbs := make(map[model.AspectType]float64)
	for _, name := range model.AspectTypes {
		key := "aspects.orbs." + string(name)
		if v.IsSet(key) {
			orbs[name] = v.GetFloat64(key)
		}
	}
	if len(orbs) > 0 {
		// Overridden orbs make a custom table: overlaps need an explicit tie-break.
		table = table.WithOrbs(orbs)
		table.TieBreak = ""
	}

	if tieBreak := v.GetString("aspects.tie_break"); tieBreak != "" {
		table.TieBreak = aspect.TieBreak(strings.ToLower(tieBreak))
	}

	if err := table.Validate(); err != nil {
		return aspect.Table{}, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	return table, nil
}
