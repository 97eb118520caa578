// Package project loads a pricing project directory and runs the
// operations the CLI and dev server share.
package project

import (
	"fmt"

	"github.com/DJKarma/price-prism/pkg/analytics"
	"github.com/DJKarma/price-prism/pkg/config"
	"github.com/DJKarma/price-prism/pkg/optimize"
	"github.com/DJKarma/price-prism/pkg/pricing"
	"github.com/DJKarma/price-prism/pkg/units"
	"github.com/DJKarma/price-prism/pkg/validation"
)

// Project is a loaded pricing configuration and its unit inventory.
type Project struct {
	Dir    string
	Config *config.Config
	Units  []units.Unit
}

// Load reads the pricing configuration and units from dir.
func Load(dir string) (*Project, error) {
	cfg, err := config.LoadProject(dir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	us, err := units.LoadProject(dir)
	if err != nil {
		return nil, fmt.Errorf("loading units: %w", err)
	}
	return &Project{Dir: dir, Config: cfg, Units: us}, nil
}

// Mode resolves the pricing mode, preferring override over the configured
// project type.
func (p *Project) Mode(override string) (pricing.Mode, error) {
	if override != "" {
		return pricing.ParseMode(override)
	}
	return pricing.ParseMode(p.Config.Mode())
}

// Validate checks the configuration and the inventory against it.
func (p *Project) Validate() *validation.Report {
	report := validation.ValidateConfig(p.Config)
	report.Merge(validation.ValidateUnits(p.Units, p.Config))
	return report
}

// Priced is the outcome of pricing a project.
type Priced struct {
	Mode    pricing.Mode         `json:"mode"`
	Units   []pricing.PricedUnit `json:"units"`
	Summary *analytics.Summary   `json:"summary"`
	Report  *validation.Report   `json:"report"`
}

// Price validates the project and prices every unit. A configuration with
// errors is returned as a *validation.ConfigurationError carrying the report.
func (p *Project) Price(mode pricing.Mode) (*Priced, error) {
	report := p.Validate()
	if err := report.Err(); err != nil {
		return nil, err
	}
	priced := pricing.Simulate(p.Units, p.Config, mode, nil)
	summary, analyticsReport := analytics.Analyze(priced, p.Config, mode)
	report.Merge(analyticsReport)
	return &Priced{Mode: mode, Units: priced, Summary: summary, Report: report}, nil
}

// FloorTable lists the cumulative floor premium for floors 1..maxFloor. A
// non-positive maxFloor uses the highest floor in the inventory, falling
// back to the open-range ceiling.
func (p *Project) FloorTable(maxFloor int) []pricing.FloorPremium {
	if maxFloor <= 0 {
		maxFloor = units.MaxFloor(p.Units)
	}
	if maxFloor <= 0 {
		maxFloor = p.Config.OpenEndFloor()
	}
	bands := pricing.ResolveFloorRules(p.Config.FloorRiseRules, p.Config.OpenEndFloor())
	return pricing.PremiumTable(maxFloor, bands)
}

// Optimize validates the project and runs one optimization. Settings in req
// override the configured optimizer section field by field.
func (p *Project) Optimize(scope optimize.Scope, req optimize.Request) (*optimize.Result, error) {
	if err := p.Validate().Err(); err != nil {
		return nil, err
	}
	req.Settings = p.Config.Optimizer.Override(req.Settings)
	return optimize.Run(scope, p.Config, p.Units, req)
}
