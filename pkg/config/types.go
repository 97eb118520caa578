package config

// DefaultMaxFloor is the ceiling used for open-ended floor rules when the
// configuration does not set max_floor.
const DefaultMaxFloor = 99

// Project types.
const (
	ProjectApartment = "apartment"
	ProjectVilla     = "villa"
)

// Config is the complete pricing rule set for one project.
type Config struct {
	ProjectType               string               `yaml:"project_type" json:"project_type" toml:"project_type"`
	BasePsf                   float64              `yaml:"base_psf" json:"base_psf" toml:"base_psf"`
	MaxFloor                  int                  `yaml:"max_floor" json:"max_floor" toml:"max_floor"`
	BedroomTypePricing        []BedroomTypePricing `yaml:"bedroom_type_pricing" json:"bedroom_type_pricing" toml:"bedroom_type_pricing"`
	ViewPricing               []ViewPricing        `yaml:"view_pricing" json:"view_pricing" toml:"view_pricing"`
	FloorRiseRules            []FloorRule          `yaml:"floor_rise_rules" json:"floor_rise_rules" toml:"floor_rise_rules"`
	AdditionalCategoryPricing []CategoryPricing    `yaml:"additional_category_pricing" json:"additional_category_pricing" toml:"additional_category_pricing"`
	FlatPriceAdders           []FlatAdder          `yaml:"flat_price_adders,omitempty" json:"flat_price_adders,omitempty" toml:"flat_price_adders"`
	BalconyPricing            *BalconyPricing      `yaml:"balcony_pricing,omitempty" json:"balcony_pricing,omitempty" toml:"balcony_pricing"`
	Optimizer                 OptimizerSettings    `yaml:"optimizer" json:"optimizer" toml:"optimizer"`
}

// BedroomTypePricing sets the base price per square foot for one bedroom type.
type BedroomTypePricing struct {
	Type         string  `yaml:"type" json:"type" toml:"type"`
	BasePsf      float64 `yaml:"base_psf" json:"base_psf" toml:"base_psf"`
	TargetAvgPsf float64 `yaml:"target_avg_psf" json:"target_avg_psf" toml:"target_avg_psf"`
}

type ViewPricing struct {
	View          string  `yaml:"view" json:"view" toml:"view"`
	PsfAdjustment float64 `yaml:"psf_adjustment" json:"psf_adjustment" toml:"psf_adjustment"`
}

// FloorRule adds PsfIncrement for every floor in [StartFloor, EndFloor] and
// JumpIncrement every JumpEveryFloor floors above StartFloor. A nil EndFloor
// is open-ended and resolves to OpenEndFloor.
type FloorRule struct {
	StartFloor     int     `yaml:"start_floor" json:"start_floor" toml:"start_floor"`
	EndFloor       *int    `yaml:"end_floor" json:"end_floor" toml:"end_floor"`
	PsfIncrement   float64 `yaml:"psf_increment" json:"psf_increment" toml:"psf_increment"`
	JumpEveryFloor int     `yaml:"jump_every_floor" json:"jump_every_floor,omitempty" toml:"jump_every_floor"`
	JumpIncrement  float64 `yaml:"jump_increment" json:"jump_increment,omitempty" toml:"jump_increment"`
}

// HasJump reports whether the rule carries periodic jump premiums.
func (r FloorRule) HasJump() bool {
	return r.JumpEveryFloor > 0 && r.JumpIncrement > 0
}

// CategoryPricing adjusts PSF for units whose Column value equals Category.
type CategoryPricing struct {
	Column        string  `yaml:"column" json:"column" toml:"column"`
	Category      string  `yaml:"category" json:"category" toml:"category"`
	PsfAdjustment float64 `yaml:"psf_adjustment" json:"psf_adjustment" toml:"psf_adjustment"`
}

// FlatAdder adds a lump sum to units listed by name or matching every
// column constraint.
type FlatAdder struct {
	Units   []string            `yaml:"units,omitempty" json:"units,omitempty" toml:"units"`
	Columns map[string][]string `yaml:"columns,omitempty" json:"columns,omitempty" toml:"columns"`
	Amount  float64             `yaml:"amount" json:"amount" toml:"amount"`
}

// BalconyPricing prices FullAreaPct percent of a balcony at the full rate and
// the remainder at RemainderRate (a fraction of the full rate).
type BalconyPricing struct {
	FullAreaPct   float64 `yaml:"full_area_pct" json:"full_area_pct" toml:"full_area_pct"`
	RemainderRate float64 `yaml:"remainder_rate" json:"remainder_rate" toml:"remainder_rate"`
}

// OptimizerSettings tunes the gradient descent search.
type OptimizerSettings struct {
	LearningRate         float64 `yaml:"learning_rate" json:"learning_rate" toml:"learning_rate"`
	MaxIterations        int     `yaml:"max_iterations" json:"max_iterations" toml:"max_iterations"`
	ConvergenceThreshold float64 `yaml:"convergence_threshold" json:"convergence_threshold" toml:"convergence_threshold"`
	Epsilon              float64 `yaml:"epsilon" json:"epsilon" toml:"epsilon"`
	ConstraintFactor     float64 `yaml:"constraint_factor" json:"constraint_factor" toml:"constraint_factor"`
}

// Default optimizer settings.
const (
	DefaultLearningRate         = 0.05
	DefaultMaxIterations        = 1000
	DefaultConvergenceThreshold = 1e-6
	DefaultEpsilon              = 1.0
	DefaultConstraintFactor     = 0.01
)

// WithDefaults fills zero fields with the package defaults.
func (s OptimizerSettings) WithDefaults() OptimizerSettings {
	if s.LearningRate == 0 {
		s.LearningRate = DefaultLearningRate
	}
	if s.MaxIterations == 0 {
		s.MaxIterations = DefaultMaxIterations
	}
	if s.ConvergenceThreshold == 0 {
		s.ConvergenceThreshold = DefaultConvergenceThreshold
	}
	if s.Epsilon == 0 {
		s.Epsilon = DefaultEpsilon
	}
	if s.ConstraintFactor == 0 {
		s.ConstraintFactor = DefaultConstraintFactor
	}
	return s
}

// Override returns s with every non-zero field of o applied on top.
func (s OptimizerSettings) Override(o OptimizerSettings) OptimizerSettings {
	if o.LearningRate != 0 {
		s.LearningRate = o.LearningRate
	}
	if o.MaxIterations != 0 {
		s.MaxIterations = o.MaxIterations
	}
	if o.ConvergenceThreshold != 0 {
		s.ConvergenceThreshold = o.ConvergenceThreshold
	}
	if o.Epsilon != 0 {
		s.Epsilon = o.Epsilon
	}
	if o.ConstraintFactor != 0 {
		s.ConstraintFactor = o.ConstraintFactor
	}
	return s
}

// Mode returns the project type, defaulting to apartment.
func (c *Config) Mode() string {
	if c.ProjectType == "" {
		return ProjectApartment
	}
	return c.ProjectType
}

// OpenEndFloor is the concrete ceiling for floor rules with no end floor.
func (c *Config) OpenEndFloor() int {
	if c.MaxFloor > 0 {
		return c.MaxFloor
	}
	return DefaultMaxFloor
}

// BedroomType returns the first pricing entry for the given type, or nil.
func (c *Config) BedroomType(t string) *BedroomTypePricing {
	for i := range c.BedroomTypePricing {
		if c.BedroomTypePricing[i].Type == t {
			return &c.BedroomTypePricing[i]
		}
	}
	return nil
}

// View returns the first pricing entry for the given view, or nil.
func (c *Config) View(v string) *ViewPricing {
	for i := range c.ViewPricing {
		if c.ViewPricing[i].View == v {
			return &c.ViewPricing[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	out.BedroomTypePricing = append([]BedroomTypePricing(nil), c.BedroomTypePricing...)
	out.ViewPricing = append([]ViewPricing(nil), c.ViewPricing...)
	out.AdditionalCategoryPricing = append([]CategoryPricing(nil), c.AdditionalCategoryPricing...)
	out.FloorRiseRules = CloneFloorRules(c.FloorRiseRules)
	if c.FlatPriceAdders != nil {
		out.FlatPriceAdders = make([]FlatAdder, len(c.FlatPriceAdders))
		for i, a := range c.FlatPriceAdders {
			a.Units = append([]string(nil), a.Units...)
			if a.Columns != nil {
				cols := make(map[string][]string, len(a.Columns))
				for k, v := range a.Columns {
					cols[k] = append([]string(nil), v...)
				}
				a.Columns = cols
			}
			out.FlatPriceAdders[i] = a
		}
	}
	if c.BalconyPricing != nil {
		bp := *c.BalconyPricing
		out.BalconyPricing = &bp
	}
	return &out
}

// CloneFloorRules copies rules including their EndFloor pointers.
func CloneFloorRules(rules []FloorRule) []FloorRule {
	if rules == nil {
		return nil
	}
	out := make([]FloorRule, len(rules))
	for i, r := range rules {
		if r.EndFloor != nil {
			end := *r.EndFloor
			r.EndFloor = &end
		}
		out[i] = r
	}
	return out
}
