package cost

// Penalty weights shared by the objective functions.
const (
	// NegativeWeight scales the backstop penalty on raw negative parameters.
	NegativeWeight = 1000.0
	// MonotonicityWeight scales the penalty on any drop in cumulative floor premium.
	MonotonicityWeight = 1000.0
	// FloorFactorMultiplier raises the stay-close factor for floor-rule parameters.
	FloorFactorMultiplier = 2.0
	// MonotonicityFloors is the highest floor the monotonicity check walks to.
	MonotonicityFloors = 49
)
