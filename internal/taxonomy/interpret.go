package taxonomy

// KappaThresholds are the upper bounds of the interpretation buckets, in
// ascending order. A kappa below Poor is worse than random; one at or above
// Substantial is almost perfect.
type KappaThresholds struct {
	Poor        float64
	Slight      float64
	Fair        float64
	Moderate    float64
	Substantial float64
}

// LandisKochThresholds are the published Landis & Koch (1977) cut points.
var LandisKochThresholds = KappaThresholds{
	Poor:        0.0,
	Slight:      0.20,
	Fair:        0.40,
	Moderate:    0.60,
	Substantial: 0.80,
}

// InterpreterFromThresholds builds an Interpreter over custom cut points,
// keeping the Landis-Koch bucket names.
func InterpreterFromThresholds(th KappaThresholds) Interpreter {
	return func(kappa float64) string {
		switch {
		case kappa < th.Poor:
			return "Poor (worse than random)"
		case kappa < th.Slight:
			return "Slight agreement"
		case kappa < th.Fair:
			return "Fair agreement"
		case kappa < th.Moderate:
			return "Moderate agreement"
		case kappa < th.Substantial:
			return "Substantial agreement"
		default:
			return "Almost perfect agreement"
		}
	}
}

// InterpretLandisKoch buckets a kappa value on the Landis-Koch scale.
func InterpretLandisKoch(kappa float64) string {
	return InterpreterFromThresholds(LandisKochThresholds)(kappa)
}
