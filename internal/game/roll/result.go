package roll

// Color is the presentation category of a Result. Transports map it onto
// their own palette.
type Color int

const (
	ColorNeutral Color = iota
	ColorInfo
	ColorSuccess
	ColorDanger
	ColorCritical
)

// String returns the lowercase category name.
func (c Color) String() string {
	switch c {
	case ColorInfo:
		return "info"
	case ColorSuccess:
		return "success"
	case ColorDanger:
		return "danger"
	case ColorCritical:
		return "critical"
	default:
		return "neutral"
	}
}

// Result is the structured outcome of an invoked request.
//
// Description and Footer use backtick spans to mark rolled values; transports
// decide how to render them.
type Result struct {
	Description string
	Footer      string
	Color       Color
	// Profile is the long name of the profile rolled for, or "".
	Profile string

	// Target and Tests are set for skill tests.
	Target int
	Tests  []TestOutcome

	// Total and Critical are set for dice equations.
	Total    int
	Critical bool
}

// TestOutcome is one percentile roll of a skill test.
type TestOutcome struct {
	Roll    int
	Degrees int
	// Hits lists hit locations for successful attacks.
	Hits []string
}
