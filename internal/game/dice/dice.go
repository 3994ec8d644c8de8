// Package dice provides the randomness abstraction and die helpers used by
// the roll engine.
package dice

// Source is the randomness provider for dice rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Die rolls one fair die with the given number of sides.
//
// Precondition: sides >= 1.
// Postcondition: 1 <= result <= sides.
func Die(src Source, sides int) int {
	return src.Intn(sides) + 1
}

// Tearing rolls one die twice and keeps the higher face.
//
// Postcondition: 1 <= result <= sides.
func Tearing(src Source, sides int) int {
	return max(Die(src, sides), Die(src, sides))
}

// Percentile rolls a d100.
//
// Postcondition: 1 <= result <= 100.
func Percentile(src Source) int {
	return Die(src, 100)
}

// Coin reports the outcome of a fair 50/50 draw.
func Coin(src Source) bool {
	return Die(src, 2) == 2
}
