// Package location maps successful attack rolls to the body parts they hit.
package location

import (
	"fmt"

	"github.com/cory-johannsen/fate/internal/game/dice"
)

// Region is the initial hit location picked by an attack roll.
type Region int

const (
	Head Region = iota + 1
	RightArm
	LeftArm
	Body
	RightLeg
	LeftLeg
)

// String returns the display name of the region.
func (r Region) String() string {
	switch r {
	case Head:
		return "Head"
	case RightArm:
		return "Right Arm"
	case LeftArm:
		return "Left Arm"
	case Body:
		return "Body"
	case RightLeg:
		return "Right Leg"
	case LeftLeg:
		return "Left Leg"
	default:
		return "Unknown"
	}
}

// Initial returns the region hit by a percentile roll. Rolls below 100 are
// read with their digits reversed.
//
// Precondition: 1 <= roll <= 100.
func Initial(roll int) Region {
	if roll < 100 {
		roll = roll/10 + 10*(roll%10)
	}
	switch {
	case roll > 85:
		return LeftLeg
	case roll > 70:
		return RightLeg
	case roll > 30:
		return Body
	case roll > 20:
		return LeftArm
	case roll > 10:
		return RightArm
	default:
		return Head
	}
}

// Sides holds the arm labels chosen for one attack. A is the primary side.
type Sides struct {
	A, B string
}

// RandomSides picks one of the two orderings of {L, R}.
func RandomSides(src dice.Source) Sides {
	if dice.Coin(src) {
		return Sides{A: "R", B: "L"}
	}
	return Sides{A: "L", B: "R"}
}

func arm(side string) string { return side + "-Arm" }

// chain returns the hit sequence for a region. The final element repeats
// once the sequence is exhausted.
func chain(r Region, s Sides) []string {
	switch r {
	case Head:
		return []string{"Head", "Head", arm(s.A), "Body", arm(s.B), "Body"}
	case Body:
		return []string{"Body", "Body", arm(s.A), "Head", arm(s.B), "Body"}
	case LeftArm:
		return []string{"L-Arm", "L-Arm", "Body", "Head", "Body", arm(s.A)}
	case RightArm:
		return []string{"R-Arm", "R-Arm", "Body", "Head", "Body", arm(s.A)}
	case LeftLeg:
		return []string{"L-Leg", "L-Leg", "Body", arm(s.A), "Head", "Body"}
	case RightLeg:
		return []string{"R-Leg", "R-Leg", "Body", arm(s.A), "Head", "Body"}
	default:
		panic(fmt.Sprintf("location: unknown region %d", r))
	}
}

// Sequence returns exactly hits locations for an attack whose initial roll
// was roll, walking the region's chain and holding on its final element.
//
// Precondition: hits >= 0.
func Sequence(roll, hits int, s Sides) []string {
	seq := chain(Initial(roll), s)
	out := make([]string, hits)
	for i := range out {
		out[i] = seq[min(i, len(seq)-1)]
	}
	return out
}
