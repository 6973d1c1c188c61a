package thermo

import "fmt"

// Constraint names the pair of properties held fixed while quantities are
// combined or a mixture is equilibrated.
type Constraint int

const (
	// HP holds enthalpy and pressure fixed (adiabatic, isobaric).
	HP Constraint = iota
	// TP holds temperature and pressure fixed.
	TP
)

func (c Constraint) String() string {
	switch c {
	case HP:
		return "HP"
	case TP:
		return "TP"
	default:
		return fmt.Sprintf("Constraint(%d)", int(c))
	}
}

