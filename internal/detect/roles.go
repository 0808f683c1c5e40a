package detect

// Role tags the function a column plays in a spectral table.
type Role int

const (
	RoleUnrecognized Role = iota
	RoleWavelength
	RoleFlux
	RoleUncertainty
	RoleMetadata
)

func (r Role) String() string {
	switch r {
	case RoleWavelength:
		return "wavelength"
	case RoleFlux:
		return "flux"
	case RoleUncertainty:
		return "uncertainty"
	case RoleMetadata:
		return "metadata"
	default:
		return "unrecognized"
	}
}

// Detection methods, recorded verbatim in provenance.
const (
	MethodAliases          = "aliases"
	MethodUnitHint         = "unit_hint"
	MethodNumericHeuristic = "numeric_heuristic"
)

// Match-vocabulary tables. Extending detection means extending these tables,
// not the matching code.

// waveTokens score a column toward the wavelength role.
var waveTokens = map[string]int{
	"wavelength": 6,
	"lambda":     6,
	"wave":       4,
	"wl":         4,
	"lam":        4,
	"loglam":     4,
	"nm":         3,
	"angstrom":   3,
	"micron":     3,
	"um":         3,
	"wavenumber": 4,
	"frequency":  4,
	"energy":     4,
	"length":     1, // "Wave Length" split across tokens
}

// fluxTokens score a column toward the flux role.
var fluxTokens = map[string]int{
	"flux":         6,
	"intensity":    6,
	"counts":       4,
	"count":        4,
	"signal":       4,
	"reflectance":  4,
	"transmission": 4,
	"throughput":   4,
	"absorbance":   4,
	"density":      1, // "FluxDensity" secondary token
}

// uncertaintyTokens identify error channels; their presence both marks a
// column as uncertainty-like and penalizes it for any other role.
var uncertaintyTokens = map[string]struct{}{
	"error":       {},
	"err":         {},
	"uncertainty": {},
	"unc":         {},
	"sigma":       {},
	"noise":       {},
	"rms":         {},
	"stddev":      {},
	"std":         {},
	"dev":         {},
	"ivar":        {},
	"variance":    {},
}

// metadataTokens identify harvestable non-numeric columns.
var metadataTokens = map[string]struct{}{
	"target":     {},
	"object":     {},
	"name":       {},
	"instrument": {},
	"telescope":  {},
	"observer":   {},
}

// fluxUnitWords are unit spellings that imply a flux column in the unit-hint
// tier.
var fluxUnitWords = map[string]struct{}{
	"erg":       {},
	"jy":        {},
	"jansky":    {},
	"photon":    {},
	"photons":   {},
	"adu":       {},
	"electron":  {},
	"electrons": {},
	"arbitrary": {},
	"arb":       {},
	"counts":    {},
	"count":     {},
	"mag":       {},
	"dn":        {},
}
