package units

import "spectrasuite/internal/textutil"

// Unit identifies a spectral axis unit.
type Unit string

const (
	Nanometer    Unit = "nm"
	Angstrom     Unit = "angstrom"
	Micron       Unit = "micron"
	Wavenumber   Unit = "wavenumber" // cm^-1
	FrequencyHz  Unit = "frequency_hz"
	FrequencyKHz Unit = "frequency_khz"
	FrequencyMHz Unit = "frequency_mhz"
	FrequencyGHz Unit = "frequency_ghz"
	FrequencyTHz Unit = "frequency_thz"
	FrequencyPHz Unit = "frequency_phz"
	EnergyEV     Unit = "energy_ev"
	EnergyKeV    Unit = "energy_kev"
	EnergyMeV    Unit = "energy_mev"
	Unknown      Unit = "unknown"
)

// Family is the physical quantity type of an axis prior to conversion.
type Family string

const (
	FamilyWavelength Family = "wavelength"
	FamilyWavenumber Family = "wavenumber"
	FamilyFrequency  Family = "frequency"
	FamilyEnergy     Family = "energy"
)

// Family reports which axis family a unit belongs to. Unknown units are
// treated as wavelength, matching the pipeline's nm default.
func (u Unit) Family() Family {
	switch u {
	case Wavenumber:
		return FamilyWavenumber
	case FrequencyHz, FrequencyKHz, FrequencyMHz, FrequencyGHz, FrequencyTHz, FrequencyPHz:
		return FamilyFrequency
	case EnergyEV, EnergyKeV, EnergyMeV:
		return FamilyEnergy
	default:
		return FamilyWavelength
	}
}

// frequencyScale maps frequency units to their Hz multiplier.
var frequencyScale = map[Unit]float64{
	FrequencyHz:  1.0,
	FrequencyKHz: 1e3,
	FrequencyMHz: 1e6,
	FrequencyGHz: 1e9,
	FrequencyTHz: 1e12,
	FrequencyPHz: 1e15,
}

// energyScale maps energy units to their eV multiplier.
var energyScale = map[Unit]float64{
	EnergyEV:  1.0,
	EnergyKeV: 1e3,
	EnergyMeV: 1e6,
}

// unitSpellings maps canonical unit text (see textutil.CanonicalUnit) to the
// unit it names.
var unitSpellings = map[string]Unit{
	"nm":          Nanometer,
	"nanometer":   Nanometer,
	"nanometers":  Nanometer,
	"nanometre":   Nanometer,
	"nanometres":  Nanometer,
	"angstrom":    Angstrom,
	"angstroms":   Angstrom,
	"a":           Angstrom,
	"aa":          Angstrom,
	"um":          Micron,
	"micron":      Micron,
	"microns":     Micron,
	"micrometer":  Micron,
	"micrometers": Micron,
	"cm-1":        Wavenumber,
	"wavenumber":  Wavenumber,
	"kayser":      Wavenumber,
	"hz":          FrequencyHz,
	"khz":         FrequencyKHz,
	"mhz":         FrequencyMHz,
	"ghz":         FrequencyGHz,
	"thz":         FrequencyTHz,
	"phz":         FrequencyPHz,
	"ev":          EnergyEV,
	"kev":         EnergyKeV,
	"mev":         EnergyMeV,
}

// Parse resolves a raw unit annotation to a Unit. The second return reports
// whether the spelling was recognized.
func Parse(raw string) (Unit, bool) {
	unit, ok := unitSpellings[textutil.CanonicalUnit(raw)]
	return unit, ok
}

// IsWavelength reports whether the unit is a plain wavelength unit.
func (u Unit) IsWavelength() bool {
	switch u {
	case Nanometer, Angstrom, Micron:
		return true
	}
	return false
}
