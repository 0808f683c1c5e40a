// Package detect decides which column of a tabular dataset carries the
// wavelength-like axis, which carries flux, and which (if any) carries
// uncertainty, together with the axis family and unit, using a strict
// three-tier strategy: scored alias matching, unit-hint matching, and a
// numeric monotonic-ramp heuristic. Tier failures silently defer to the next
// tier; only exhaustion of all tiers is an error.
package detect
