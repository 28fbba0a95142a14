// Package domain models daily GNSS position time series and the slow slip
// events detected in them.
//
// # Data Source
//
// Each station contributes a daily coordinate solution: east and north offsets
// in millimeters relative to the station's reference position, each with a
// one-sigma formal uncertainty. Solutions arrive as dense day-indexed arrays
// aligned to a shared network calendar; a zero-valued date marks a day with no
// solution (receiver outage, processing gap, pre-installation).
//
// # Conventions
//
// Days are integer indices into the network calendar. A station's first and
// last operational days are the first and last indices with a valid date.
// Positions and displacements are millimeters; uncertainties are one-sigma
// millimeters; distances between stations are kilometers along the WGS-84
// ellipsoid.
//
// Slope scores summarize the local trend of a position component over a
// moving window centered on each day. Score sign follows the processing
// convention of the upstream solution provider and may be flipped by
// configuration before thresholding.
//
// # Catalog IDs
//
// Catalog event IDs are deterministic SHA-256 hashes of the event's date span
// and participating stations. This enables idempotent upserts downstream and
// replay safety: re-detecting over the same input produces the same IDs.
// See [CatalogEvent.ComputeID].
package domain
