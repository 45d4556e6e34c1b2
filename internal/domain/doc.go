// Package domain models a routed streamflow network: channel features, the
// time axis of a routing run, and the per-feature flow, velocity, and depth
// series attached to it.
//
// # Data Sources
//
// Two independently produced datasets describe one network. The geometry
// dataset (a GeoPackage "flowpaths" layer) names every channel feature and
// gives the map bounds. The time-series dataset (a t-route NetCDF output)
// carries a time dimension and a feature_id dimension with the routed
// variables. The dataset service decodes both and hands back one JSON payload;
// see [ParseDatasetPayload].
//
// # Identifier Conventions
//
// Geometry ids are usually prefixed ("wb-1234") while series ids are usually
// bare integers (1234). Neither side is guaranteed. Every id from either
// source is passed through [NormalizeFeatureID], which yields the canonical
// "wb-<raw>" form:
//
//	"1234"    →  "wb-1234"
//	"wb-1234" →  "wb-1234"
//
// # Matrix Layout
//
// Variable matrices are row-major by time: matrix[t][f] is the value at time
// index t for the series feature at column f. Rows may be short and cells may
// be null; both read as 0.0. Velocity and depth are optional.
//
// # Flow Range
//
// The color scale is anchored on the smallest strictly positive flow and the
// largest flow over the whole run. Zero and negative flows mark dry channels
// and never pull the minimum down. An empty run has the range {+Inf, 0}.
//
// # Color Scale
//
// Flow is log-normalized against the range, then mapped onto a five-stop ramp
// and a stroke width:
//
//	0.00 blue | 0.25 cyan | 0.50 green | 0.75 amber | 1.00 red
//	width = 1 + normalized * 7   (1..8 px)
//
// Dry channels are drawn in neutral gray at width 1. See [StyleFor].
//
// # Resampling
//
// A resample interval k averages k consecutive timesteps into one; the last
// block may be shorter. Each block is labelled with its first timestamp. See
// [Resample] and [ResampleDataset].
package domain
