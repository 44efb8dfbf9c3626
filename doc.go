// Package deltac implements a differential compression engine: given a
// reference byte string R and a version byte string V, it produces a
// compact delta that, combined with R, reconstructs V. It also converts
// standard deltas into a form that can be applied in place, in a single
// buffer initially holding R.
//
// Three differencers trade time, space, and output quality against each
// other (DiffGreedy, DiffOnePass, DiffCorrecting); InPlacePlan turns any
// of their outputs into a safe, deterministic in-place execution
// schedule; EncodeContainer/DecodeContainer implement the binary delta
// format; Apply/ApplyPlaced/ApplyPlacedInPlace execute the result.
package deltac
