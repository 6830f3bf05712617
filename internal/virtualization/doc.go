// Package virtualization splits stream periods into calendar-aligned virtual periods,
// values them against sparse price series, normalizes transfers into the same shape and
// merges transfers that settle part of a stream into the matching stream bucket.
//
// Everything in this package is a pure function of its arguments. The evaluation instant
// used for ongoing streams is passed in explicitly.
package virtualization
