package etad

import "errors"

var (
	// ErrMalformedMetadata is returned when the burst catalogue cannot be
	// built from the annotation document.
	ErrMalformedMetadata = errors.New("malformed annotation metadata")

	// ErrUnknownSwath is returned for a swath identifier the product does
	// not contain.
	ErrUnknownSwath = errors.New("unknown swath")

	// ErrUnknownBurst is returned for a burst index the swath does not
	// contain.
	ErrUnknownBurst = errors.New("unknown burst")

	// ErrUnknownCorrection is returned for a correction name outside the
	// seven stored kinds.
	ErrUnknownCorrection = errors.New("unknown correction")

	// ErrInconsistentSampling is returned when the azimuth sampling or the
	// range start time changes across the bursts selected for a merge.
	ErrInconsistentSampling = errors.New("inconsistent burst sampling")

	// ErrEmptySelection is returned when a merge is requested over zero
	// bursts.
	ErrEmptySelection = errors.New("empty burst selection")
)
