package colorsafe

import "errors"

// Sentinel errors a caller can match against with errors.Is. They
// correspond to the error kinds named in the format's error handling
// design: dimension problems fail synchronously, capacity and
// correction problems are reported per call, and segmentation/metadata
// problems are reported per page.
var (
	// ErrInvalidDimensions means a width isn't a multiple of 8, or a
	// supplied size is negative or zero where positive is required.
	ErrInvalidDimensions = errors.New("colorsafe: invalid dimensions")

	// ErrCapacityExceeded means the payload needs more pages than the
	// fixed 8-digit page number fields can address.
	ErrCapacityExceeded = errors.New("colorsafe: payload exceeds available page capacity")

	// ErrRSUncorrectable means at least one sector's Reed-Solomon
	// block could not be corrected during decode. The returned data,
	// if any, reflects a best-effort partial recovery.
	ErrRSUncorrectable = errors.New("colorsafe: one or more blocks were not Reed-Solomon correctable")

	// ErrSegmentationFailed means a page's sector grid could not be
	// located from the scanned image (no beginning or ending cap).
	ErrSegmentationFailed = errors.New("colorsafe: could not segment page into sectors")

	// ErrMetadataMissing means decode finished without ever
	// recovering all of the required-in-order metadata keys.
	ErrMetadataMissing = errors.New("colorsafe: required metadata missing from scanned pages")
)
