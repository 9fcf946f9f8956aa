// Package peak locates a chromatographic peak and its integration
// boundaries near an expected retention time.
//
// Detection runs in three stages, each a pure function over explicit
// slices so the stages can be used and tested in isolation:
//
//   - [Smooth]: Savitzky–Golay (cubic) smoothing with a window derived from
//     the trace length.
//   - [LocateApex]: the highest strict local maximum of the smoothed trace
//     inside [expectedRT-halfWindow, expectedRT+halfWindow], searching the
//     whole trace when that window holds no samples.
//   - [ExtendBoundaries]: second-derivative inflection points around the
//     apex as seed bounds, then outward extension while the signal stays
//     above baseline + fraction*(apex-baseline), capped at maxExtension
//     samples per side.
//
// [Detect] chains the stages for one [Trace]. Nothing is shared between
// calls, so independent traces can be processed concurrently by the caller.
//
// Errors are [ErrInvalidInput] for malformed input and [ErrNoPeakFound]
// when the search region has no local maximum; both are wrapped with
// context and should be tested with errors.Is.
package peak
