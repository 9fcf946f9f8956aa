// Package diff provides discrete derivatives of sampled signals.
//
// [Gradient] differentiates against the actual sample positions, so
// unevenly spaced data (such as retention-time axes with jitter) is handled
// correctly. [SignChanges] locates the positions where a sequence changes
// sign, which applied to a second derivative yields inflection points.
package diff
