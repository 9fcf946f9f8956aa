// Package quantile provides order statistics over float64 samples.
//
// All functions treat their input as read-only and work on a sorted copy
// where ordering is needed.
package quantile
