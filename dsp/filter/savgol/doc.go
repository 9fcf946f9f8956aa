// Package savgol provides a Savitzky–Golay smoothing filter.
//
// A [Filter] fits a polynomial of a given order to every window of samples
// by least squares and replaces the center sample with the fitted value.
// The coefficients are computed once per (window, order) pair from the
// projection matrix of a centered Vandermonde design, so a filter can be
// reused across traces.
//
// Edges are handled by fitting the polynomial to the first and last full
// window and evaluating it at the edge positions ("interp" mode). The
// output therefore has the same length as the input and reproduces any
// polynomial of degree <= order exactly.
package savgol
