// Package chart renders per-environment package sizes as horizontal bar charts.
//
// Rendering is an optional capability: callers hold a Renderer and check
// Available once instead of handling a missing backend at every call site.
package chart
