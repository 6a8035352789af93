// Package observability provides structured logging and Prometheus metrics
// for the webshop API.
//
// This package implements:
//   - zap logger construction from configuration
//   - HTTP request counters and latency histograms labelled by chi route pattern
//   - authentication outcome counters
package observability
