// Package middleware contains the HTTP middleware shared by the routes:
// trace IDs and request logging, bearer authentication, per-user rate
// limiting, and metrics.
package middleware
