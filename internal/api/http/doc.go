// Package http exposes the desktop over a REST API.
//
// Routes are grouped by resource: workspaces, windows, chat operations on
// chat windows, drag sessions and provider settings. Domain errors map to
// status codes in one table (errors.go).
package http
