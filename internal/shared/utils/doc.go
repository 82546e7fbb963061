// Package utils holds small validation and hashing helpers shared by the
// domain and API layers.
package utils
