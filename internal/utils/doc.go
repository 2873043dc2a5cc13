// Package utils provides shared infrastructure helpers: logger construction,
// configuration loading, and output writers used across the command surface.
package utils
