// Package modules contains the built-in content checks.
// Import this package to register all modules via their init() functions.
package modules
