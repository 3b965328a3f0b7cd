// Package cli turns modelctl's command line into an app.Config. Invalid
// flags and values are reported as an ExitError carrying the process exit
// code.
package cli
