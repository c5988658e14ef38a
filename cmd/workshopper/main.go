// Package main provides the entry point for the workshopper CLI.
//
// workshopper collects the workshop items a Steam user has published for
// VTOL VR (missions and aircraft liveries), with their visitor, subscriber,
// favorite, award and comment counts, and exports them to a spreadsheet.
//
// Usage:
//
//	workshopper scrape <username-or-profile-id>...
//	workshopper history [username-or-profile-id]
//	workshopper compare <username-or-profile-id>
//
// See --help for all available options.
package main

// main is the entry point for workshopper.
func main() {
	Execute()
}
