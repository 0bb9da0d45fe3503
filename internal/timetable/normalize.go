package timetable

import "strings"

// NormalizeText collapses runs of whitespace (spaces, tabs, newlines) into
// single spaces and trims leading/trailing whitespace. Scraped text fragments
// routinely carry layout whitespace from the markup.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
