// Package scraper is the fetch collaborator for the conversion pipeline.
//
// It retrieves weekly timetable pages from the university site using an
// authenticated session cookie, parses the response into a goquery document,
// and detects the login redirect the site serves when the session has
// expired. One page is fetched at a time; pacing between requests is owned
// by the week walker.
package scraper
