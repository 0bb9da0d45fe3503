// Package cli implements the command-line interface for mytimetable-export.
//
// The cli package provides the Cobra-based CLI and the interactive prompts
// for the session token, date range and output filename. It coordinates the
// session, scraper, timetable and calendar packages to fetch the weekly
// pages, reconstruct activities and write the final .ics file, and it is the
// only layer that decides to terminate the process on failure.
package cli
