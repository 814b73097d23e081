// Command fam is the command-line front end for famcontents.
//
// It opens the shared SQLite store directly, so it works with or without a
// running famd. Every listing supports --json for scripting; human output
// uses rounded tables and colors status labels when stdout is a terminal.
package main
