// Package menu holds the read-only catalog views the ordering flow consumes:
// guest-facing resources (tables, counters, rooms) and the menu items with
// their modifiers. Catalog maintenance happens elsewhere; this package only
// describes what admission needs to know, including whether an entry has
// been retired.
package menu
