// Package report renders placement decisions and field analyses for people
// and machines: a grouped text report, a JSON document, an analysis table,
// and suggested CREATE TABLE statements for the relational side.
//
// Suggested DDL is text only. Nothing in this package touches a database.
package report
