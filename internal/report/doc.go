// Package report assembles a SettlementReport from a daily settlement file.
//
// The first line carries the business date as MM/DD/YY. Every following
// line is handed to the section scanner; sections are then filtered by
// product and grouped so that all sections of one product are adjacent,
// products in the order they first appear.
package report
