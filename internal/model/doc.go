// Package model defines the shared data types produced by the settlement
// report decoder and consumed by storage and export.
//
// Conventions:
//   - Prices: float64 points, already converted from the exchange's tick
//     notation (32nds, 64ths, eighths) into decimal points
//   - Missing quotes: 0, as printed for illiquid strikes
//   - Contract months: two-character MonthCode, year digit + month letter (e.g. "4H")
//   - Dates: time.Time at midnight UTC
package model
