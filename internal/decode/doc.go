// Package decode turns one fixed-width settlement report line into a typed
// model.SettlementRow.
//
// Column layout (0-indexed, half-open byte ranges):
//
//	ID [0,5)  OPEN [6,15)  HIGH [16,25)  LOW [26,35)  LAST [36,45)
//	SETT [46,55)  CHG [55,63)  VOL [63,75)  PSETT [75,86)
//	PVOL [86,98)  OPENINT [98,110)
//
// Price text is interpreted according to the section's quote convention:
// plain decimals, <points>'<eighths>, or <points>'<ticks> in 32nds
// (futures) and 64ths (options). Tick fractions are computed in integer
// quarter-ticks, so every decoded tick price is exactly representable.
//
// Missing prices and volumes are routine and decode to zero. A line whose
// ID is neither a contract month nor a strike, or that has no open
// interest, is reported as ErrNotData: it is not part of the current
// section.
package decode
