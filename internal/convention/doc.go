// Package convention maps exchange product codes to the quote convention
// used to decode their prices and strikes.
//
// The classification is data: a YAML document listing product codes per
// family. The default table is embedded in the binary and can be extended
// or overridden by a file of the same shape:
//
//	eighths: [C, W, S]
//	thirty_seconds: [TY]
//
// Lookups never fail; unknown codes resolve to model.Straight.
package convention
