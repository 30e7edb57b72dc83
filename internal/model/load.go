package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Load is one settlement file accepted for storage and export.
type Load struct {
	ID       uuid.UUID
	File     string // Base name of the source file
	Checksum string // SHA-256 of the file contents, hex
	ReadAt   time.Time
	Report   *SettlementReport
}

// NewLoad assigns a fresh load ID.
func NewLoad(file, checksum string, report *SettlementReport) Load {
	return Load{
		ID:       uuid.New(),
		File:     file,
		Checksum: checksum,
		ReadAt:   time.Now().UTC(),
		Report:   report,
	}
}

// ErrDuplicateLoad is returned by a sink that has already stored a file
// with the same checksum.
var ErrDuplicateLoad = errors.New("file already loaded")
