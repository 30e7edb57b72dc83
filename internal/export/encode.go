package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

// Supported formats.
const (
	FormatCSV     = "csv"
	FormatParquet = "parquet"
)

// Encode renders records in the named format.
func Encode(format string, records []Record, compression string) ([]byte, error) {
	switch format {
	case FormatCSV:
		return EncodeCSV(records)
	case FormatParquet:
		return EncodeParquet(records, compression)
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

// EncodeCSV writes records with a header row.
func EncodeCSV(records []Record) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		if err := w.Write(r.csvRow()); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// memFile is an in-memory parquet sink.
type memFile struct {
	buffer *bytes.Buffer
}

func newMemFile() *memFile {
	return &memFile{buffer: &bytes.Buffer{}}
}

func (m *memFile) Create(string) (source.ParquetFile, error) { return m, nil }
func (m *memFile) Open(string) (source.ParquetFile, error)   { return m, nil }
func (m *memFile) Seek(int64, int) (int64, error)            { return int64(m.buffer.Len()), nil }
func (m *memFile) Read([]byte) (int, error)                  { return 0, fmt.Errorf("read not supported") }
func (m *memFile) Write(b []byte) (int, error)               { return m.buffer.Write(b) }
func (m *memFile) Close() error                              { return nil }

// EncodeParquet writes records as a single parquet file.
func EncodeParquet(records []Record, compression string) ([]byte, error) {
	mem := newMemFile()
	pw, err := writer.NewParquetWriter(mem, new(Record), 1)
	if err != nil {
		return nil, fmt.Errorf("new parquet writer: %w", err)
	}
	pw.CompressionType = compressionCodec(compression)

	for _, rec := range records {
		if err := pw.Write(rec); err != nil {
			pw.WriteStop()
			return nil, fmt.Errorf("write parquet record: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return nil, fmt.Errorf("finalize parquet: %w", err)
	}
	return mem.buffer.Bytes(), nil
}

func compressionCodec(name string) parquet.CompressionCodec {
	switch strings.ToLower(name) {
	case "snappy":
		return parquet.CompressionCodec_SNAPPY
	case "gzip":
		return parquet.CompressionCodec_GZIP
	default:
		return parquet.CompressionCodec_UNCOMPRESSED
	}
}
