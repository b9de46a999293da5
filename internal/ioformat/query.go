package ioformat

import (
	"bufio"
	"encoding/binary"
	"os"

	"roadrouter/internal/apperror"
)

const queryRecordBytes = 12 // from u32 + to u32 + departure_ms u32

// QueryRecord is one entry of the query dump (spec.md §6): a fixed source,
// target, and departure time in milliseconds.
type QueryRecord struct {
	From        uint32
	To          uint32
	DepartureMs uint32
}

// DumpQueries writes queries as a flat array of fixed-width records, no
// framing (spec.md §6 "Query dump").
func DumpQueries(path string, queries []QueryRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeDumpIO, "creating query dump").WithField(path)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	buf := make([]byte, queryRecordBytes)
	for _, q := range queries {
		binary.LittleEndian.PutUint32(buf[0:4], q.From)
		binary.LittleEndian.PutUint32(buf[4:8], q.To)
		binary.LittleEndian.PutUint32(buf[8:12], q.DepartureMs)
		if _, err := w.Write(buf); err != nil {
			return apperror.Wrap(err, apperror.CodeDumpIO, "writing query record").WithField(path)
		}
	}
	if err := w.Flush(); err != nil {
		return apperror.Wrap(err, apperror.CodeDumpIO, "flushing query dump").WithField(path)
	}
	return nil
}

// LoadQueries reads a query dump back into memory.
func LoadQueries(path string) ([]QueryRecord, error) {
	raw, err := readAll(path)
	if err != nil {
		return nil, err
	}
	if len(raw)%queryRecordBytes != 0 {
		return nil, apperror.New(apperror.CodeDumpTruncated, "query dump length not a multiple of record size").WithField(path)
	}
	out := make([]QueryRecord, len(raw)/queryRecordBytes)
	for i := range out {
		base := i * queryRecordBytes
		out[i] = QueryRecord{
			From:        binary.LittleEndian.Uint32(raw[base:]),
			To:          binary.LittleEndian.Uint32(raw[base+4:]),
			DepartureMs: binary.LittleEndian.Uint32(raw[base+8:]),
		}
	}
	return out, nil
}
