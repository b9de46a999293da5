// Package ioformat implements the on-disk binary dump codec of spec.md §6:
// one little-endian array per file, no framing, for the graph, a flat
// record array for the query batch, and four weight arrays plus a
// metric-entry table for an optional customization-result dump.
//
// No teacher or pack repository carries a comparable headerless
// fixed-width binary format, so this package is grounded directly on
// spec.md §6's byte layout, using encoding/binary rather than a
// message-framed serialization library: protobuf/msgpack/json all impose a
// self-describing frame the spec explicitly does not want (see DESIGN.md).
package ioformat

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"

	"roadrouter/internal/apperror"
)

func writeU32Slice(path string, vals []uint32) error {
	f, err := os.Create(path)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeDumpIO, "creating dump file").WithField(path)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	buf := make([]byte, 4)
	for _, v := range vals {
		binary.LittleEndian.PutUint32(buf, v)
		if _, err := w.Write(buf); err != nil {
			return apperror.Wrap(err, apperror.CodeDumpIO, "writing u32 array").WithField(path)
		}
	}
	if err := w.Flush(); err != nil {
		return apperror.Wrap(err, apperror.CodeDumpIO, "flushing dump file").WithField(path)
	}
	return nil
}

func writeF32Slice(path string, vals []float32) error {
	f, err := os.Create(path)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeDumpIO, "creating dump file").WithField(path)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	buf := make([]byte, 4)
	for _, v := range vals {
		binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
		if _, err := w.Write(buf); err != nil {
			return apperror.Wrap(err, apperror.CodeDumpIO, "writing f32 array").WithField(path)
		}
	}
	if err := w.Flush(); err != nil {
		return apperror.Wrap(err, apperror.CodeDumpIO, "flushing dump file").WithField(path)
	}
	return nil
}

func readU32Slice(path string) ([]uint32, error) {
	raw, err := readAll(path)
	if err != nil {
		return nil, err
	}
	if len(raw)%4 != 0 {
		return nil, apperror.New(apperror.CodeDumpTruncated, "u32 array length not a multiple of 4 bytes").WithField(path)
	}
	out := make([]uint32, len(raw)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(raw[i*4:])
	}
	return out, nil
}

func readF32Slice(path string) ([]float32, error) {
	raw, err := readAll(path)
	if err != nil {
		return nil, err
	}
	if len(raw)%4 != 0 {
		return nil, apperror.New(apperror.CodeDumpTruncated, "f32 array length not a multiple of 4 bytes").WithField(path)
	}
	out := make([]float32, len(raw)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return out, nil
}

func readAll(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeMalformedDump, "opening dump file").WithField(path)
	}
	defer f.Close()
	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeDumpIO, "reading dump file").WithField(path)
	}
	return raw, nil
}
