// Package safetensors reads the embedded metadata block of a .safetensors
// file without touching the tensor payload.
//
// The file layout is an 8-byte little-endian header length N, followed by N
// bytes of JSON. The optional "__metadata__" key of that JSON object holds a
// flat string map written by the training tool.
package safetensors

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

// Extension is the model file extension handled by this package.
const Extension = ".safetensors"

// MaxHeaderSize bounds the JSON header read from disk.
const MaxHeaderSize = 100 << 20

var (
	ErrHeaderTooLarge = errors.New("safetensors: header too large")
	ErrHeaderTooSmall = errors.New("safetensors: header too small")
)

// ReadMetadata returns the "__metadata__" map of the file at path. A file
// without a metadata block yields an empty map.
func ReadMetadata(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeMetadata(f)
}

// DecodeMetadata reads the header from r and returns its metadata map.
func DecodeMetadata(r io.Reader) (map[string]string, error) {
	var lenBuf [8]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, fmt.Errorf("read header length: %w", err)
	}
	n := binary.LittleEndian.Uint64(lenBuf[:])
	if n < 2 {
		return nil, ErrHeaderTooSmall
	}
	if n > MaxHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, n)
	}
	hdr := make([]byte, n)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	var top map[string]json.RawMessage
	if err := json.Unmarshal(hdr, &top); err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}
	out := map[string]string{}
	raw, ok := top["__metadata__"]
	if !ok {
		return out, nil
	}
	var meta map[string]any
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("parse __metadata__: %w", err)
	}
	for k, v := range meta {
		out[k] = stringify(v)
	}
	return out, nil
}

// EncodeHeader builds a minimal safetensors file (header only, no tensors)
// carrying meta.
func EncodeHeader(meta map[string]string) ([]byte, error) {
	top := map[string]any{}
	if meta != nil {
		top["__metadata__"] = meta
	}
	hdr, err := json.Marshal(top)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 8, 8+len(hdr))
	binary.LittleEndian.PutUint64(buf, uint64(len(hdr)))
	return append(buf, hdr...), nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}
