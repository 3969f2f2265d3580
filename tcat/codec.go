package tcat

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

func putQuadlet(raw []byte, val uint32) {
	binary.BigEndian.PutUint32(raw, val)
}

func getQuadlet(raw []byte) uint32 {
	return binary.BigEndian.Uint32(raw)
}

func putBoolQuadlet(raw []byte, val bool) {
	var v uint32
	if val {
		v = 1
	}
	putQuadlet(raw, v)
}

func getBoolQuadlet(raw []byte) bool {
	return getQuadlet(raw) > 0
}

// swapQuadletBytes reverses the byte order of every complete 4-byte group
// in place. Text fields are stored as little-endian data within big-endian
// quadlets, so the same operation encodes and decodes.
func swapQuadletBytes(raw []byte) {
	for pos := 0; pos+4 <= len(raw); pos += 4 {
		raw[pos], raw[pos+3] = raw[pos+3], raw[pos]
		raw[pos+1], raw[pos+2] = raw[pos+2], raw[pos+1]
	}
}

// BuildLabel encodes name into a label field of the given size. The field
// is NUL padded; size must leave room for at least one terminating NUL.
func BuildLabel(name string, size int) ([]byte, error) {
	if len(name) >= size {
		return nil, fmt.Errorf("insufficient field size %d for label %q", size, name)
	}

	raw := make([]byte, size)
	copy(raw, name)
	swapQuadletBytes(raw)

	return raw, nil
}

// ParseLabel decodes a NUL terminated label field.
func ParseLabel(raw []byte) string {
	data := make([]byte, len(raw))
	copy(data, raw)
	swapQuadletBytes(data)

	if pos := bytes.IndexByte(data, 0x00); pos >= 0 {
		data = data[:pos]
	}

	return string(data)
}

// BuildLabels encodes labels into a field of the given size. Labels are
// separated by a backslash and the sequence is terminated by a pair of
// backslashes.
func BuildLabels(labels []string, size int) ([]byte, error) {
	raw := make([]byte, size)

	pos := 0
	for _, label := range labels {
		if pos+len(label)+1 >= size {
			return nil, fmt.Errorf("insufficient field size %d for %d labels", size, len(labels))
		}
		copy(raw[pos:], label)
		raw[pos+len(label)] = '\\'
		pos += len(label) + 1
	}

	if pos+1 >= size {
		return nil, fmt.Errorf("insufficient field size %d for %d labels", size, len(labels))
	}
	raw[pos] = '\\'

	swapQuadletBytes(raw)

	return raw, nil
}

// ParseLabels decodes a backslash separated sequence of labels. The
// terminator is a pair of backslashes, which yields a vacant chunk when
// the field is split by a single backslash.
func ParseLabels(raw []byte) []string {
	data := make([]byte, len(raw))
	copy(data, raw)
	swapQuadletBytes(data)

	labels := []string{}
	for _, chunk := range bytes.Split(data, []byte{'\\'}) {
		if len(chunk) == 0 {
			break
		}
		labels = append(labels, string(chunk))
	}

	return labels
}
