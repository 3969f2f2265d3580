package extension

import "encoding/binary"

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
