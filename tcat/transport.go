package tcat

import "time"

// BaseAddress is the base address of the register space in the node
// address space.
const BaseAddress uint64 = 0xffffe0000000

// MaxFrameSize is the maximum number of bytes moved by a single
// asynchronous transaction. Larger frames are split by Read and Write.
const MaxFrameSize = 512

// Transport initiates a single asynchronous transaction against a node.
//
// Implementations decide the transaction code from the frame length; a
// 4-byte frame maps to a quadlet request, anything else to a block
// request. The timeout bounds the completion of the transaction. Both
// methods block until the transaction completes or the timeout elapses.
type Transport interface {
	// Read fills buf with data from addr.
	Read(addr uint64, buf []byte, timeout time.Duration) error
	// Write stores buf to addr.
	Write(addr uint64, buf []byte, timeout time.Duration) error
}

// Read fills buf with register content at offset from the base of the
// register space, splitting the access into transactions of at most
// MaxFrameSize bytes.
func Read(tr Transport, offset int, buf []byte, timeout time.Duration) error {
	addr := BaseAddress + uint64(offset)

	for len(buf) > 0 {
		n := min(len(buf), MaxFrameSize)
		if err := tr.Read(addr, buf[:n], timeout); err != nil {
			return err
		}
		addr += uint64(n)
		buf = buf[n:]
	}

	return nil
}

// Write stores buf to registers at offset from the base of the register
// space, splitting the access into transactions of at most MaxFrameSize
// bytes.
func Write(tr Transport, offset int, buf []byte, timeout time.Duration) error {
	addr := BaseAddress + uint64(offset)

	for len(buf) > 0 {
		n := min(len(buf), MaxFrameSize)
		if err := tr.Write(addr, buf[:n], timeout); err != nil {
			return err
		}
		addr += uint64(n)
		buf = buf[n:]
	}

	return nil
}
