// Package tcat implements the general protocol defined by TC Applied
// Technologies (TCAT) for ASICs of the Digital Interface Communication
// Engine (DICE).
//
// The protocol exposes device features as ranges of registers, called
// sections, accessible by IEEE 1394 asynchronous transactions. A table of
// (offset, size) pairs at the start of the register space locates the
// sections. This package provides the section table bootstrap, the codec
// for the global section, clock enumerations, and the transport
// abstraction that the higher level packages build on.
//
// # Transport
//
// The package does not open FireWire nodes itself. Callers inject a
// Transport which initiates a single asynchronous transaction against the
// node. The Read and Write helpers split larger frames into transactions
// of at most MaxFrameSize bytes and add the base address of the register
// space.
//
// # Byte order
//
// All registers are 32-bit quadlets in big-endian byte order. Text fields
// are stored as little-endian data within big-endian quadlets, so label
// codecs reverse every 4-byte group; the operation is its own inverse.
//
// # Basic usage
//
//	sections, err := tcat.ReadGeneralSections(tr, time.Second)
//	if err != nil {
//		return err
//	}
//	params, err := tcat.ReadGlobalParameters(tr, sections.Global, tcat.GlobalSpecification{}, time.Second)
//	if err != nil {
//		return err
//	}
//	fmt.Println(params.Nickname)
package tcat
