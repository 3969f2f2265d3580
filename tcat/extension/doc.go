// Package extension implements the protocol extension defined by TCAT for
// ASICs of DICE.
//
// The extension exposes the routing, mixing, and stream format functions
// of the ASIC as a second table of sections, located at a fixed offset
// above the general register space. Capability registers in the first
// section gate every operation; functions the device does not expose fail
// locally without issuing a transaction.
//
// # Sections
//
// The extension register space carries nine sections: capability, command,
// mixer, peak, router, stream format, current configuration, standalone
// configuration, and application. The current configuration section is a
// read-only mirror of the router and stream format configurations applied
// per rate mode.
//
// # Basic usage
//
//	sections, err := extension.ReadSections(tr, time.Second)
//	if err != nil {
//		return err
//	}
//	caps, err := extension.ReadCaps(tr, sections, time.Second)
//	if err != nil {
//		return err
//	}
//	entries, err := extension.ReadRouterEntries(tr, sections, caps, time.Second)
package extension
