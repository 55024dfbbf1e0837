// Package bus defines the memory bus concept shared by the CPU and anything
// that wants to inspect memory without going through the CPU's normal
// access path. Address space is the full 32-bit GBA map; one CPUBus
// implementation covers every region so the CPU never needs to know which
// region an address falls in.
package bus

import "fmt"

// ErrUnmappedAddress indicates an address that does not fall within any
// known memory region. Wrapped with the offending address by implementers.
type ErrUnmappedAddress struct {
	Address uint32
}

func (e ErrUnmappedAddress) Error() string {
	return fmt.Sprintf("unmapped address %#08x", e.Address)
}

// CPUBus defines memory access as seen by the instruction engine. 16 and
// 32-bit accesses are expected to be composed from two (for 16-bit) or
// four (for 32-bit) byte accesses in little-endian order by the
// implementer, consistent with how the real
// bus behaves for misaligned and region-spanning accesses.
type CPUBus interface {
	ReadByte(address uint32) (uint8, error)
	WriteByte(address uint32, value uint8) error

	ReadHalfWord(address uint32) (uint16, error)
	WriteHalfWord(address uint32, value uint16) error

	ReadWord(address uint32) (uint32, error)
	WriteWord(address uint32, value uint32) error
}

// DebuggerBus defines the meta-operations for all memory regions. Think of
// these functions as "debugging" functions, that is operations outside of
// the normal operation of the machine: a Peek must never have a side
// effect a Read might (for example, the GBA's real bus can clear certain
// flags on read; Peek/Poke never do).
type DebuggerBus interface {
	PeekByte(address uint32) (uint8, error)
	PokeByte(address uint32, value uint8) error
}
