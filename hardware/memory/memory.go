// Package memory implements the GBA's seven CPU-visible memory regions and
// a Memory type that routes a 32-bit address to the correct one, exactly as
// described by the bus package's CPUBus/DebuggerBus interfaces.
package memory

import (
	"fmt"

	"github.com/jetsetilly/gba/hardware/memory/bus"
	"github.com/jetsetilly/gba/logger"
)

// Region sizes and base addresses, per the GBA memory map.
const (
	biosBase    = 0x0000_0000
	biosSize    = 16 * 1024
	ewramBase   = 0x0200_0000
	ewramSize   = 256 * 1024
	iwramBase  = 0x0300_0000
	iwramSize  = 32 * 1024
	ioregBase   = 0x0400_0000
	ioregSize   = 1024
	paletteBase = 0x0500_0000
	paletteSize = 1024
	vramBase    = 0x0600_0000
	vramSize    = 96 * 1024
	oamBase     = 0x0700_0000
	oamSize     = 1024

	// vramWrapAt and vramWrapTo implement the "values >= 0x18000 wrap to
	// 0x10000" mirroring quirk: the 32 KiB block at 0x18000 of the 128 KiB
	// VRAM window is really a mirror of the block at 0x10000.
	vramWrapAt = 0x18000
	vramWrapTo = 0x10000
)

// Memory implements bus.CPUBus and bus.DebuggerBus over the GBA's seven
// memory regions.
type Memory struct {
	bios    []uint8
	ewram   []uint8
	iwram  []uint8
	ioreg   []uint8
	palette []uint8
	vram    []uint8
	oam     []uint8
}

// NewMemory allocates a zeroed Memory with every region at its GBA size.
func NewMemory() *Memory {
	return &Memory{
		bios:    make([]uint8, biosSize),
		ewram:   make([]uint8, ewramSize),
		iwram:  make([]uint8, iwramSize),
		ioreg:   make([]uint8, ioregSize),
		palette: make([]uint8, paletteSize),
		vram:    make([]uint8, vramSize),
		oam:     make([]uint8, oamSize),
	}
}

// LoadBIOS copies data into the BIOS region, starting at offset 0. It is the
// caller's responsibility to have obtained the BIOS image; this package
// never loads files itself (out of scope, per the cartridge/BIOS-loading
// Non-goal).
func (m *Memory) LoadBIOS(data []uint8) {
	n := copy(m.bios, data)
	if n < len(data) {
		logger.Logf("memory", "BIOS image truncated to %d bytes", n)
	}
}

// region resolves an address to the backing slice and an index within it,
// or reports that the address is unmapped.
func (m *Memory) region(address uint32) (slice []uint8, index uint32, writable bool, ok bool) {
	switch {
	case address >= biosBase && address < biosBase+biosSize:
		return m.bios, address - biosBase, false, true

	case address >= ewramBase && address < ewramBase+0x0100_0000:
		return m.ewram, (address - ewramBase) & (ewramSize - 1), true, true

	case address >= iwramBase && address < iwramBase+0x0100_0000:
		return m.iwram, (address - iwramBase) & (iwramSize - 1), true, true

	case address >= ioregBase && address < ioregBase+0x0100_0000:
		idx := (address - ioregBase) & (ioregSize - 1)
		return m.ioreg, idx, false, true

	case address >= paletteBase && address < paletteBase+0x0100_0000:
		return m.palette, (address - paletteBase) & (paletteSize - 1), true, true

	case address >= vramBase && address < vramBase+0x0100_0000:
		idx := (address - vramBase) & (0x20000 - 1)
		if idx >= vramWrapAt {
			idx -= vramWrapAt - vramWrapTo
		}
		return m.vram, idx, true, true

	case address >= oamBase && address < oamBase+0x0100_0000:
		return m.oam, (address - oamBase) & (oamSize - 1), true, true
	}

	return nil, 0, false, false
}

// ReadByte implements bus.CPUBus.
func (m *Memory) ReadByte(address uint32) (uint8, error) {
	slice, index, _, ok := m.region(address)
	if !ok {
		return 0, bus.ErrUnmappedAddress{Address: address}
	}
	return slice[index], nil
}

// WriteByte implements bus.CPUBus. Writes to read-only regions (BIOS, and the
// I/O register stubs, which always read 0) are silently dropped, per §4.1.
func (m *Memory) WriteByte(address uint32, value uint8) error {
	slice, index, writable, ok := m.region(address)
	if !ok {
		return bus.ErrUnmappedAddress{Address: address}
	}
	if !writable {
		return nil
	}
	slice[index] = value
	return nil
}

// ReadHalfWord implements bus.CPUBus, composed from two byte reads in
// little-endian order.
func (m *Memory) ReadHalfWord(address uint32) (uint16, error) {
	lo, err := m.ReadByte(address)
	if err != nil {
		return 0, err
	}
	hi, err := m.ReadByte(address + 1)
	if err != nil {
		return 0, err
	}
	return uint16(lo) | uint16(hi)<<8, nil
}

// WriteHalfWord implements bus.CPUBus, composed from two byte writes in
// little-endian order.
func (m *Memory) WriteHalfWord(address uint32, value uint16) error {
	if err := m.WriteByte(address, uint8(value)); err != nil {
		return err
	}
	return m.WriteByte(address+1, uint8(value>>8))
}

// ReadWord implements bus.CPUBus, composed from four byte reads in
// little-endian order.
func (m *Memory) ReadWord(address uint32) (uint32, error) {
	var v uint32
	for i := uint32(0); i < 4; i++ {
		b, err := m.ReadByte(address + i)
		if err != nil {
			return 0, err
		}
		v |= uint32(b) << (8 * i)
	}
	return v, nil
}

// WriteWord implements bus.CPUBus, composed from four byte writes in
// little-endian order.
func (m *Memory) WriteWord(address uint32, value uint32) error {
	for i := uint32(0); i < 4; i++ {
		if err := m.WriteByte(address+i, uint8(value>>(8*i))); err != nil {
			return err
		}
	}
	return nil
}

// PeekByte implements bus.DebuggerBus. Identical to ReadByte: this memory
// model has no read side effects to avoid.
func (m *Memory) PeekByte(address uint32) (uint8, error) {
	return m.ReadByte(address)
}

// PokeByte implements bus.DebuggerBus. Unlike WriteByte, a poke is allowed
// to write through the BIOS region -- it is a debugging operation, not
// normal machine operation.
func (m *Memory) PokeByte(address uint32, value uint8) error {
	slice, index, _, ok := m.region(address)
	if !ok {
		return bus.ErrUnmappedAddress{Address: address}
	}
	slice[index] = value
	return nil
}

// String summarizes region sizes, useful for logging at startup.
func (m *Memory) String() string {
	return fmt.Sprintf("bios=%dK ewram=%dK iwram=%dK palette=%dK vram=%dK oam=%dK",
		len(m.bios)/1024, len(m.ewram)/1024, len(m.iwram)/1024,
		len(m.palette)/1024, len(m.vram)/1024, len(m.oam)/1024)
}

var _ bus.CPUBus = (*Memory)(nil)
var _ bus.DebuggerBus = (*Memory)(nil)
