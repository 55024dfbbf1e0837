package memory_test

import (
	"errors"
	"testing"

	"github.com/jetsetilly/gba/hardware/memory"
	"github.com/jetsetilly/gba/hardware/memory/bus"
	"github.com/jetsetilly/gba/test"
)

func TestWordRoundTrip(t *testing.T) {
	m := memory.NewMemory()

	regions := []uint32{0x0200_0000, 0x0300_0000, 0x0500_0000, 0x0600_0000, 0x0700_0000}
	for _, base := range regions {
		err := m.WriteWord(base, 0xDEAD_BEEF)
		test.ExpectSuccess(t, err)

		v, err := m.ReadWord(base)
		test.ExpectSuccess(t, err)
		test.ExpectEquality(t, v, uint32(0xDEAD_BEEF))
	}
}

func TestHalfWordLittleEndianComposition(t *testing.T) {
	m := memory.NewMemory()

	err := m.WriteHalfWord(0x0300_0000, 0xABCD)
	test.ExpectSuccess(t, err)

	lo, err := m.ReadByte(0x0300_0000)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, lo, uint8(0xCD))

	hi, err := m.ReadByte(0x0300_0001)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, hi, uint8(0xAB))
}

func TestBIOSIsReadOnly(t *testing.T) {
	m := memory.NewMemory()
	m.LoadBIOS([]uint8{0x11, 0x22, 0x33, 0x44})

	err := m.WriteByte(0x0000_0000, 0xFF)
	test.ExpectSuccess(t, err)

	v, err := m.ReadByte(0x0000_0000)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint8(0x11))
}

func TestEWRAMMirroring(t *testing.T) {
	m := memory.NewMemory()

	err := m.WriteByte(0x0200_0010, 0x42)
	test.ExpectSuccess(t, err)

	v, err := m.ReadByte(0x0200_0010 + 0x0004_0000)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint8(0x42))
}

func TestVRAMWraparound(t *testing.T) {
	m := memory.NewMemory()

	err := m.WriteByte(0x0601_0000, 0x7E)
	test.ExpectSuccess(t, err)

	v, err := m.ReadByte(0x0601_8000)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint8(0x7E))
}

func TestUnmappedAddressFaults(t *testing.T) {
	m := memory.NewMemory()

	_, err := m.ReadByte(0x0800_0000)
	test.ExpectFailure(t, err)

	var unmapped bus.ErrUnmappedAddress
	if !errors.As(err, &unmapped) {
		t.Errorf("expected bus.ErrUnmappedAddress, got %T", err)
	}
}

func TestPokeDoesNotRespectBIOSWriteProtection(t *testing.T) {
	m := memory.NewMemory()

	err := m.PokeByte(0x0000_0000, 0x99)
	test.ExpectSuccess(t, err)

	v, err := m.PeekByte(0x0000_0000)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint8(0x99))
}
