package cpu

// thumbFamily identifies one of the Thumb instruction formats. Thumb uses
// the same priority-ordered bit-mask mechanism as ARM (§4.3) but over a
// 16-bit opcode and its own family table, as noted there.
type thumbFamily int

const (
	thumbMoveShifted thumbFamily = iota
	thumbAddSub
	thumbALUImmediate
	thumbALUOperation
	thumbHiRegBX
	thumbPCRelLoad
	thumbLoadStoreReg
	thumbLoadStoreSignExt
	thumbLoadStoreImm
	thumbLoadStoreHalf
	thumbSPRelLoadStore
	thumbLoadAddress
	thumbAddSP
	thumbPushPop
	thumbLoadStoreMultiple
	thumbCondBranch
	thumbSWI
	thumbBranch
	thumbLongBranchLink
	thumbUndefined
)

type thumbFormat struct {
	family thumbFamily
	format uint16
	mask   uint16
}

// thumbFormatTable is matched top-to-bottom against the upper bits of the
// opcode; first match wins.
var thumbFormatTable = []thumbFormat{
	{thumbLongBranchLink, 0xF000, 0xF000},
	{thumbBranch, 0xE000, 0xF800},
	{thumbSWI, 0xDF00, 0xFF00},
	{thumbCondBranch, 0xD000, 0xF000},
	{thumbLoadStoreMultiple, 0xC000, 0xF000},
	{thumbPushPop, 0xB400, 0xF600},
	{thumbAddSP, 0xB000, 0xFF00},
	{thumbLoadAddress, 0xA000, 0xF000},
	{thumbSPRelLoadStore, 0x9000, 0xF000},
	{thumbLoadStoreHalf, 0x8000, 0xF000},
	{thumbLoadStoreImm, 0x6000, 0xE000},
	{thumbLoadStoreSignExt, 0x5200, 0xF200},
	{thumbLoadStoreReg, 0x5000, 0xF200},
	{thumbPCRelLoad, 0x4800, 0xF800},
	{thumbHiRegBX, 0x4400, 0xFC00},
	{thumbALUOperation, 0x4000, 0xFC00},
	{thumbALUImmediate, 0x2000, 0xE000},
	{thumbAddSub, 0x1800, 0xF800},
	{thumbMoveShifted, 0x0000, 0xE000},
}

func classifyThumb(opcode uint16) thumbFamily {
	for _, f := range thumbFormatTable {
		if opcode&f.mask == f.format {
			return f.family
		}
	}
	return thumbUndefined
}
