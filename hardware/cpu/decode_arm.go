package cpu

// armFamily identifies one of the 21 ARM instruction families classified
// by §4.3, plus an "undefined" sentinel for opcodes matching none of them.
type armFamily int

const (
	famMUL armFamily = iota
	famMULL
	famSWP
	famLDRH_STRH
	famLDRSB_LDRSH
	famMRS
	famMSR_REG
	famMSR_IMM
	famBX
	famDPImmShift
	famDPRegShift
	famUndefinedDP
	famDPImmValue
	famLDRSTRImmOff
	famLDRSTRRegOff
	famLDMSTM
	famBranch
	famSTC_LDC
	famCDP
	famMCR_MRC
	famSWI
	famUndefined
)

// armFormat is one (format, mask) pair from §4.3's classifier table. The
// table is consulted in priority order -- first match wins.
type armFormat struct {
	family armFamily
	format uint32
	mask   uint32
}

// armFormatTable is the priority-ordered classifier. Order matters: it
// resolves the overlaps intrinsic to the ARM encoding.
var armFormatTable = []armFormat{
	{famMUL, 0x009, 0xFCF},
	{famMULL, 0x089, 0xF8F},
	{famSWP, 0x109, 0xFBF},
	{famLDRH_STRH, 0x00B, 0xE0F},
	{famLDRSB_LDRSH, 0x01D, 0xE1F},
	{famMRS, 0x100, 0xFBF},
	{famMSR_REG, 0x120, 0xFBF},
	{famMSR_IMM, 0x320, 0xFB0},
	{famBX, 0x121, 0xFFF},
	{famDPImmShift, 0x000, 0xE01},
	{famDPRegShift, 0x001, 0xE09},
	{famUndefinedDP, 0x000, 0x000}, // placeholder, never matches; see note below
	{famDPImmValue, 0x200, 0xE00},
	{famLDRSTRImmOff, 0x400, 0xE00},
	{famLDRSTRRegOff, 0x600, 0xE01},
	{famLDMSTM, 0x800, 0xE00},
	{famBranch, 0xA00, 0xE00},
	{famSTC_LDC, 0xC00, 0xE00},
	{famCDP, 0xE00, 0xF01},
	{famMCR_MRC, 0xE01, 0xF01},
	{famSWI, 0xF00, 0xF00},
}

// armFormatKey extracts the 12-bit format key from a 32-bit ARM
// instruction: bits 27..20 concatenated with bits 7..4.
func armFormatKey(inst uint32) uint32 {
	return ((inst >> 16) & 0x0FF0) | ((inst >> 4) & 0xF)
}

// classifyARM returns the family the instruction matches, in priority
// order, or famUndefined if none match.
//
// famUndefinedDP (the "undefined instruction space" carved out of the
// data-processing encoding, opcode bits 24:23 == 0b10 with the S bit clear
// and neither MRS/MSR/BX claiming the slot) has no independent (format,
// mask) pair distinct from the ones already listed above it in the table.
// Its table entry is skipped, so classifyARM never returns famUndefinedDP;
// opcodes in that space are classified by the other entries or fall
// through to famUndefined.
func classifyARM(inst uint32) armFamily {
	key := armFormatKey(inst)

	for _, f := range armFormatTable {
		if f.family == famUndefinedDP {
			continue
		}
		if key&f.mask == f.format {
			return f.family
		}
	}

	return famUndefined
}
