package cpu

import (
	"github.com/jetsetilly/gba/logger"
)

// ARM data-processing opcodes (bits 24:21).
const (
	opAND = 0x0
	opEOR = 0x1
	opSUB = 0x2
	opRSB = 0x3
	opADD = 0x4
	opADC = 0x5
	opSBC = 0x6
	opRSC = 0x7
	opTST = 0x8
	opTEQ = 0x9
	opCMP = 0xA
	opCMN = 0xB
	opORR = 0xC
	opMOV = 0xD
	opBIC = 0xE
	opMVN = 0xF
)

// executeARM classifies opcode and dispatches to its family handler,
// returning the cycle cost of the family alone (the pipeline-advance cost
// is added by the caller).
func (c *CPU) executeARM(b Bus, opcode uint32) (int, error) {
	switch classifyARM(opcode) {
	case famBX:
		return c.armBX(b, opcode)
	case famMRS:
		return c.armMRS(opcode)
	case famMSR_REG, famMSR_IMM:
		return c.armMSR(opcode)
	case famDPImmShift, famDPRegShift, famDPImmValue:
		return c.armDataProcessing(b, opcode)
	case famLDRSTRImmOff, famLDRSTRRegOff:
		return c.armLoadStore(b, opcode)
	case famLDMSTM:
		return c.armLoadStoreMultiple(b, opcode)
	case famBranch:
		return c.armBranch(b, opcode)
	case famMUL:
		return c.armMultiply(opcode)
	case famMULL:
		return c.armMultiplyLong(opcode)
	case famSWP:
		return c.armSwap(b, opcode)
	case famLDRH_STRH, famLDRSB_LDRSH:
		return c.armHalfwordTransfer(b, opcode)
	case famSWI:
		return c.armSWI(b, opcode)
	case famSTC_LDC, famCDP, famMCR_MRC:
		// The GBA's ARM7TDMI has no coprocessor attached; these encodings
		// are genuinely undefined on real hardware.
		return c.armUndefined(b, opcode)
	default:
		return c.armUndefined(b, opcode)
	}
}

func (c *CPU) armUndefined(b Bus, opcode uint32) (int, error) {
	if c.logPermission != nil && c.logPermission.AllowLogging() {
		logger.Logf("CPU", "undefined instruction %#08x", opcode)
	}
	cycles, err := c.dispatchException(b, excUndefined, 2)
	return cycles, err
}

func (c *CPU) armSWI(b Bus, opcode uint32) (int, error) {
	cycles, err := c.dispatchException(b, excSWI, 2)
	return cycles, err
}

// operand2 computes the ALU's second operand and its contribution to the
// carry flag for a data-processing instruction, covering all three
// addressing sub-modes (immediate value, immediate shift, register shift).
func (c *CPU) operand2(opcode uint32, carryIn bool) (uint32, bool) {
	if opcode&(1<<25) != 0 {
		// Immediate value: 8-bit value rotated right by 2*rotate.
		imm := opcode & 0xFF
		rotate := (opcode >> 8) & 0xF
		if rotate == 0 {
			return imm, carryIn
		}
		return shiftROROp(imm, rotate*2, carryIn)
	}

	rm := int(opcode & 0xF)
	st := shiftType((opcode >> 5) & 0x3)

	if opcode&(1<<4) != 0 {
		// Register shift: shift amount in the bottom byte of Rs.
		rs := int((opcode >> 8) & 0xF)
		amount := c.readOperand(rs) & 0xFF
		value := c.readOperand(rm)
		if rm == regPC {
			value += 4 // instruction after the "two ahead" PC value
		}
		if amount == 0 {
			return value, carryIn
		}
		return barrelShift(st, value, amount, carryIn, false)
	}

	amount := (opcode >> 7) & 0x1F
	value := c.readOperand(rm)
	return barrelShift(st, value, amount, carryIn, true)
}

func (c *CPU) armDataProcessing(b Bus, opcode uint32) (int, error) {
	opField := (opcode >> 21) & 0xF
	setFlags := opcode&(1<<20) != 0
	rn := int((opcode >> 16) & 0xF)
	rd := int((opcode >> 12) & 0xF)

	op2, shiftCarry := c.operand2(opcode, c.cpsr.C())

	op1 := c.readOperand(rn)
	if rn == regPC && opcode&(1<<25) == 0 && opcode&(1<<4) != 0 {
		op1 += 4
	}

	var result uint32
	var carryOut, overflow bool
	carryOut = shiftCarry

	switch opField {
	case opAND:
		result = op1 & op2
	case opEOR:
		result = op1 ^ op2
	case opSUB:
		result, carryOut, overflow = subWithFlags(op1, op2)
	case opRSB:
		result, carryOut, overflow = subWithFlags(op2, op1)
	case opADD:
		result, carryOut, overflow = addWithFlags(op1, op2)
	case opADC:
		result, carryOut, overflow = addCarryWithFlags(op1, op2, c.cpsr.C())
	case opSBC:
		result, carryOut, overflow = sbcWithFlags(op1, op2, c.cpsr.C())
	case opRSC:
		result, carryOut, overflow = sbcWithFlags(op2, op1, c.cpsr.C())
	case opTST:
		result = op1 & op2
	case opTEQ:
		result = op1 ^ op2
	case opCMP:
		result, carryOut, overflow = subWithFlags(op1, op2)
	case opCMN:
		result, carryOut, overflow = addWithFlags(op1, op2)
	case opORR:
		result = op1 | op2
	case opMOV:
		result = op2
	case opBIC:
		result = op1 &^ op2
	case opMVN:
		result = ^op2
	}

	isTestOp := opField == opTST || opField == opTEQ || opField == opCMP || opField == opCMN

	if setFlags {
		if rd == regPC {
			// S-bit set, destination R15: restore CPSR from SPSR. Used by
			// privileged exception-return sequences (MOVS PC, LR).
			if !isTestOp {
				return 2, c.leaveException(b, result)
			}
			c.cpsr = c.regs.spsr[bankOf(c.cpsr.Mode())]
		} else {
			c.cpsr.SetNZ(result)
			c.cpsr.SetC(carryOut)
			if opField == opADD || opField == opADC || opField == opSUB || opField == opSBC ||
				opField == opRSB || opField == opRSC || opField == opCMP || opField == opCMN {
				c.cpsr.SetV(overflow)
			}
		}
	}

	if isTestOp {
		return 1, nil
	}

	if rd == regPC {
		if err := c.writePC(b, result); err != nil {
			return 0, err
		}
		return 2, nil
	}

	c.setGPR(rd, result)
	return 1, nil
}

func subWithFlags(a, b uint32) (result uint32, carry, overflow bool) {
	result = a - b
	carry = a >= b
	overflow = ((a ^ b) & (a ^ result) & 0x8000_0000) != 0
	return
}

func addWithFlags(a, b uint32) (result uint32, carry, overflow bool) {
	result = a + b
	carry = result < a
	overflow = (^(a ^ b) & (a ^ result) & 0x8000_0000) != 0
	return
}

func addCarryWithFlags(a, b uint32, carryIn bool) (result uint32, carry, overflow bool) {
	var cin uint32
	if carryIn {
		cin = 1
	}
	wide := uint64(a) + uint64(b) + uint64(cin)
	result = uint32(wide)
	carry = wide > 0xFFFF_FFFF
	overflow = (^(a ^ b) & (a ^ result) & 0x8000_0000) != 0
	return
}

func sbcWithFlags(a, b uint32, carryIn bool) (result uint32, carry, overflow bool) {
	var borrow uint32
	if !carryIn {
		borrow = 1
	}
	wide := uint64(a) - uint64(b) - uint64(borrow)
	result = uint32(wide)
	carry = a >= b+borrow
	overflow = ((a ^ b) & (a ^ result) & 0x8000_0000) != 0
	return
}

func (c *CPU) armBX(b Bus, opcode uint32) (int, error) {
	rm := int(opcode & 0xF)
	target := c.readOperand(rm)

	thumb := target&1 != 0
	c.cpsr.SetT(thumb)
	target &^= 1

	if err := c.writePC(b, target); err != nil {
		return 0, err
	}
	return 2, nil
}

func (c *CPU) armMRS(opcode uint32) (int, error) {
	rd := int((opcode >> 12) & 0xF)
	fromSPSR := opcode&(1<<22) != 0

	if fromSPSR {
		c.setGPR(rd, c.regs.spsr[bankOf(c.cpsr.Mode())].Value())
	} else {
		c.setGPR(rd, c.cpsr.Value())
	}
	return 1, nil
}

func (c *CPU) armMSR(opcode uint32) (int, error) {
	toSPSR := opcode&(1<<22) != 0
	flagsOnly := opcode&(1<<16) == 0

	var value uint32
	if opcode&(1<<25) != 0 {
		imm := opcode & 0xFF
		rotate := (opcode >> 8) & 0xF
		value, _ = shiftROROp(imm, rotate*2, false)
	} else {
		rm := int(opcode & 0xF)
		value = c.readOperand(rm)
	}

	target := &c.cpsr
	if toSPSR {
		b := bankOf(c.cpsr.Mode())
		target = &c.regs.spsr[b]
	}

	if flagsOnly {
		const flagBits = 0xF000_0000
		target.Load((target.Value() &^ flagBits) | (value & flagBits))
	} else {
		target.Load(value)
	}
	return 1, nil
}

func (c *CPU) armBranch(b Bus, opcode uint32) (int, error) {
	link := opcode&(1<<24) != 0
	offset := opcode & 0x00FF_FFFF

	// Sign-extend the 24-bit word offset, then convert to a byte offset
	// (the encoded offset is in words).
	var signed int32
	if offset&0x0080_0000 != 0 {
		signed = int32(offset|0xFF00_0000) << 2
	} else {
		signed = int32(offset << 2)
	}

	pc := c.gpr(regPC)
	target := uint32(int32(pc) + signed)

	if link {
		retAddr := pc - 8 // the instruction after the branch
		c.setGPR(regLR, retAddr)
	}

	if err := c.writePC(b, target); err != nil {
		return 0, err
	}
	return 2, nil
}

func (c *CPU) armMultiply(opcode uint32) (int, error) {
	accumulate := opcode&(1<<21) != 0
	setFlags := opcode&(1<<20) != 0
	rd := int((opcode >> 16) & 0xF)
	rn := int((opcode >> 12) & 0xF)
	rs := int((opcode >> 8) & 0xF)
	rm := int(opcode & 0xF)

	result := c.readOperand(rm) * c.readOperand(rs)
	if accumulate {
		result += c.readOperand(rn)
	}

	c.setGPR(rd, result)
	if setFlags {
		c.cpsr.SetNZ(result)
	}
	return 2, nil
}

func (c *CPU) armMultiplyLong(opcode uint32) (int, error) {
	signed := opcode&(1<<22) != 0
	accumulate := opcode&(1<<21) != 0
	setFlags := opcode&(1<<20) != 0
	rdHi := int((opcode >> 16) & 0xF)
	rdLo := int((opcode >> 12) & 0xF)
	rs := int((opcode >> 8) & 0xF)
	rm := int(opcode & 0xF)

	var product uint64
	if signed {
		product = uint64(int64(int32(c.readOperand(rm))) * int64(int32(c.readOperand(rs))))
	} else {
		product = uint64(c.readOperand(rm)) * uint64(c.readOperand(rs))
	}

	if accumulate {
		hi := uint64(c.readOperand(rdHi))
		lo := uint64(c.readOperand(rdLo))
		product += (hi << 32) | lo
	}

	c.setGPR(rdLo, uint32(product))
	c.setGPR(rdHi, uint32(product>>32))

	if setFlags {
		c.cpsr.SetZ(product == 0)
		c.cpsr.SetN(product&0x8000_0000_0000_0000 != 0)
	}
	return 3, nil
}

func (c *CPU) armSwap(b Bus, opcode uint32) (int, error) {
	byteSwap := opcode&(1<<22) != 0
	rn := int((opcode >> 16) & 0xF)
	rd := int((opcode >> 12) & 0xF)
	rm := int(opcode & 0xF)

	addr := c.readOperand(rn)

	if byteSwap {
		old, err := b.ReadByte(addr)
		if err != nil {
			return 0, armBusFault(c, b, err)
		}
		if err := b.WriteByte(addr, uint8(c.readOperand(rm))); err != nil {
			return 0, armBusFault(c, b, err)
		}
		c.setGPR(rd, uint32(old))
	} else {
		old, err := b.ReadWord(addr)
		if err != nil {
			return 0, armBusFault(c, b, err)
		}
		if err := b.WriteWord(addr, c.readOperand(rm)); err != nil {
			return 0, armBusFault(c, b, err)
		}
		c.setGPR(rd, old)
	}
	return 4, nil
}

// armBusFault turns any bus error into the AddressExceeds architectural
// exception per §7: bus faults are surfaced into the CPU, never returned
// to the host as a Go error.
func armBusFault(c *CPU, b Bus, cause error) error {
	if c.logPermission != nil && c.logPermission.AllowLogging() {
		logger.Logf("CPU", "bus fault: %v", cause)
	}
	_, err := c.dispatchException(b, excAddressExceeds, 2)
	return err
}

func (c *CPU) halfwordOffset(opcode uint32) uint32 {
	if opcode&(1<<22) != 0 {
		hi := (opcode >> 8) & 0xF
		lo := opcode & 0xF
		return (hi << 4) | lo
	}
	rm := int(opcode & 0xF)
	return c.readOperand(rm)
}

func (c *CPU) armHalfwordTransfer(b Bus, opcode uint32) (int, error) {
	pre := opcode&(1<<24) != 0
	up := opcode&(1<<23) != 0
	writeback := opcode&(1<<21) != 0 || !pre
	load := opcode&(1<<20) != 0
	rn := int((opcode >> 16) & 0xF)
	rd := int((opcode >> 12) & 0xF)

	sh := (opcode >> 5) & 0x3

	offset := c.halfwordOffset(opcode)
	base := c.readOperand(rn)

	addr := base
	if pre {
		if up {
			addr = base + offset
		} else {
			addr = base - offset
		}
	}

	var err error
	switch {
	case load && sh == 0b01: // LDRH
		var v uint16
		v, err = b.ReadHalfWord(addr)
		if err == nil {
			c.setGPR(rd, uint32(v))
		}
	case load && sh == 0b10: // LDRSB
		var v uint8
		v, err = b.ReadByte(addr)
		if err == nil {
			c.setGPR(rd, uint32(int32(int8(v))))
		}
	case load && sh == 0b11: // LDRSH
		var v uint16
		v, err = b.ReadHalfWord(addr)
		if err == nil {
			c.setGPR(rd, uint32(int32(int16(v))))
		}
	case !load && sh == 0b01: // STRH
		err = b.WriteHalfWord(addr, uint16(c.readOperand(rd)))
	default:
		return c.armUndefined(b, opcode)
	}
	if err != nil {
		return 0, armBusFault(c, b, err)
	}

	if !pre {
		if up {
			addr = base + offset
		} else {
			addr = base - offset
		}
	}
	if writeback && rn != regPC {
		c.setGPR(rn, addr)
	}

	return 3, nil
}

func (c *CPU) loadStoreOffset(opcode uint32) uint32 {
	if opcode&(1<<25) == 0 {
		return opcode & 0xFFF
	}
	rm := int(opcode & 0xF)
	st := shiftType((opcode >> 5) & 0x3)
	amount := (opcode >> 7) & 0x1F
	value := c.readOperand(rm)
	result, _ := barrelShift(st, value, amount, c.cpsr.C(), true)
	return result
}

func (c *CPU) armLoadStore(b Bus, opcode uint32) (int, error) {
	pre := opcode&(1<<24) != 0
	up := opcode&(1<<23) != 0
	byteAccess := opcode&(1<<22) != 0
	writeback := opcode&(1<<21) != 0 || !pre
	load := opcode&(1<<20) != 0
	rn := int((opcode >> 16) & 0xF)
	rd := int((opcode >> 12) & 0xF)

	offset := c.loadStoreOffset(opcode)
	base := c.readOperand(rn)

	addr := base
	if pre {
		if up {
			addr = base + offset
		} else {
			addr = base - offset
		}
	}

	var err error
	if load {
		if byteAccess {
			var v uint8
			v, err = b.ReadByte(addr)
			if err == nil {
				c.setGPR(rd, uint32(v))
			}
		} else {
			var v uint32
			v, err = b.ReadWord(addr)
			if err == nil {
				if rd == regPC {
					err2 := c.writePC(b, v)
					if err2 != nil {
						return 0, err2
					}
				} else {
					c.setGPR(rd, v)
				}
			}
		}
	} else {
		value := c.readOperand(rd)
		if rd == regPC {
			value += 4
		}
		if byteAccess {
			err = b.WriteByte(addr, uint8(value))
		} else {
			err = b.WriteWord(addr, value)
		}
	}
	if err != nil {
		return 0, armBusFault(c, b, err)
	}

	if !pre {
		if up {
			addr = base + offset
		} else {
			addr = base - offset
		}
	}
	if writeback && rn != regPC && !(load && rd == rn) {
		c.setGPR(rn, addr)
	}

	if load && rd == regPC {
		return 5, nil
	}
	return 3, nil
}

func (c *CPU) armLoadStoreMultiple(b Bus, opcode uint32) (int, error) {
	pre := opcode&(1<<24) != 0
	up := opcode&(1<<23) != 0
	userBank := opcode&(1<<22) != 0
	writeback := opcode&(1<<21) != 0
	load := opcode&(1<<20) != 0
	rn := int((opcode >> 16) & 0xF)
	list := opcode & 0xFFFF

	var regs []int
	for i := 0; i < 16; i++ {
		if list&(1<<uint(i)) != 0 {
			regs = append(regs, i)
		}
	}

	base := c.readOperand(rn)
	addr := base

	step := func() uint32 {
		if up {
			addr += 4
		} else {
			addr -= 4
		}
		return addr
	}

	// USR-bank transfer (the "^" suffix): temporarily switch the live
	// registers to the USR bank for the duration of the transfer, used by
	// exception handlers to save/restore the interrupted mode's view of
	// the registers.
	curMode := c.cpsr.Mode()
	if userBank && curMode != ModeUSR {
		c.regs.enterMode(curMode, ModeUSR)
		defer c.regs.enterMode(ModeUSR, curMode)
	}

	order := regs
	if !up {
		// descending: process the register list high-to-low so the final
		// memory layout matches ascending order from the lowest address.
		order = make([]int, len(regs))
		for i, r := range regs {
			order[len(regs)-1-i] = r
		}
	}

	for _, r := range order {
		var a uint32
		if pre {
			a = step()
		} else {
			a = addr
			step()
		}

		if load {
			v, err := b.ReadWord(a)
			if err != nil {
				return 0, armBusFault(c, b, err)
			}
			c.setGPR(r, v)
		} else {
			v := c.readOperand(r)
			if err := b.WriteWord(a, v); err != nil {
				return 0, armBusFault(c, b, err)
			}
		}
	}

	if writeback {
		c.setGPR(rn, addr)
	}

	if load && list&(1<<regPC) != 0 {
		if err := c.flushPipeline(b); err != nil {
			return 0, err
		}
		return len(regs) + 4, nil
	}

	return len(regs) + 1, nil
}
