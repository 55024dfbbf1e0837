package cpu

// executeThumb classifies a 16-bit Thumb opcode and dispatches to its
// family handler, mirroring executeARM's shape but over the Thumb table.
func (c *CPU) executeThumb(b Bus, opcode uint16) (int, error) {
	switch classifyThumb(opcode) {
	case thumbMoveShifted:
		return c.thumbMoveShiftedReg(opcode)
	case thumbAddSub:
		return c.thumbAddSubtract(opcode)
	case thumbALUImmediate:
		return c.thumbALUImm(opcode)
	case thumbALUOperation:
		return c.thumbALUOp(opcode)
	case thumbHiRegBX:
		return c.thumbHiRegOpBX(b, opcode)
	case thumbPCRelLoad:
		return c.thumbPCRelativeLoad(b, opcode)
	case thumbLoadStoreReg:
		return c.thumbLoadStoreRegOffset(b, opcode)
	case thumbLoadStoreSignExt:
		return c.thumbLoadStoreSignExtended(b, opcode)
	case thumbLoadStoreImm:
		return c.thumbLoadStoreImmOffset(b, opcode)
	case thumbLoadStoreHalf:
		return c.thumbLoadStoreHalfword(b, opcode)
	case thumbSPRelLoadStore:
		return c.thumbSPRelative(b, opcode)
	case thumbLoadAddress:
		return c.thumbLoadAddress(opcode)
	case thumbAddSP:
		return c.thumbAddOffsetToSP(opcode)
	case thumbPushPop:
		return c.thumbPushPop(b, opcode)
	case thumbLoadStoreMultiple:
		return c.thumbLoadStoreMultiple(b, opcode)
	case thumbCondBranch:
		return c.thumbConditionalBranch(b, opcode)
	case thumbSWI:
		return c.dispatchException(b, excSWI, 2)
	case thumbBranch:
		return c.thumbUnconditionalBranch(b, opcode)
	case thumbLongBranchLink:
		return c.thumbLongBranchWithLink(b, opcode)
	default:
		return c.armUndefined(b, uint32(opcode))
	}
}

func (c *CPU) thumbMoveShiftedReg(opcode uint16) (int, error) {
	op := (opcode >> 11) & 0x3
	amount := uint32((opcode >> 6) & 0x1F)
	rs := int((opcode >> 3) & 0x7)
	rd := int(opcode & 0x7)

	value := c.readOperand(rs)
	result, carryOut := barrelShift(shiftType(op), value, amount, c.cpsr.C(), true)

	c.setGPR(rd, result)
	c.cpsr.SetNZ(result)
	c.cpsr.SetC(carryOut)
	return 1, nil
}

func (c *CPU) thumbAddSubtract(opcode uint16) (int, error) {
	immediate := opcode&(1<<10) != 0
	subtract := opcode&(1<<9) != 0
	rn := int((opcode >> 6) & 0x7)
	rs := int((opcode >> 3) & 0x7)
	rd := int(opcode & 0x7)

	var operand uint32
	if immediate {
		operand = uint32(rn)
	} else {
		operand = c.readOperand(rn)
	}

	op1 := c.readOperand(rs)

	var result uint32
	var carry, overflow bool
	if subtract {
		result, carry, overflow = subWithFlags(op1, operand)
	} else {
		result, carry, overflow = addWithFlags(op1, operand)
	}

	c.setGPR(rd, result)
	c.cpsr.SetNZ(result)
	c.cpsr.SetC(carry)
	c.cpsr.SetV(overflow)
	return 1, nil
}

func (c *CPU) thumbALUImm(opcode uint16) (int, error) {
	op := (opcode >> 11) & 0x3
	rd := int((opcode >> 8) & 0x7)
	imm := uint32(opcode & 0xFF)

	op1 := c.readOperand(rd)

	var result uint32
	var carry, overflow bool
	switch op {
	case 0: // MOV
		result = imm
		c.setGPR(rd, result)
	case 1: // CMP
		result, carry, overflow = subWithFlags(op1, imm)
		c.cpsr.SetC(carry)
		c.cpsr.SetV(overflow)
	case 2: // ADD
		result, carry, overflow = addWithFlags(op1, imm)
		c.setGPR(rd, result)
		c.cpsr.SetC(carry)
		c.cpsr.SetV(overflow)
	case 3: // SUB
		result, carry, overflow = subWithFlags(op1, imm)
		c.setGPR(rd, result)
		c.cpsr.SetC(carry)
		c.cpsr.SetV(overflow)
	}
	c.cpsr.SetNZ(result)
	return 1, nil
}

func (c *CPU) thumbALUOp(opcode uint16) (int, error) {
	op := (opcode >> 6) & 0xF
	rs := int((opcode >> 3) & 0x7)
	rd := int(opcode & 0x7)

	op1 := c.readOperand(rd)
	op2 := c.readOperand(rs)

	var result uint32
	var carry, overflow bool
	carry = c.cpsr.C()
	store := true

	switch op {
	case 0x0: // AND
		result = op1 & op2
	case 0x1: // EOR
		result = op1 ^ op2
	case 0x2: // LSL
		result, carry = barrelShift(shiftLSL, op1, op2&0xFF, carry, false)
	case 0x3: // LSR
		result, carry = barrelShift(shiftLSR, op1, op2&0xFF, carry, false)
	case 0x4: // ASR
		result, carry = barrelShift(shiftASR, op1, op2&0xFF, carry, false)
	case 0x5: // ADC
		result, carry, overflow = addCarryWithFlags(op1, op2, c.cpsr.C())
	case 0x6: // SBC
		result, carry, overflow = sbcWithFlags(op1, op2, c.cpsr.C())
	case 0x7: // ROR
		result, carry = barrelShift(shiftROR, op1, op2&0xFF, carry, false)
	case 0x8: // TST
		result = op1 & op2
		store = false
	case 0x9: // NEG
		result, carry, overflow = subWithFlags(0, op2)
	case 0xA: // CMP
		result, carry, overflow = subWithFlags(op1, op2)
		store = false
	case 0xB: // CMN
		result, carry, overflow = addWithFlags(op1, op2)
		store = false
	case 0xC: // ORR
		result = op1 | op2
	case 0xD: // MUL
		result = op1 * op2
	case 0xE: // BIC
		result = op1 &^ op2
	case 0xF: // MVN
		result = ^op2
	}

	c.cpsr.SetNZ(result)
	c.cpsr.SetC(carry)
	if op == 0x5 || op == 0x6 || op == 0x9 || op == 0xA || op == 0xB {
		c.cpsr.SetV(overflow)
	}
	if store {
		c.setGPR(rd, result)
	}
	return 1, nil
}

func (c *CPU) thumbHiRegOpBX(b Bus, opcode uint16) (int, error) {
	op := (opcode >> 8) & 0x3
	h1 := opcode&(1<<7) != 0
	h2 := opcode&(1<<6) != 0
	rs := int((opcode >> 3) & 0x7)
	rd := int(opcode & 0x7)
	if h1 {
		rd += 8
	}
	if h2 {
		rs += 8
	}

	switch op {
	case 0: // ADD
		c.setGPR(rd, c.readOperand(rd)+c.readOperand(rs))
		if rd == regPC {
			return 3, c.writePC(b, c.gpr(regPC))
		}
	case 1: // CMP
		result, carry, overflow := subWithFlags(c.readOperand(rd), c.readOperand(rs))
		c.cpsr.SetNZ(result)
		c.cpsr.SetC(carry)
		c.cpsr.SetV(overflow)
	case 2: // MOV
		v := c.readOperand(rs)
		if rd == regPC {
			if err := c.writePC(b, v&^1); err != nil {
				return 0, err
			}
			return 3, nil
		}
		c.setGPR(rd, v)
	case 3: // BX (and BLX in later architectures, unused here)
		target := c.readOperand(rs)
		thumb := target&1 != 0
		c.cpsr.SetT(thumb)
		if err := c.writePC(b, target&^1); err != nil {
			return 0, err
		}
		return 3, nil
	}
	return 1, nil
}

func (c *CPU) thumbPCRelativeLoad(b Bus, opcode uint16) (int, error) {
	rd := int((opcode >> 8) & 0x7)
	imm := uint32(opcode&0xFF) << 2

	base := c.gpr(regPC) &^ 0b11
	v, err := b.ReadWord(base + imm)
	if err != nil {
		return 0, armBusFault(c, b, err)
	}
	c.setGPR(rd, v)
	return 3, nil
}

func (c *CPU) thumbLoadStoreRegOffset(b Bus, opcode uint16) (int, error) {
	load := opcode&(1<<11) != 0
	byteAccess := opcode&(1<<10) != 0
	ro := int((opcode >> 6) & 0x7)
	rb := int((opcode >> 3) & 0x7)
	rd := int(opcode & 0x7)

	addr := c.readOperand(rb) + c.readOperand(ro)

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
				c.setGPR(rd, v)
			}
		}
	} else {
		if byteAccess {
			err = b.WriteByte(addr, uint8(c.readOperand(rd)))
		} else {
			err = b.WriteWord(addr, c.readOperand(rd))
		}
	}
	if err != nil {
		return 0, armBusFault(c, b, err)
	}
	return 3, nil
}

func (c *CPU) thumbLoadStoreSignExtended(b Bus, opcode uint16) (int, error) {
	hFlag := opcode&(1<<11) != 0
	signExtend := opcode&(1<<10) != 0
	ro := int((opcode >> 6) & 0x7)
	rb := int((opcode >> 3) & 0x7)
	rd := int(opcode & 0x7)

	addr := c.readOperand(rb) + c.readOperand(ro)

	var err error
	switch {
	case !signExtend && !hFlag: // STRH
		err = b.WriteHalfWord(addr, uint16(c.readOperand(rd)))
	case !signExtend && hFlag: // LDRH
		var v uint16
		v, err = b.ReadHalfWord(addr)
		if err == nil {
			c.setGPR(rd, uint32(v))
		}
	case signExtend && !hFlag: // LDSB
		var v uint8
		v, err = b.ReadByte(addr)
		if err == nil {
			c.setGPR(rd, uint32(int32(int8(v))))
		}
	default: // LDSH
		var v uint16
		v, err = b.ReadHalfWord(addr)
		if err == nil {
			c.setGPR(rd, uint32(int32(int16(v))))
		}
	}
	if err != nil {
		return 0, armBusFault(c, b, err)
	}
	return 3, nil
}

func (c *CPU) thumbLoadStoreImmOffset(b Bus, opcode uint16) (int, error) {
	byteAccess := opcode&(1<<12) != 0
	load := opcode&(1<<11) != 0
	imm := uint32((opcode >> 6) & 0x1F)
	rb := int((opcode >> 3) & 0x7)
	rd := int(opcode & 0x7)

	if !byteAccess {
		imm <<= 2
	}
	addr := c.readOperand(rb) + imm

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
				c.setGPR(rd, v)
			}
		}
	} else {
		if byteAccess {
			err = b.WriteByte(addr, uint8(c.readOperand(rd)))
		} else {
			err = b.WriteWord(addr, c.readOperand(rd))
		}
	}
	if err != nil {
		return 0, armBusFault(c, b, err)
	}
	return 3, nil
}

func (c *CPU) thumbLoadStoreHalfword(b Bus, opcode uint16) (int, error) {
	load := opcode&(1<<11) != 0
	imm := uint32((opcode>>6)&0x1F) << 1
	rb := int((opcode >> 3) & 0x7)
	rd := int(opcode & 0x7)

	addr := c.readOperand(rb) + imm

	var err error
	if load {
		var v uint16
		v, err = b.ReadHalfWord(addr)
		if err == nil {
			c.setGPR(rd, uint32(v))
		}
	} else {
		err = b.WriteHalfWord(addr, uint16(c.readOperand(rd)))
	}
	if err != nil {
		return 0, armBusFault(c, b, err)
	}
	return 3, nil
}

func (c *CPU) thumbSPRelative(b Bus, opcode uint16) (int, error) {
	load := opcode&(1<<11) != 0
	rd := int((opcode >> 8) & 0x7)
	imm := uint32(opcode&0xFF) << 2

	addr := c.readOperand(regSP) + imm

	var err error
	if load {
		var v uint32
		v, err = b.ReadWord(addr)
		if err == nil {
			c.setGPR(rd, v)
		}
	} else {
		err = b.WriteWord(addr, c.readOperand(rd))
	}
	if err != nil {
		return 0, armBusFault(c, b, err)
	}
	return 3, nil
}

func (c *CPU) thumbLoadAddress(opcode uint16) (int, error) {
	sp := opcode&(1<<11) != 0
	rd := int((opcode >> 8) & 0x7)
	imm := uint32(opcode&0xFF) << 2

	var base uint32
	if sp {
		base = c.readOperand(regSP)
	} else {
		base = c.gpr(regPC) &^ 0b11
	}
	c.setGPR(rd, base+imm)
	return 1, nil
}

func (c *CPU) thumbAddOffsetToSP(opcode uint16) (int, error) {
	negative := opcode&(1<<7) != 0
	imm := uint32(opcode&0x7F) << 2

	sp := c.readOperand(regSP)
	if negative {
		sp -= imm
	} else {
		sp += imm
	}
	c.setGPR(regSP, sp)
	return 1, nil
}

func (c *CPU) thumbPushPop(b Bus, opcode uint16) (int, error) {
	load := opcode&(1<<11) != 0
	pclr := opcode&(1<<8) != 0
	list := opcode & 0xFF

	var regs []int
	for i := 0; i < 8; i++ {
		if list&(1<<uint(i)) != 0 {
			regs = append(regs, i)
		}
	}

	sp := c.readOperand(regSP)

	if load {
		for _, r := range regs {
			v, err := b.ReadWord(sp)
			if err != nil {
				return 0, armBusFault(c, b, err)
			}
			c.setGPR(r, v)
			sp += 4
		}
		if pclr {
			v, err := b.ReadWord(sp)
			if err != nil {
				return 0, armBusFault(c, b, err)
			}
			sp += 4
			c.setGPR(regSP, sp)
			if err := c.writePC(b, v&^1); err != nil {
				return 0, err
			}
			return len(regs) + 4, nil
		}
		c.setGPR(regSP, sp)
		return len(regs) + 2, nil
	}

	count := len(regs)
	if pclr {
		count++
	}
	sp -= uint32(count) * 4
	addr := sp

	for _, r := range regs {
		if err := b.WriteWord(addr, c.readOperand(r)); err != nil {
			return 0, armBusFault(c, b, err)
		}
		addr += 4
	}
	if pclr {
		if err := b.WriteWord(addr, c.readOperand(regLR)); err != nil {
			return 0, armBusFault(c, b, err)
		}
	}
	c.setGPR(regSP, sp)
	return count + 1, nil
}

func (c *CPU) thumbLoadStoreMultiple(b Bus, opcode uint16) (int, error) {
	load := opcode&(1<<11) != 0
	rb := int((opcode >> 8) & 0x7)
	list := opcode & 0xFF

	var regs []int
	for i := 0; i < 8; i++ {
		if list&(1<<uint(i)) != 0 {
			regs = append(regs, i)
		}
	}

	addr := c.readOperand(rb)
	for _, r := range regs {
		if load {
			v, err := b.ReadWord(addr)
			if err != nil {
				return 0, armBusFault(c, b, err)
			}
			c.setGPR(r, v)
		} else {
			if err := b.WriteWord(addr, c.readOperand(r)); err != nil {
				return 0, armBusFault(c, b, err)
			}
		}
		addr += 4
	}
	c.setGPR(rb, addr)
	return len(regs) + 1, nil
}

func (c *CPU) thumbConditionalBranch(b Bus, opcode uint16) (int, error) {
	cond := condition((opcode >> 8) & 0xF)
	offset := int32(int8(opcode & 0xFF))

	if cond == condAL || cond == condNV {
		return c.armUndefined(b, uint32(opcode))
	}
	if !cond.evaluate(c.cpsr) {
		return 1, nil
	}

	target := uint32(int32(c.gpr(regPC)) + offset*2)
	if err := c.writePC(b, target); err != nil {
		return 0, err
	}
	return 3, nil
}

func (c *CPU) thumbUnconditionalBranch(b Bus, opcode uint16) (int, error) {
	offset := opcode & 0x7FF
	var signed int32
	if offset&0x400 != 0 {
		signed = int32(offset|0xF800) << 1
	} else {
		signed = int32(offset) << 1
	}
	target := uint32(int32(c.gpr(regPC)) + signed)
	if err := c.writePC(b, target); err != nil {
		return 0, err
	}
	return 3, nil
}

func (c *CPU) thumbLongBranchWithLink(b Bus, opcode uint16) (int, error) {
	high := opcode&(1<<11) == 0
	offset := uint32(opcode & 0x7FF)

	if high {
		// First instruction: LR = PC + (sign-extended offset << 12).
		var signed int32
		if offset&0x400 != 0 {
			signed = int32(offset|0xFFFF_F800) << 12
		} else {
			signed = int32(offset << 12)
		}
		c.setGPR(regLR, uint32(int32(c.gpr(regPC))+signed))
		return 1, nil
	}

	// Second instruction: target = LR + (offset << 1); LR = return | 1.
	target := c.readOperand(regLR) + (offset << 1)
	retAddr := (c.gpr(regPC) - 2) | 1
	c.setGPR(regLR, retAddr)
	if err := c.writePC(b, target); err != nil {
		return 0, err
	}
	return 3, nil
}
