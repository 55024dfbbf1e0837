package cpu

// exceptionKind is one of the eight hardware exception types, each with a
// fixed vector address and target operation mode (§4.4).
type exceptionKind int

const (
	excReset exceptionKind = iota
	excUndefined
	excSWI
	excPrefetchAbort
	excDataAbort
	excAddressExceeds
	excIRQ
	excFIQ
)

type exceptionInfo struct {
	vector uint32
	mode   Mode
	setF   bool
}

var exceptionTable = [...]exceptionInfo{
	excReset:          {vector: 0x00, mode: ModeSVC, setF: true},
	excUndefined:      {vector: 0x04, mode: ModeUND},
	excSWI:            {vector: 0x08, mode: ModeSVC},
	excPrefetchAbort:  {vector: 0x0C, mode: ModeABT},
	excDataAbort:      {vector: 0x10, mode: ModeABT},
	excAddressExceeds: {vector: 0x14, mode: ModeSVC},
	excIRQ:            {vector: 0x18, mode: ModeIRQ},
	excFIQ:            {vector: 0x1C, mode: ModeFIQ, setF: true},
}

// raise performs the entry sequence described in §4.4: compute the
// exception's target mode and bank swap, snapshot CPSR into the new mode's
// SPSR, store the return address in the new mode's LR, set I (and F where
// the table says so), force ARM state, and vector the PC, flushing the
// pipeline. returnAddr is supplied by the caller since it differs by
// exception type (step() and the instruction handlers compute it).
func (c *CPU) raise(b Bus, kind exceptionKind, returnAddr uint32) error {
	info := exceptionTable[kind]

	prevMode := c.cpsr.Mode()
	prevCPSR := c.cpsr

	c.regs.enterMode(prevMode, info.mode)
	c.cpsr.SetMode(info.mode)

	c.regs.spsr[bankOf(info.mode)] = prevCPSR

	c.setGPR(regLR, returnAddr)

	c.cpsr.SetI(true)
	if info.setF {
		c.cpsr.SetF(true)
	}
	c.cpsr.SetT(false)

	c.setGPR(regPC, info.vector)

	return c.flushPipeline(b)
}

// leaveException restores CPSR from the current mode's SPSR and returns to
// the destination address, performing the bank swap back and flushing the
// pipeline. Data-processing instructions with the S bit set and R15 as the
// destination (MOVS PC, LR) return through it; LDM with ^ transfers the
// user-bank registers and does not restore CPSR.
func (c *CPU) leaveException(b Bus, dest uint32) error {
	prevMode := c.cpsr.Mode()
	restored := c.regs.spsr[bankOf(prevMode)]

	c.regs.enterMode(prevMode, restored.Mode())
	c.cpsr = restored

	c.setGPR(regPC, dest)

	return c.flushPipeline(b)
}
