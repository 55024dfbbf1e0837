// Package cpu implements an ARM7TDMI interpreter: register banking across
// the seven privilege modes, the two-slot prefetch pipeline, priority-
// ordered ARM/Thumb decode tables, and the hardware exception vector.
//
// The CPU never touches concrete memory; every access goes through the Bus
// it is given, so the same CPU works headless, under test, or wired to a
// real GBA memory map.
package cpu

import (
	"fmt"

	"github.com/jetsetilly/gba/logger"
)

// Bus is everything the CPU needs from memory. It is satisfied by
// bus.CPUBus; declared locally so this package doesn't need to import bus
// just to name the interface its one dependency already defines.
type Bus interface {
	ReadByte(address uint32) (uint8, error)
	WriteByte(address uint32, value uint8) error
	ReadHalfWord(address uint32) (uint16, error)
	WriteHalfWord(address uint32, value uint16) error
	ReadWord(address uint32) (uint32, error)
	WriteWord(address uint32, value uint32) error
}

// CPU is an ARM7TDMI core: registers, status, pipeline, and pending
// interrupt latches. It holds no reference to a bus between calls --
// every operation that touches memory takes one as an argument.
type CPU struct {
	regs registerFile
	cpsr StatusRegister
	pipe pipeline

	cycles uint64

	irqPending bool
	fiqPending bool

	logPermission logger.Permission
}

// New creates a zeroed CPU. Call Reset before stepping it.
func New() *CPU {
	return &CPU{
		logPermission: logger.Allow,
	}
}

// SetLogPermission controls whether this CPU's diagnostic logging (via the
// package-level logger) is emitted. Defaults to always-on.
func (c *CPU) SetLogPermission(p logger.Permission) {
	c.logPermission = p
}

// gpr reads register n as currently live (banked registers resolve
// automatically since enterMode keeps exactly one bank live in c.regs.gpr).
func (c *CPU) gpr(n int) uint32 {
	if n == regPC {
		return c.regs.gpr[regPC]
	}
	return c.regs.gpr[n]
}

// setGPR writes register n. Writes to R15 always go through setGPR so that
// callers that need "write R15 flushes the pipeline" semantics do so
// explicitly via writePC, not implicitly here.
func (c *CPU) setGPR(n int, v uint32) {
	c.regs.gpr[n] = v
}

// readOperand reads register n the way an instruction operand read does:
// identical to gpr() except for R15, which yields the pipeline's "two
// ahead" value automatically since that's just what's stored in gpr[15].
// Named separately from gpr() to document the PC-as-operand quirk noted in
// SPEC_FULL.md at the one place it actually matters -- barrel-shifter and
// load/store address calculation.
func (c *CPU) readOperand(n int) uint32 {
	return c.gpr(n)
}

// writePC writes a new PC and flushes the pipeline, as every branch, BX,
// and R15-destination data-processing instruction must.
func (c *CPU) writePC(b Bus, v uint32) error {
	c.setGPR(regPC, v)
	return c.flushPipeline(b)
}

// CPSR exposes the current status register. Part of the non-normative
// debugging surface named in §6.
func (c *CPU) CPSR() StatusRegister {
	return c.cpsr
}

// Mode returns the live operation mode.
func (c *CPU) Mode() Mode {
	return c.cpsr.Mode()
}

// InstructionSet returns the live instruction set.
func (c *CPU) InstructionSet() InstructionSet {
	return c.cpsr.InstructionSet()
}

// PC returns the raw program counter -- the "two instructions ahead" value
// an executing instruction would itself observe reading R15.
func (c *CPU) PC() uint32 {
	return c.gpr(regPC)
}

// Cycles returns the running total of cycles consumed since Reset.
func (c *CPU) Cycles() uint64 {
	return c.cycles
}

// Snapshot is a point-in-time, read-only copy of every architectural
// register, for tooling built atop this core (disassemblers, a debugger)
// per SPEC_FULL.md's feature supplement. Not part of the normative
// contract.
type Snapshot struct {
	GPR  [16]uint32
	CPSR StatusRegister
	Mode Mode
}

// Snapshot captures the CPU's currently-live state.
func (c *CPU) Snapshot() Snapshot {
	return Snapshot{
		GPR:  c.regs.gpr,
		CPSR: c.cpsr,
		Mode: c.cpsr.Mode(),
	}
}

// Reset installs the initial SVC-mode state (§3's lifecycle contract) and
// fills the pipeline from address 0, in ARM state.
func (c *CPU) Reset(b Bus) error {
	c.regs = registerFile{}
	c.cpsr = NewStatusRegister(ModeSVC)
	c.cycles = 0
	c.irqPending = false
	c.fiqPending = false

	return c.flushPipeline(b)
}

// RequestIRQ latches a pending IRQ. Delivered at the start of the next
// Step call, per §5, if the I flag is clear.
func (c *CPU) RequestIRQ() {
	c.irqPending = true
}

// RequestFIQ latches a pending FIQ. Delivered at the start of the next
// Step call, per §5, if the F flag is clear.
func (c *CPU) RequestFIQ() {
	c.fiqPending = true
}

// Step executes one instruction and returns the number of cycles it
// consumed (always ≥ 1), implementing the contract of §4.4.
func (c *CPU) Step(b Bus) (int, error) {
	if c.fiqPending && !c.cpsr.F() {
		c.fiqPending = false
		if err := c.raise(b, excFIQ, c.gpr(regPC)-instructionWidth(c.cpsr.InstructionSet())); err != nil {
			return 0, err
		}
	} else if c.irqPending && !c.cpsr.I() {
		c.irqPending = false
		if err := c.raise(b, excIRQ, c.gpr(regPC)-instructionWidth(c.cpsr.InstructionSet())); err != nil {
			return 0, err
		}
	}

	if !c.pipe.full() {
		return 0, fmt.Errorf("cpu: step called with an unfilled pipeline")
	}

	opcode := c.pipe.slot[0].opcode

	width := instructionWidth(c.cpsr.InstructionSet())
	c.pipe.shift()

	fetched, err := c.fetch(b, c.gpr(regPC))
	if err != nil {
		return 0, err
	}
	c.pipe.slot[1] = pipelineSlot{opcode: fetched, ok: true}
	c.setGPR(regPC, c.gpr(regPC)+width)

	const pipelineAdvanceCost = 1

	set := c.cpsr.InstructionSet()

	if set == ARM {
		cond := condition(opcode >> 28)
		if cond == condNV || !cond.evaluate(c.cpsr) {
			if cond == condNV {
				cycles, err := c.dispatchException(b, excUndefined, pipelineAdvanceCost)
				if err != nil {
					return 0, err
				}
				c.cycles += uint64(cycles)
				return cycles, nil
			}
			c.cycles += pipelineAdvanceCost
			return pipelineAdvanceCost, nil
		}

		cycles, err := c.executeARM(b, opcode)
		if err != nil {
			return 0, err
		}
		cycles += pipelineAdvanceCost
		c.cycles += uint64(cycles)
		return cycles, nil
	}

	cycles, err := c.executeThumb(b, uint16(opcode))
	if err != nil {
		return 0, err
	}
	cycles += pipelineAdvanceCost
	c.cycles += uint64(cycles)
	return cycles, nil
}

// dispatchException raises kind with a return address equal to the current
// PC minus two instruction widths (i.e. the address of the instruction
// after the one that faulted, consistent with the already-advanced PC at
// this point in Step), and folds baseCycles into the cycle count returned
// to the caller.
func (c *CPU) dispatchException(b Bus, kind exceptionKind, baseCycles int) (int, error) {
	width := instructionWidth(c.cpsr.InstructionSet())
	returnAddr := c.gpr(regPC) - 2*width
	if err := c.raise(b, kind, returnAddr); err != nil {
		return 0, err
	}
	return baseCycles, nil
}
