package cpu

// pipelineSlot holds a fetched-but-not-executed opcode. The zero value is
// "empty", distinguishable from a legitimately fetched zero word via ok.
type pipelineSlot struct {
	opcode uint32
	ok     bool
}

// pipeline is the 2-slot prefetch buffer described in §3: slot 0 is what
// step() will execute next, slot 1 is one instruction behind it. PC, as
// observed by executing code, is always two instructions ahead of
// whatever's in slot 0.
type pipeline struct {
	slot [2]pipelineSlot
}

// shift drops slot 0, moves slot 1 into slot 0, and leaves slot 1 empty for
// the caller to refill via a fetch.
func (p *pipeline) shift() {
	p.slot[0] = p.slot[1]
	p.slot[1] = pipelineSlot{}
}

// flush empties both slots.
func (p *pipeline) flush() {
	p.slot[0] = pipelineSlot{}
	p.slot[1] = pipelineSlot{}
}

// full reports whether both slots hold a fetched opcode.
func (p *pipeline) full() bool {
	return p.slot[0].ok && p.slot[1].ok
}

func instructionWidth(set InstructionSet) uint32 {
	if set == Thumb {
		return 2
	}
	return 4
}

// incrementPC advances pc by the current instruction width using modular
// 32-bit arithmetic -- Go's native uint32 overflow behaviour already gives
// the wraparound the architecture requires.
func incrementPC(pc uint32, set InstructionSet) uint32 {
	return pc + instructionWidth(set)
}

// fetch reads one opcode-sized unit from bus at address addr, honoring the
// current instruction set's width.
func (c *CPU) fetch(b Bus, addr uint32) (uint32, error) {
	if c.cpsr.InstructionSet() == Thumb {
		v, err := b.ReadHalfWord(addr)
		return uint32(v), err
	}
	return b.ReadWord(addr)
}

// flushPipeline implements §4.4's "flush pipeline" operation: discard both
// slots, then perform two fetches from the current PC, advancing PC by the
// instruction width each time, so that PC again points two instructions
// ahead of the next one to be executed.
func (c *CPU) flushPipeline(b Bus) error {
	c.pipe.flush()

	width := instructionWidth(c.cpsr.InstructionSet())
	c.alignPC()

	for i := range c.pipe.slot {
		op, err := c.fetch(b, c.gpr(regPC))
		if err != nil {
			return err
		}
		c.pipe.slot[i] = pipelineSlot{opcode: op, ok: true}
		c.setGPR(regPC, c.gpr(regPC)+width)
	}

	return nil
}

// alignPC clears the low address bits that must always be zero for the
// current instruction set: 2 bits in ARM state, 1 bit in Thumb state.
func (c *CPU) alignPC() {
	if c.cpsr.InstructionSet() == Thumb {
		c.regs.gpr[regPC] &^= 0b1
	} else {
		c.regs.gpr[regPC] &^= 0b11
	}
}
