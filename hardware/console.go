package hardware

import (
	"github.com/jetsetilly/gba/hardware/clocks"
	"github.com/jetsetilly/gba/hardware/cpu"
	"github.com/jetsetilly/gba/hardware/instance"
	"github.com/jetsetilly/gba/hardware/memory"
	"github.com/jetsetilly/gba/logger"
)

// Console is the root of the emulation: it owns the CPU and the memory bus
// and drives the instruction engine, one frame's worth of cycles or one
// instruction at a time, as the caller prefers. Everything in this file is
// external to the CPU/bus model's normative contract -- the frame loop,
// packaging, and wiring described as "external collaborators" -- but is
// carried here so the core is usable as a complete headless emulator.
type Console struct {
	Instance *instance.Instance
	CPU      *cpu.CPU
	Memory   *memory.Memory

	cyclesPerFrame int
}

// NewConsole allocates a Console with a fresh CPU and memory bus. prefDir
// is where the instance's preferences file lives; pass "" to use the
// current working directory.
func NewConsole(prefDir string) (*Console, error) {
	ins, err := instance.NewInstance(prefDir)
	if err != nil {
		return nil, err
	}

	con := &Console{
		Instance:       ins,
		CPU:            cpu.New(),
		Memory:         memory.NewMemory(),
		cyclesPerFrame: clocks.CyclesPerFrame,
	}
	con.CPU.SetLogPermission(ins.Prefs)

	return con, nil
}

// LoadBIOS installs a BIOS image into the console's memory. Loading it
// from a file is the host's responsibility (out of scope, per the
// cartridge/BIOS-loading Non-goal).
func (con *Console) LoadBIOS(data []uint8) {
	con.Memory.LoadBIOS(data)
}

// Reset reinitialises the CPU to its power-on state.
func (con *Console) Reset() error {
	return con.CPU.Reset(con.Memory)
}

// SetFrameBudget overrides the number of cycles RunFrame treats as one
// frame. A value of zero restores the hardware default.
func (con *Console) SetFrameBudget(cycles int) {
	if cycles <= 0 {
		cycles = clocks.CyclesPerFrame
	}
	con.cyclesPerFrame = cycles
}

// Step executes exactly one instruction and returns the cycles it cost.
func (con *Console) Step() (int, error) {
	return con.CPU.Step(con.Memory)
}

// RunFrame steps the CPU until the accumulated cycle count meets or exceeds
// the per-frame budget (280,896 cycles by default, per §2), and returns the
// total cycles actually consumed. This is the "frame loop" the core spec
// calls an external collaborator: it exists here purely so the core is a
// runnable emulator, not because the CPU/bus model depends on it.
func (con *Console) RunFrame() (int, error) {
	total := 0
	for total < con.cyclesPerFrame {
		n, err := con.Step()
		if err != nil {
			logger.Logf("console", "frame aborted after %d cycles: %v", total, err)
			return total, err
		}
		total += n
	}
	return total, nil
}
