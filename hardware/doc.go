// Package hardware is the base package for the GBA emulation core. It and
// its sub-packages contain everything required for a headless, single-step
// or free-running CPU and memory model.
//
// The Console type is the root of the emulation: it owns the CPU and the
// memory bus and drives the instruction engine one frame's worth of cycles
// at a time, or one instruction at a time, as the caller prefers.
package hardware
