// Package clocks defines the constant values that describe the timing of
// the GBA's main clock and the frame it drives.
package clocks

// CPUClockMHz is the GBA system clock frequency in MHz, as driven into the
// ARM7TDMI core.
const CPUClockMHz = 16.78

// CyclesPerFrame is the number of CPU cycles in one video frame: 1,232
// cycles per scanline (960 active plus 272 of horizontal blank) times 228
// scanlines (160 visible plus 68 of vertical blank).
const CyclesPerFrame = 280896

// ScanlinesPerFrame is the number of scanlines, visible and blanked, in one
// video frame.
const ScanlinesPerFrame = 228

// CyclesPerScanline is the number of CPU cycles spent on one scanline.
const CyclesPerScanline = CyclesPerFrame / ScanlinesPerFrame
