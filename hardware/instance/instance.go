// Package instance defines those parts of the emulation that might change
// from instance to instance of the console type, but are not the console
// itself -- chiefly user-visible preferences that are loaded from, and
// saved back to, disk.
//
// Particularly useful when running more than one instance of the emulation
// in parallel (for example, a headless test harness alongside an
// interactive session), each with its own independent preferences file.
package instance

import (
	"path/filepath"

	"github.com/jetsetilly/gba/prefs"
)

// Preferences groups every user-configurable setting the console
// recognises. None of them affect the ARM7TDMI/bus model's normative
// behaviour; they govern ambient concerns such as logging verbosity.
type Preferences struct {
	dsk *prefs.Disk

	// VerboseLogging widens what the logger package is permitted to record.
	// *Preferences satisfies the logger.Permission interface through it (see
	// AllowLogging).
	VerboseLogging prefs.Bool

	// FrameBudget holds a frame length in cycles, zero (the default once
	// loaded) meaning the hardware default. Console does not read it; the
	// length RunFrame uses is set with Console.SetFrameBudget.
	FrameBudget prefs.Int
}

// AllowLogging implements logger.Permission by deferring to the
// VerboseLogging preference.
func (p *Preferences) AllowLogging() bool {
	return p.VerboseLogging.Get()
}

// NewPreferences creates a Preferences instance backed by a file in dir
// named "gba.pref". Values are left at their zero value; call Load to
// populate them from disk.
func NewPreferences(dir string) (*Preferences, error) {
	dsk, err := prefs.NewDisk(filepath.Join(dir, "gba.pref"))
	if err != nil {
		return nil, err
	}

	p := &Preferences{dsk: dsk}

	if err := dsk.Add("log.verbose", &p.VerboseLogging); err != nil {
		return nil, err
	}
	if err := dsk.Add("frame.budget", &p.FrameBudget); err != nil {
		return nil, err
	}

	return p, nil
}

// Load populates the preferences from disk. It is not an error for the
// backing file not to exist yet.
func (p *Preferences) Load() error {
	return p.dsk.Load()
}

// Save writes the preferences to disk.
func (p *Preferences) Save() error {
	return p.dsk.Save()
}

// SetDefaults resets every preference to the console's recommended
// defaults. Useful for regression tests that need a known starting state
// regardless of what's saved on disk.
func (p *Preferences) SetDefaults() {
	_ = p.VerboseLogging.Set(false)
	_ = p.FrameBudget.Set(0)
}

// Instance defines those parts of the emulation that might change between
// different instantiations of the console type, but are not the console
// itself.
type Instance struct {
	Prefs *Preferences
}

// NewInstance is the preferred method of initialisation for the Instance
// type. prefDir is the directory the instance's preferences file lives in.
func NewInstance(prefDir string) (*Instance, error) {
	prefs, err := NewPreferences(prefDir)
	if err != nil {
		return nil, err
	}

	ins := &Instance{
		Prefs: prefs,
	}

	return ins, nil
}

// Normalise ensures the instance is in a known default state. Useful for
// regression testing where the initial state must be the same for every run
// of the test.
func (ins *Instance) Normalise() {
	ins.Prefs.SetDefaults()
}
