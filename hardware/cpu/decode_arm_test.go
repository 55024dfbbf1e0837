package cpu

import (
	"math/rand"
	"testing"
)

// TestClassifyARMIsStableAndMatchesItsOwnPattern fuzzes random 32-bit
// opcodes and confirms that whichever family the classifier selects, that
// family's own (format, mask) pair actually matches the opcode's format
// key -- and that classifying the same opcode twice always gives the same
// answer.
func TestClassifyARMIsStableAndMatchesItsOwnPattern(t *testing.T) {
	lookup := make(map[armFamily]armFormat)
	for _, f := range armFormatTable {
		if f.family == famUndefinedDP {
			continue
		}
		lookup[f.family] = f
	}

	for i := 0; i < 5000; i++ {
		opcode := rand.Uint32()

		first := classifyARM(opcode)
		second := classifyARM(opcode)
		if first != second {
			t.Fatalf("classification unstable for %#08x: %v then %v", opcode, first, second)
		}

		if first == famUndefined {
			continue
		}

		fmtPair, ok := lookup[first]
		if !ok {
			t.Fatalf("classifier returned family %v with no known format/mask pair", first)
		}

		key := armFormatKey(opcode)
		if key&fmtPair.mask != fmtPair.format {
			t.Fatalf("opcode %#08x classified as %v but key %#03x doesn't match format %#03x mask %#03x",
				opcode, first, key, fmtPair.format, fmtPair.mask)
		}
	}
}

func TestFormatKeyExtraction(t *testing.T) {
	// bits 27..20 = 0xAB, bits 7..4 = 0xC
	opcode := uint32(0xAB) << 20
	opcode |= 0xC << 4

	got := armFormatKey(opcode)
	want := uint32(0xABC)
	if got != want {
		t.Errorf("got %#03x, want %#03x", got, want)
	}
}
