package cpu

import "testing"

func flags(n, z, c, v bool) StatusRegister {
	var s StatusRegister
	s.SetN(n)
	s.SetZ(z)
	s.SetC(c)
	s.SetV(v)
	return s
}

func TestConditionTable(t *testing.T) {
	cases := []struct {
		name string
		cond condition
		s    StatusRegister
		want bool
	}{
		{"EQ/Z set", condEQ, flags(false, true, false, false), true},
		{"EQ/Z clear", condEQ, flags(false, false, false, false), false},
		{"NE/Z clear", condNE, flags(false, false, false, false), true},
		{"CS/C set", condCS, flags(false, false, true, false), true},
		{"CC/C clear", condCC, flags(false, false, false, false), true},
		{"MI/N set", condMI, flags(true, false, false, false), true},
		{"PL/N clear", condPL, flags(false, false, false, false), true},
		{"VS/V set", condVS, flags(false, false, false, true), true},
		{"VC/V clear", condVC, flags(false, false, false, false), true},
		{"HI/C set Z clear", condHI, flags(false, false, true, false), true},
		{"HI/C set Z set", condHI, flags(false, true, true, false), false},
		{"LS/C clear", condLS, flags(false, false, false, false), true},
		{"LS/Z set", condLS, flags(false, true, true, false), true},
		{"GE/N==V", condGE, flags(true, false, false, true), true},
		{"GE/N!=V", condGE, flags(true, false, false, false), false},
		{"LT/N!=V", condLT, flags(true, false, false, false), true},
		{"GT/Z clear N==V", condGT, flags(false, false, false, false), true},
		{"GT/Z set", condGT, flags(false, true, false, false), false},
		{"LE/Z set", condLE, flags(false, true, false, false), true},
		{"LE/N!=V", condLE, flags(true, false, false, false), true},
		{"AL always", condAL, flags(false, false, false, false), true},
		{"NV never", condNV, flags(true, true, true, true), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.cond.evaluate(tc.s); got != tc.want {
				t.Errorf("%v.evaluate() = %v, want %v", tc.cond, got, tc.want)
			}
		})
	}
}
