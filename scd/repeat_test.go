package scd

import "testing"

func TestIsRepeatedFrame(t *testing.T) {
	all := repeatFeatures{
		AFD: 0, RsCsDiff: 0, TSCIndex: 0, NegBalance: 2, PosBalance: 10,
		DiffAFD: -1, DiffTSC: 0,
	}
	if !isRepeatedFrame(all) {
		t.Error("all conditions satisfied: want repeated")
	}

	notAFD := all
	notAFD.AFD = 1
	if isRepeatedFrame(notAFD) {
		t.Error("AFD != 0: want not repeated")
	}

	notBalance := all
	notBalance.NegBalance = 4
	if isRepeatedFrame(notBalance) {
		t.Error("negBalance > 3: want not repeated")
	}

	notDiff := all
	notDiff.DiffAFD = 1
	if isRepeatedFrame(notDiff) {
		t.Error("diffAFD > 0: want not repeated")
	}
}
