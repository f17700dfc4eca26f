// Copyright 2026 © The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

package guardian

import "testing"

func TestLevelOrder(t *testing.T) {
	levels := Levels()
	for i := 1; i < len(levels); i++ {
		if levels[i].Rank() <= levels[i-1].Rank() {
			t.Fatalf("levels out of order at %d: %s <= %s", i, levels[i], levels[i-1])
		}
	}
}

func TestParseLevelRoundTrip(t *testing.T) {
	for _, l := range Levels() {
		got, ok := ParseLevel(l.String())
		if !ok || got != l {
			t.Errorf("round trip failed for %s", l)
		}
	}
	if _, ok := ParseLevel("panic"); ok {
		t.Error("unknown name must not parse")
	}
}

func TestLevelIsValid(t *testing.T) {
	for _, l := range Levels() {
		if !l.IsValid() {
			t.Errorf("%s should be valid", l)
		}
	}
	if Level(5).IsValid() || Level(-1).IsValid() {
		t.Error("out-of-range levels must be invalid")
	}
}

func TestParseTrigger(t *testing.T) {
	for _, tr := range Triggers() {
		got, ok := ParseTrigger(tr.String())
		if !ok || got != tr {
			t.Errorf("round trip failed for %s", tr)
		}
	}
	if _, ok := ParseTrigger("meltdown"); ok {
		t.Error("unknown trigger must not parse")
	}
}
