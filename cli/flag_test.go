package cli

import (
	"testing"

	"github.com/matt-dreyer/Tigo-MCP-server/tigo"
)

func TestLevelValueSet(t *testing.T) {
	v := levelValue{level: tigo.LevelDay}
	if v.String() != "day" {
		t.Errorf("default = %q, want day", v.String())
	}
	if err := v.Set("hour"); err != nil {
		t.Fatal(err)
	}
	if v.level != tigo.LevelHour {
		t.Errorf("level = %q after Set(hour)", v.level)
	}
	if v.Type() != "level" {
		t.Errorf("type = %q, want level", v.Type())
	}
}

func TestLevelValueRejectsUnknown(t *testing.T) {
	v := levelValue{}
	if err := v.Set("week"); err == nil {
		t.Fatal("Set(week) succeeded, want error")
	}
}
