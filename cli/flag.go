package cli

import (
	"github.com/matt-dreyer/Tigo-MCP-server/tigo"
	"github.com/spf13/pflag"
)

// levelValue exposes a data granularity as a command line flag.
type levelValue struct {
	level tigo.Level
}

// String implements pflag.Value.
func (v *levelValue) String() string {
	return string(v.level)
}

func (v *levelValue) Set(value string) error {
	level, err := tigo.ParseLevel(value)
	if err != nil {
		return err
	}
	v.level = level
	return nil
}

func (v *levelValue) Type() string {
	return "level"
}

var _ pflag.Value = &levelValue{}
