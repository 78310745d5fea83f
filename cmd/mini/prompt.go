package main

import (
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"tlog.app/go/errors"

	"github.com/minilang/mini/compiler/vm"
)

// promptSource reads one integer per IN instruction from an interactive
// line prompt. The returned func releases the terminal.
func promptSource() (vm.InputSource, func(), error) {
	ln := liner.NewLiner()
	ln.SetCtrlCAborts(true)

	source := func() (int64, error) {
		line, err := ln.Prompt("> ")
		if err != nil {
			return 0, errors.Wrap(err, "prompt")
		}

		v, err := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
		if err != nil {
			return 0, errors.Wrap(err, "parse input")
		}

		ln.AppendHistory(line)

		return v, nil
	}

	return source, func() { ln.Close() }, nil
}
