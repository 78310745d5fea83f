package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/minilang/mini/compiler"
	"github.com/minilang/mini/compiler/format"
	"github.com/minilang/mini/compiler/vm"
)

func main() {
	compileCmd := &cli.Command{
		Name:        "compile",
		Description: "compile a MiniLang source file and inspect pipeline stages",
		Action:      compileAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("no-opt", false, "disable constant folding"),
			cli.NewFlag("emit", "", "print one stage and exit: tokens|ast|ir|asm|machine"),
			cli.NewFlag("out", "", "directory to write all stage artifacts to"),
		},
	}

	runCmd := &cli.Command{
		Name:        "run",
		Description: "compile a MiniLang source file and execute it on the VM",
		Action:      runAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("no-opt", false, "disable constant folding"),
			cli.NewFlag("input", "", "comma separated integers fed to read statements"),
			cli.NewFlag("trace", false, "print a VM snapshot after every instruction"),
		},
	}

	serveCmd := &cli.Command{
		Name:        "serve",
		Description: "serve the compiler over HTTP",
		Action:      serveAct,
		Flags: []*cli.Flag{
			cli.NewFlag("listen", ":8080", "address to listen on"),
		},
	}

	app := &cli.Command{
		Name:        "mini",
		Description: "mini is a compiler and virtual machine for the MiniLang language",
		Commands: []*cli.Command{
			compileCmd,
			runCmd,
			serveCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func compileAct(c *cli.Command) error {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	for _, a := range c.Args {
		res, err := compiler.CompileFile(ctx, a, !c.Bool("no-opt"))
		if err != nil {
			return errors.Wrap(err, "compile %v", a)
		}

		for _, w := range res.Warnings {
			fmt.Fprintf(os.Stderr, "warning: %v\n", w)
		}

		if emit := c.String("emit"); emit != "" {
			b, err := renderStage(res, emit)
			if err != nil {
				return err
			}

			fmt.Printf("%s", b)

			continue
		}

		if out := c.String("out"); out != "" {
			err = writeArtifacts(res, out)
			if err != nil {
				return errors.Wrap(err, "write artifacts")
			}
		}
	}

	return nil
}

func runAct(c *cli.Command) error {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	for _, a := range c.Args {
		res, err := compiler.CompileFile(ctx, a, !c.Bool("no-opt"))
		if err != nil {
			return errors.Wrap(err, "compile %v", a)
		}

		for _, w := range res.Warnings {
			fmt.Fprintf(os.Stderr, "warning: %v\n", w)
		}

		source, closeInput, err := inputSource(c.String("input"))
		if err != nil {
			return err
		}

		out, err := compiler.Execute(ctx, res.Machine, source, c.Bool("trace"))
		closeInput()

		for _, s := range out.Trace {
			fmt.Fprintf(os.Stderr, "pc=%4d op=%2d arg=%3d acc=%6d mem=%v\n", s.PC, s.Op, s.Arg, s.Acc, s.Mem)
		}

		for _, v := range out.Outputs {
			fmt.Printf("%d\n", v)
		}

		if err != nil {
			return errors.Wrap(err, "execute %v", a)
		}
	}

	return nil
}

// inputSource builds the VM input source: a fixed list when values were
// given on the command line, an interactive prompt otherwise.
func inputSource(list string) (vm.InputSource, func(), error) {
	if list != "" {
		var vals []int64

		for _, f := range strings.FieldsFunc(list, func(r rune) bool { return r == ',' || r == ' ' }) {
			v, err := strconv.ParseInt(strings.TrimSpace(f), 10, 64)
			if err != nil {
				return nil, nil, errors.Wrap(err, "parse input value %q", f)
			}

			vals = append(vals, v)
		}

		return vm.Inputs(vals...), func() {}, nil
	}

	return promptSource()
}

func writeArtifacts(res *compiler.Result, dir string) error {
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return errors.Wrap(err, "mkdir")
	}

	for _, stage := range []string{"tokens", "ast", "ir", "asm", "machine"} {
		b, err := renderStage(res, stage)
		if err != nil {
			return err
		}

		err = os.WriteFile(filepath.Join(dir, stage+".txt"), b, 0o644)
		if err != nil {
			return errors.Wrap(err, "write %v", stage)
		}
	}

	return nil
}

func renderStage(res *compiler.Result, stage string) ([]byte, error) {
	switch stage {
	case "tokens":
		return format.Tokens(nil, res.Tokens), nil
	case "ast":
		return format.Program(nil, res.AST)
	case "ir":
		return format.IR(nil, res.IR), nil
	case "asm":
		return format.Asm(nil, res.Asm), nil
	case "machine":
		return format.Machine(nil, res.Machine), nil
	default:
		return nil, errors.New("unknown stage: %v", stage)
	}
}
