package main

import (
	"context"
	"encoding/json"
	"net/http"

	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/minilang/mini/compiler"
	"github.com/minilang/mini/compiler/format"
	"github.com/minilang/mini/compiler/vm"
)

type (
	compileRequest struct {
		Code     string  `json:"code"`
		Inputs   []int64 `json:"inputs"`
		Stages   bool    `json:"stages"`
		Optimize *bool   `json:"optimize"`
	}

	compileResponse struct {
		Success bool    `json:"success"`
		Outputs []int64 `json:"outputs,omitempty"`
		Error   string  `json:"error,omitempty"`
		Stages  *stages `json:"stages,omitempty"`
	}

	stages struct {
		Tokens   string   `json:"tokens"`
		AST      string   `json:"ast"`
		IR       string   `json:"ir"`
		Asm      string   `json:"asm"`
		Machine  string   `json:"machine"`
		Warnings []string `json:"warnings"`
	}
)

func serveAct(c *cli.Command) error {
	l := tlog.Root()

	mux := http.NewServeMux()
	mux.HandleFunc("/compile", handleCompile)

	l.Printw("listening", "addr", c.String("listen"))

	err := http.ListenAndServe(c.String("listen"), mux)
	if err != nil {
		return errors.Wrap(err, "listen")
	}

	return nil
}

func handleCompile(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "POST expected", http.StatusMethodNotAllowed)
		return
	}

	var r compileRequest

	err := json.NewDecoder(req.Body).Decode(&r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := req.Context()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	reply(w, compile(ctx, r))
}

func compile(ctx context.Context, r compileRequest) compileResponse {
	optimize := r.Optimize == nil || *r.Optimize

	res, err := compiler.Compile(ctx, r.Code, optimize)
	if err != nil {
		return compileResponse{Error: err.Error()}
	}

	out, err := compiler.Execute(ctx, res.Machine, vm.Inputs(r.Inputs...), false)
	if err != nil {
		return compileResponse{Error: err.Error()}
	}

	resp := compileResponse{
		Success: true,
		Outputs: out.Outputs,
	}

	if r.Stages {
		astText, err := format.Program(nil, res.AST)
		if err != nil {
			return compileResponse{Error: err.Error()}
		}

		resp.Stages = &stages{
			Tokens:   string(format.Tokens(nil, res.Tokens)),
			AST:      string(astText),
			IR:       string(format.IR(nil, res.IR)),
			Asm:      string(format.Asm(nil, res.Asm)),
			Machine:  string(format.Machine(nil, res.Machine)),
			Warnings: res.Warnings,
		}
	}

	return resp
}

func reply(w http.ResponseWriter, resp compileResponse) {
	w.Header().Set("Content-Type", "application/json")

	_ = json.NewEncoder(w).Encode(resp)
}
