package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/artpar/dockstate/internal/core/module"
)

// output writes the single JSON object a command produces.
type output struct {
	w    io.Writer
	errw io.Writer
}

func newOutput(w, errw io.Writer) *output {
	return &output{w: w, errw: errw}
}

// success writes a success payload.
func (o *output) success(data interface{}) error {
	if err := o.encode(data); err != nil {
		fmt.Fprintf(o.errw, "dockstate: write result: %v\n", err)
		return err
	}
	return nil
}

// failure writes a failure payload. If stdout cannot take it, the message
// goes to errw; the exit code already signals the failure.
func (o *output) failure(f *module.Failure) {
	if err := o.encode(f); err != nil {
		fmt.Fprintf(o.errw, "dockstate: write failure: %v (msg: %s)\n", err, f.Msg)
	}
}

func (o *output) encode(v interface{}) error {
	return json.NewEncoder(o.w).Encode(v)
}
