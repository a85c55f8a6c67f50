package main

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/wippyai/script-containers/binding"
)

// command is one parsed script line: an operation and its arguments.
type command struct {
	op   string
	args []any
}

// parseLine splits "Op arg arg..." where every argument is a JSON literal.
// Blank lines and lines starting with # yield ok == false.
func parseLine(line string) (cmd command, ok bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return command{}, false, nil
	}

	op, rest, _ := strings.Cut(line, " ")
	cmd.op = op

	dec := json.NewDecoder(strings.NewReader(rest))
	for {
		var v any
		err := dec.Decode(&v)
		if err == io.EOF {
			break
		}
		if err != nil {
			return command{}, false, fmt.Errorf("argument %d of %s: %w", len(cmd.args)+1, op, err)
		}
		cmd.args = append(cmd.args, v)
	}
	return cmd, true, nil
}

// formatResult renders a call result. Operations without a result print
// nothing; a nil result of Get is shown as undefined.
func formatResult(op string, v any) string {
	if v == nil {
		if op == "Get" {
			return "undefined"
		}
		return ""
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

// execLine runs one line against obj and returns what to print.
func execLine(obj *binding.Object, line string) (string, error) {
	cmd, ok, err := parseLine(line)
	if err != nil || !ok {
		return "", err
	}
	if cmd.op == "help" {
		return strings.Join(obj.Class().MethodNames(), " "), nil
	}
	v, err := obj.Call(cmd.op, cmd.args...)
	if err != nil {
		return "", err
	}
	return formatResult(cmd.op, v), nil
}

// errorText is the message shown for a failed line.
func errorText(err error) string {
	var ex *binding.Exception
	if stderrors.As(err, &ex) {
		return "Error: " + ex.Message
	}
	return "Error: " + err.Error()
}

// runScript executes r line by line, printing results and errors to w.
// A failed line does not stop the script.
func runScript(r io.Reader, w io.Writer, obj *binding.Object, prompt bool) error {
	sc := bufio.NewScanner(r)
	for {
		if prompt {
			fmt.Fprint(w, "> ")
		}
		if !sc.Scan() {
			break
		}
		out, err := execLine(obj, sc.Text())
		switch {
		case err != nil:
			fmt.Fprintln(w, errorText(err))
		case out != "":
			fmt.Fprintln(w, out)
		}
	}
	if prompt {
		fmt.Fprintln(w)
	}
	return sc.Err()
}
