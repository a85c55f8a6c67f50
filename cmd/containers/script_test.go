package main

import (
	"bytes"
	"context"
	"reflect"
	"strings"
	"testing"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		line   string
		want   command
		wantOK bool
		err    bool
	}{
		{line: "", wantOK: false},
		{line: "   # comment", wantOK: false},
		{line: "Num", want: command{op: "Num"}, wantOK: true},
		{line: "Add 3 7", want: command{op: "Add", args: []any{3.0, 7.0}}, wantOK: true},
		{line: `Add "a" {"x": 1}`, want: command{op: "Add", args: []any{"a", map[string]any{"x": 1.0}}}, wantOK: true},
		{line: `Set 0 [true, null]`, want: command{op: "Set", args: []any{0.0, []any{true, nil}}}, wantOK: true},
		{line: "Get abc", err: true},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, ok, err := parseLine(tt.line)
			if tt.err {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseLine: %v", err)
			}
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRunScript(t *testing.T) {
	tests := []struct {
		name   string
		cfg    config
		script string
		want   string
	}{
		{
			name:   "array",
			cfg:    config{shape: "array", elem: "s32", backend: "linear", pages: 1},
			script: "Add 3 7\nNum\nGet 0\nRemoveAt 0\nNum\nGet 0\nGet 5\n",
			want:   "0\n2\n3\n1\n7\nError: invalid index\n",
		},
		{
			name:   "map on guest memory",
			cfg:    config{shape: "map", key: "string", value: "s32", backend: "wazero", pages: 1, policy: "legacy"},
			script: "Add \"a\" 1\nAdd \"b\" 2\nAdd \"a\" 9\nGet \"a\"\nGet \"b\"\nNum\nGet \"z\"\nRemove \"z\"\n",
			want:   "9\n2\n2\nundefined\nError: invalid key argument\n",
		},
		{
			name:   "fixed",
			cfg:    config{shape: "fixed", elem: "string", dim: 4, backend: "linear", pages: 1},
			script: "Set 0 \"x\"\nGet 0\nGet 4\nAdd 1\n",
			want:   "\"x\"\nError: invalid index\nError: FixedArray has no method Add\n",
		},
		{
			name:   "argument count",
			cfg:    config{shape: "set", elem: "u8", backend: "linear", pages: 1},
			script: "Add\nAdd 1\nAdd 1\nNum\nGetMaxIndex\n",
			want:   "Error: invalid arguments length\n1\n1\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := open(context.Background(), tt.cfg)
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			defer env.close()

			var out bytes.Buffer
			if err := runScript(strings.NewReader(tt.script), &out, env.obj, false); err != nil {
				t.Fatalf("runScript: %v", err)
			}
			if out.String() != tt.want {
				t.Errorf("output:\n%s\nwant:\n%s", out.String(), tt.want)
			}
		})
	}
}

func TestOpen_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  config
	}{
		{"unknown shape", config{shape: "list", elem: "u8", backend: "linear", pages: 1}},
		{"unknown backend", config{shape: "array", elem: "u8", backend: "mmap", pages: 1}},
		{"unknown policy", config{shape: "map", key: "u8", value: "u8", backend: "linear", pages: 1, policy: "wide"}},
		{"unknown type", config{shape: "array", elem: "list<u8>", backend: "linear", pages: 1}},
		{"zero dim", config{shape: "fixed", elem: "u8", dim: 0, backend: "linear", pages: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if env, err := open(context.Background(), tt.cfg); err == nil {
				env.close()
				t.Fatal("expected error")
			}
		})
	}
}
