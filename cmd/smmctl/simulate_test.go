package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSimulate(t *testing.T) {
	tests := []struct {
		name        string
		size        string
		script      string
		wantErr     string
		wantContain []string
	}{
		{
			name: "ten blocks released out of order",
			size: "1024",
			script: `# ten 10-byte blocks, then release #3, #5, #4
alloc b1 10
alloc b2 10
alloc b3 10
alloc b4 10
alloc b5 10
alloc b6 10
alloc b7 10
alloc b8 10
alloc b9 10
alloc b10 10
expect-count 1
free b3
expect-count 2
free b5
count
expect-count 3
free b4
expect-count 2
dump
`,
			wantContain: []string{
				"free blocks: 3\n",
				"freeblock(0x80): size=144 next=0x200\n",
			},
		},
		{
			name: "whole block consumed",
			size: "120",
			script: `alloc a 60
expect-count 0
expect-fail b 60
free a
expect-count 1
alloc c 70
expect-count 0
`,
		},
		{
			name: "zero-size block",
			size: "1024",
			script: `alloc z 0
free z
expect-count 1
stats
`,
			wantContain: []string{"allocated:     0 blocks, 0 bytes\n"},
		},
		{
			name:    "double free",
			size:    "1024",
			script:  "alloc a 10\nalloc b 10\nfree a\nfree a\n",
			wantErr: "script.txt:4: free a: arena corruption",
		},
		{
			name:    "count mismatch",
			size:    "1024",
			script:  "alloc a 10\nexpect-count 2\n",
			wantErr: "free block count is 1, expected 2",
		},
		{
			name:    "unexpected success",
			size:    "1024",
			script:  "expect-fail a 10\n",
			wantErr: "allocation of 10 bytes succeeded at 0x40",
		},
		{
			name:    "no fit",
			size:    "120",
			script:  "alloc a 100\n",
			wantErr: "no free block fits 100 bytes",
		},
		{
			name:    "unknown command",
			size:    "1024",
			script:  "realloc a 10\n",
			wantErr: `unknown command "realloc"`,
		},
		{
			name:    "unknown name",
			size:    "1024",
			script:  "free ghost\n",
			wantErr: `unknown name "ghost"`,
		},
		{
			name:    "wrong arity",
			size:    "1024",
			script:  "alloc a\n",
			wantErr: "expected 2 argument(s), got 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			t.Cleanup(resetFlags)
			simSize = tt.size
			path := writeScript(t, tt.script)

			out, err := captureOutput(t, func() error {
				return runSimulate([]string{path}, strings.NewReader(""))
			})
			if tt.wantErr != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			for _, want := range tt.wantContain {
				require.Contains(t, out, want)
			}
		})
	}
}

func TestSimulateStdin(t *testing.T) {
	resetFlags()
	t.Cleanup(resetFlags)

	out, err := captureOutput(t, func() error {
		return runSimulate(nil, strings.NewReader("alloc a 1\ncount\n"))
	})
	require.NoError(t, err)
	require.Equal(t, "free blocks: 1\n", out)

	_, err = captureOutput(t, func() error {
		return runSimulate([]string{"-"}, strings.NewReader("free a\n"))
	})
	require.ErrorContains(t, err, "stdin:1")
}

func TestSimulateBadFlags(t *testing.T) {
	resetFlags()
	t.Cleanup(resetFlags)

	simAlign = "0x6"
	_, err := runSimulateNoOutput(t)
	require.Error(t, err)

	simAlign = "0xF"
	simSize = "8"
	_, err = runSimulateNoOutput(t)
	require.Error(t, err)
}

func runSimulateNoOutput(t *testing.T) (string, error) {
	t.Helper()
	return captureOutput(t, func() error {
		return runSimulate(nil, strings.NewReader(""))
	})
}
