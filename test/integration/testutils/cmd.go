package testutils

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
)

// RunRuncap executes a runcap command with the arguments given as a single
// string, split on whitespace. Use RunRuncapArgs when an argument must
// preserve spaces.
func RunRuncap(ctx context.Context, env []string, binary, cmdArgs string, nolog bool) (stdout, stderr []byte, err error) {
	return RunRuncapArgs(ctx, env, binary, strings.Fields(cmdArgs), nolog)
}

// RunRuncapArgs executes a runcap command with pre-split arguments, so
// arguments with spaces (e.g. sh -c "printf out") arrive intact.
func RunRuncapArgs(ctx context.Context, env []string, binary string, args []string, nolog bool) (stdout, stderr []byte, err error) {
	var outData, errData bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdout = &outData
	cmd.Stderr = &errData

	// Last duplicate key wins in exec.Cmd env, so the custom env and the
	// log silencer go after os.Environ.
	cmdEnv := append(os.Environ(), env...)
	if nolog {
		cmdEnv = append(cmdEnv, "RUNCAP_NO_LOG=true")
	}
	cmd.Env = cmdEnv

	err = cmd.Run()

	return outData.Bytes(), errData.Bytes(), err
}
