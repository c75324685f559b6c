// Package shell is the tree-walking executor: it maps ast.Node values to
// process operations (fork/exec, pipe, dup2, wait) the way
// original_source/src/ast/ast_exec.c and shell_variables.c describe,
// following the teacher's os/exec + os.Pipe() pipeline idiom
// (opal-lang-opal/runtime/executor/pipeline_runner.go) rather than
// reimplementing a fork/exec loop by hand.
package shell

// Status is the shell's internal exit-status type. Values 0-255 are
// ordinary shell-visible exit codes; every negative value is an
// internal sentinel ported from original_source/src/exit_codes.h, and
// never reaches a command's argv or $? — the executor intercepts and
// acts on it before it could (spec.md §5/§7).
type Status int

const (
	// StatusOK is success: the zero value doubles as the default.
	StatusOK Status = 0
)

const (
	ECUnknown              Status = -1
	ECSyntax               Status = -2
	ECCommandNotExecutable Status = -126
	ECCommandNotFound      Status = -127
	ECMemory               Status = -3000
	ECForkProblem          Status = -3001
	ECExitMax              Status = -4245
	ECExitMin              Status = -4500

	// ECBreak/ECContinue match original_source/src/exit_codes.h exactly
	// for the single-level case (n==1); original only has these two
	// point constants, with no level. spec.md's `break n`/`continue n`
	// need a level, so each gets its own 1000-wide band below its base
	// instead — BreakRequest(1)/ContinueRequest(1) reproduce the
	// original values, deeper levels walk further negative.
	ECBreak      Status = -5000
	ECBreakMax   Status = -5999
	ECContinue   Status = -6000
	ECContinueMax Status = -6999
)

// ExitRequest encodes a requested `exit n` as a sentinel status in the
// EC_EXIT_MIN..EC_EXIT_MAX band, so it can propagate up through
// COMMAND_LIST/AND/OR/loop evaluation like any other status until
// something above catches it (here, only the top-level driver does).
func ExitRequest(n int) Status {
	return ECExitMin + Status(n&0xff)
}

// IsExitRequest reports whether s is an `exit n` sentinel.
func (s Status) IsExitRequest() bool {
	return s >= ECExitMin && s <= ECExitMax
}

// ExitCode recovers the n an IsExitRequest status was built from.
func (s Status) ExitCode() int {
	return int(s - ECExitMin)
}

// BreakRequest encodes `break n` (n defaults to 1 for a bare break).
func BreakRequest(n int) Status {
	if n < 1 {
		n = 1
	}
	return ECBreak - Status(n-1)
}

// ContinueRequest encodes `continue n` (n defaults to 1 for a bare continue).
func ContinueRequest(n int) Status {
	if n < 1 {
		n = 1
	}
	return ECContinue - Status(n-1)
}

// IsBreak reports whether s is a `break n` sentinel and, if so, its level.
func (s Status) IsBreak() (int, bool) {
	if s > ECBreak || s < ECBreakMax {
		return 0, false
	}
	return int(ECBreak - s + 1), true
}

// IsContinue reports whether s is a `continue n` sentinel and, if so, its level.
func (s Status) IsContinue() (int, bool) {
	if s > ECContinue || s < ECContinueMax {
		return 0, false
	}
	return int(ECContinue - s + 1), true
}

// Truthy reports whether s counts as "success" for AND/OR/NOT/while/until
// (spec.md §4.5): exactly status zero.
func (s Status) Truthy() bool {
	return s == StatusOK
}

// Shell returns the value a user-visible `$?` or a process exit code
// should carry for s: sentinels in the exit-request band are unwrapped,
// a negative sentinel otherwise is mapped to its absolute value (matching
// original_source/src/main.c's "exit_code < 0 ? -exit_code : exit_code"),
// and ordinary statuses pass through unchanged.
func (s Status) Shell() int {
	if s.IsExitRequest() {
		return s.ExitCode()
	}
	if s < 0 {
		return int(-s)
	}
	return int(s)
}
