package discharge

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// Verdict is a solver's answer to one check-sat(-assuming) call.
type Verdict int

const (
	Unsat Verdict = iota
	Sat
	Unknown
)

// Prover is the external SMT oracle the discharge pass treats as a
// blocking, one-outstanding-query-at-a-time collaborator (spec.md §5).
// Session is the production implementation, wiring an actual solver
// subprocess over stdio; tests substitute a stub that never shells out.
type Prover interface {
	Raw(command string) error
	Assert(expr string) error
	Push() error
	Pop() error
	CheckSat() (Verdict, error)
	CheckSatAssuming(lits []string) (Verdict, error)
	GetValue(name string) (string, error)
	NewActivationLiteral() string
	Close() error
}

// Session wraps one solver child process for the lifetime of a single
// component's discharge (spec.md §6: "standard SMT-LIB 2.6 over stdio with
// solver-specific command-line flags"). Every method issues a command and,
// for the ones that expect a reply, blocks on stdout.
type Session struct {
	backend Backend
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stdout  *bufio.Reader
	tee     io.Writer
	closed  bool
}

// NewSession launches backend as a child process and returns a live
// Session. dumpLog, if non-nil, tees every command/response pair to it
// (spec.md §6: "--dump-solver-log enables a tee to a file").
func NewSession(backend Backend, dumpLog io.Writer) (*Session, error) {
	path, args := backend.Args()
	cmd := exec.Command(path, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("discharge: %s: %w", backend, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("discharge: %s: %w", backend, err)
	}
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("discharge: %s: failed to start: %w", backend, err)
	}
	s := &Session{backend: backend, cmd: cmd, stdin: stdin, stdout: bufio.NewReader(stdout), tee: dumpLog}
	// atexit runs Close when the driver exits through atexit.Exit (as
	// cmd/filc's main does), so the child is reaped even on an exit path
	// that skipped Close; an unrecovered panic does not run the hook.
	atexit.Register(func() { _ = s.Close() })
	return s, nil
}

func (s *Session) send(line string) error {
	if s.tee != nil {
		fmt.Fprintln(s.tee, line)
	}
	_, err := fmt.Fprintln(s.stdin, line)
	return err
}

func (s *Session) recvLine() (string, error) {
	line, err := s.stdout.ReadString('\n')
	if s.tee != nil && line != "" {
		fmt.Fprint(s.tee, "; <- ", line)
	}
	return strings.TrimSpace(line), err
}

// Raw sends an arbitrary SMT-LIB command with no reply expected, used for
// declare-const/declare-fun/define-fun (spec.md §4.7 steps 2-3).
func (s *Session) Raw(command string) error { return s.send(command) }

// Assert pushes one assertion.
func (s *Session) Assert(expr string) error {
	return s.send(fmt.Sprintf("(assert %s)", expr))
}

// Push opens a new assertion scope; checkBatch brackets the negated
// conjunction of all facts with Push/Pop.
func (s *Session) Push() error { return s.send("(push 1)") }

// Pop closes the innermost assertion scope.
func (s *Session) Pop() error { return s.send("(pop 1)") }

// NewActivationLiteral declares and returns a fresh Bool constant used to
// gate one fact's assertion under check-sat-assuming, named uniquely per
// session so concurrent per-component discharges (via golang.org/x/sync's
// errgroup, spec.md §5) never collide.
func (s *Session) NewActivationLiteral() string {
	name := s.backend.Symbol("act_", xid.New().String())
	_ = s.send(fmt.Sprintf("(declare-const %s Bool)", name))
	return name
}

// CheckSat issues a plain check-sat and parses the verdict.
func (s *Session) CheckSat() (Verdict, error) {
	if err := s.send("(check-sat)"); err != nil {
		return Unknown, err
	}
	return s.readVerdict()
}

// CheckSatAssuming issues check-sat-assuming over the given activation
// literals (spec.md §6).
func (s *Session) CheckSatAssuming(lits []string) (Verdict, error) {
	if err := s.send(fmt.Sprintf("(check-sat-assuming (%s))", strings.Join(lits, " "))); err != nil {
		return Unknown, err
	}
	return s.readVerdict()
}

func (s *Session) readVerdict() (Verdict, error) {
	line, err := s.recvLine()
	if err != nil {
		return Unknown, err
	}
	switch line {
	case "sat":
		return Sat, nil
	case "unsat":
		return Unsat, nil
	case "unknown":
		// spec.md §4.7 step 5: "Unknown responses are fatal."
		return Unknown, fmt.Errorf("discharge: solver returned unknown")
	default:
		return Unknown, fmt.Errorf("discharge: unexpected solver reply %q", line)
	}
}

// GetValue retrieves name's model value after a Sat verdict (spec.md §4.7
// step 6), returning the solver's raw S-expression value term.
func (s *Session) GetValue(name string) (string, error) {
	if err := s.send(fmt.Sprintf("(get-value (%s))", name)); err != nil {
		return "", err
	}
	line, err := s.recvLine()
	if err != nil {
		return "", err
	}
	// Response shape: ((name value)). Strip the doubled parens and the name.
	line = strings.TrimSuffix(strings.TrimPrefix(line, "(("), "))")
	parts := strings.SplitN(line, " ", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("discharge: malformed get-value reply %q", line)
	}
	return strings.TrimSpace(parts[1]), nil
}

// Close sends (exit), closes stdin, and waits for the child to terminate.
// Idempotent so both an explicit Close and the atexit hook can call it
// safely.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	_ = s.send("(exit)")
	_ = s.stdin.Close()
	return s.cmd.Wait()
}
