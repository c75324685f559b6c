package shell

import (
	"os"
	"sync"

	"github.com/Svartorm/PosixShell/internal/ast"
	"github.com/Svartorm/PosixShell/internal/invariant"
)

// flattenPipe turns the left-leaning *ast.Pipe chain the parser builds
// for "a | b | c" — Pipe{Left: Pipe{Left: a, Right: b}, Right: c} — into
// an ordered command list, the shape executePipelineIO expects
// (opal-lang-opal/runtime/executor/pipeline_runner.go).
func flattenPipe(n ast.Node) []ast.Node {
	if p, ok := n.(*ast.Pipe); ok {
		return append(flattenPipe(p.Left), p.Right)
	}
	return []ast.Node{n}
}

// runPipeline executes each stage in its own goroutine connected by
// os.Pipe(), each against its own variable/function scope (every stage
// of a pipeline runs as if in a subshell, per POSIX) — the concurrency
// and plumbing follow pipeline_runner.go's executePipelineIO, adapted to
// this interpreter's binary Pipe AST node.
func (s *Shell) runPipeline(root *ast.Pipe) Status {
	stages := flattenPipe(root)
	invariant.Precondition(len(stages) >= 2, "pipeline must have at least two stages")
	n := len(stages)

	readers := make([]*os.File, n-1)
	writers := make([]*os.File, n-1)
	for i := 0; i < n-1; i++ {
		pr, pw, err := os.Pipe()
		if err != nil {
			for j := 0; j < i; j++ {
				_ = readers[j].Close()
				_ = writers[j].Close()
			}
			return ECForkProblem
		}
		readers[i] = pr
		writers[i] = pw
	}

	statuses := make([]Status, n)
	readerCloseOnce := make([]sync.Once, n-1)
	writerCloseOnce := make([]sync.Once, n-1)

	var wg sync.WaitGroup
	wg.Add(n)

	for i := 0; i < n; i++ {
		idx := i
		node := stages[i]

		go func() {
			defer wg.Done()

			stage := s.clone()
			if idx > 0 {
				stage.SetFD(0, readers[idx-1])
				defer readerCloseOnce[idx-1].Do(func() { _ = readers[idx-1].Close() })
			}
			if idx < n-1 {
				stage.SetFD(1, writers[idx])
				defer writerCloseOnce[idx].Do(func() { _ = writers[idx].Close() })
			}

			statuses[idx] = stage.Run(node)
		}()
	}

	wg.Wait()

	// TODO: expose the full statuses slice as a PIPESTATUS-style array
	// variable once array variables are supported.
	return statuses[n-1]
}
