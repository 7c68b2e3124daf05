package scaffold

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Operation is one file-system step of project scaffolding. Validate
// inspects the target without touching it; Execute performs the step.
// Description is what the user sees for the step.
type Operation interface {
	Validate(ctx context.Context, force bool) error
	Execute(ctx context.Context) error
	Description() string
}

// WriteFileOp lays down one file. Existing files are kept, not
// overwritten, unless validation ran with force. Re-running init on a
// project must never eat hand-edited config.
type WriteFileOp struct {
	Path    string
	Content []byte
	Mode    fs.FileMode

	keep bool
}

func (op *WriteFileOp) Validate(ctx context.Context, force bool) error {
	if op.Content == nil {
		return fmt.Errorf("no content for %s", op.Path)
	}
	if force {
		op.keep = false
		return nil
	}
	_, err := os.Stat(op.Path)
	op.keep = err == nil
	return nil
}

func (op *WriteFileOp) Execute(ctx context.Context) error {
	if op.keep {
		return nil
	}
	if dir := filepath.Dir(op.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	return os.WriteFile(op.Path, op.Content, op.Mode)
}

func (op *WriteFileOp) Description() string {
	if op.keep {
		return fmt.Sprintf("Keep %s (already exists)", op.Path)
	}
	return fmt.Sprintf("Create %s (%d bytes)", op.Path, len(op.Content))
}

// ExecuteOptions configures a scaffolding run.
type ExecuteOptions struct {
	DryRun bool
	Force  bool
	Writer io.Writer // defaults to os.Stdout
}

// Execute validates every operation, then runs them in order. Dry runs
// report what would happen instead.
func Execute(ctx context.Context, ops []Operation, opts ExecuteOptions) error {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}

	for _, op := range ops {
		if err := op.Validate(ctx, opts.Force); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}

	for _, op := range ops {
		if opts.DryRun {
			fmt.Fprintf(opts.Writer, "✓ [DRY RUN] %s\n", op.Description())
			continue
		}
		if err := op.Execute(ctx); err != nil {
			return fmt.Errorf("execution failed: %w", err)
		}
		fmt.Fprintf(opts.Writer, "✓ %s\n", op.Description())
	}

	return nil
}
