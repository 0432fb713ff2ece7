package engine

import (
	"github.com/kythe/cmakeval/cmakelib/ast"
)

// SourceLoader reads the CMake script at path, parses it (via the excluded
// upstream parser collaborator) and returns its block-structured Node tree.
// Supplied by the embedding application; include() and add_subdirectory()
// read scripts only through it, while find_package() checks candidate module
// paths with os.Stat before loading them through it.
type SourceLoader func(path string) ([]Node, error)

// NewSourceLoaderFromParser adapts a raw-text-to-AST parse function (the
// upstream parser's entry point) into a SourceLoader by also running
// BuildBlocks over its result.
func NewSourceLoaderFromParser(parse func(path string) (*ast.CMakeFile, error)) SourceLoader {
	return func(path string) ([]Node, error) {
		file, err := parse(path)
		if err != nil {
			return nil, err
		}
		return BuildBlocks(file.Commands)
	}
}

// ExecuteFile runs nodes as the top-level script of a fresh evaluator run:
// the driver's responsibility of managing file-vs-subdirectory scope
// boundaries (spec.md §2 row 14, §4.8's include/add_subdirectory contract).
// The caller is expected to have already pushed whatever outer scope this
// file should execute in (ExecuteFile itself pushes none).
func ExecuteFile(ctx *Context, nodes []Node) error {
	err := RunBlock(ctx, nodes)
	ctx.ReturnRequested = false
	return err
}
