// Package refract is a multi-language source-code intelligence engine
// built on tree-sitter. Language front ends parse source text into a
// normalized AST and symbol list; on top of that shared model refract
// resolves identifier occurrences back to their declaring symbol (honoring
// nested scopes and shadowing), plans rename and inline-function
// refactorings, and maintains a project-wide symbol index with exact and
// fuzzy lookup.
//
// # Pipeline
//
//  1. Index: for each source file, the front end claiming its extension
//     parses it with tree-sitter, maps the concrete syntax tree onto the
//     normalized vocabulary, and extracts symbols. Symbols land in the
//     in-memory index and are persisted to SQLite.
//
//  2. Query and refactor: the index answers name and fuzzy searches across
//     the project; rename and inline re-parse the target file and produce
//     edit plans over the fresh tree.
//
// # Usage
//
// Create an Engine, index source files, then query or refactor:
//
//	e, err := refract.New("refract.db")
//	if err != nil { ... }
//	defer e.Close()
//
//	ctx := context.Background()
//	err = e.IndexDirectory(ctx, "path/to/project")
//
//	results := e.Search("handler", refract.SearchOptions{Fuzzy: true})
//	edits, err := e.RenameAt(ctx, "main.js", 10, 5, "newName")
//
// Rename and inline return edit plans; applying them to disk is the
// caller's responsibility, and a plan is always complete or absent — never
// partial.
//
// # Languages
//
// Built-in front ends cover JavaScript, TypeScript, Go, and Python. Front
// ends implement a four-operation capability set (parse, extract-symbols,
// validate, dispose) and register in an explicitly constructed registry;
// additional languages plug in without touching the resolution or
// refactoring engines.
package refract
