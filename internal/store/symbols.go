package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/refract-dev/refract/internal/index"
	"github.com/refract-dev/refract/internal/syntax"
)

func (s *Store) InsertSymbol(row *SymbolRow) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO symbols (file_id, name, kind, modifiers,
			start_line, start_col, start_offset, end_line, end_col, end_offset)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.FileID, row.Name, row.Kind, marshalModifiers(row.Modifiers),
		row.StartLine, row.StartCol, row.StartOffset, row.EndLine, row.EndCol, row.EndOffset,
	)
	if err != nil {
		return 0, fmt.Errorf("insert symbol: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	row.ID = id
	return id, nil
}

func (s *Store) SymbolsByFile(fileID int64) ([]*SymbolRow, error) {
	return s.querySymbols("WHERE file_id = ?", fileID)
}

func (s *Store) SymbolsByName(name string) ([]*SymbolRow, error) {
	return s.querySymbols("WHERE name = ?", name)
}

func (s *Store) querySymbols(where string, args ...any) ([]*SymbolRow, error) {
	rows, err := s.db.Query(
		`SELECT id, file_id, name, kind, modifiers,
			start_line, start_col, start_offset, end_line, end_col, end_offset
		 FROM symbols `+where+` ORDER BY start_line, start_col`, args...)
	if err != nil {
		return nil, fmt.Errorf("query symbols: %w", err)
	}
	defer rows.Close()
	var out []*SymbolRow
	for rows.Next() {
		row := &SymbolRow{}
		var mods string
		if err := rows.Scan(&row.ID, &row.FileID, &row.Name, &row.Kind, &mods,
			&row.StartLine, &row.StartCol, &row.StartOffset,
			&row.EndLine, &row.EndCol, &row.EndOffset); err != nil {
			return nil, fmt.Errorf("scan symbol: %w", err)
		}
		row.Modifiers = unmarshalModifiers(mods)
		out = append(out, row)
	}
	return out, rows.Err()
}

// ReplaceFileSymbols swaps a file's record and symbols for the given batch
// in one transaction, bumping the file version when the file already
// existed.
func (s *Store) ReplaceFileSymbols(path, language, hash string, lineCount int, symbols []*syntax.Symbol) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	version := 1
	var prev int64 = -1
	err = tx.QueryRow("SELECT id, version FROM files WHERE path = ?", path).Scan(&prev, &version)
	switch {
	case err == nil:
		version++
		if _, err := tx.Exec("DELETE FROM files WHERE id = ?", prev); err != nil {
			return fmt.Errorf("delete old file: %w", err)
		}
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("lookup file %s: %w", path, err)
	}

	res, err := tx.Exec(
		"INSERT INTO files (path, language, hash, line_count, version, last_indexed) VALUES (?, ?, ?, ?, ?, ?)",
		path, language, hash, lineCount, version, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert file: %w", err)
	}
	fileID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}

	for _, sym := range symbols {
		r := sym.Location.Range
		_, err := tx.Exec(
			`INSERT INTO symbols (file_id, name, kind, modifiers,
				start_line, start_col, start_offset, end_line, end_col, end_offset)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			fileID, sym.Name, string(sym.Kind), marshalModifiers(sym.Modifiers),
			r.Start.Line, r.Start.Column, r.Start.Offset,
			r.End.Line, r.End.Column, r.End.Offset,
		)
		if err != nil {
			return fmt.Errorf("insert symbol %q: %w", sym.Name, err)
		}
	}
	return tx.Commit()
}

// LoadIndex hydrates an in-memory symbol index from the database. Hydrated
// symbols carry no scope or declaration handle; those are per-parse.
func (s *Store) LoadIndex(idx *index.SymbolIndex) error {
	files, err := s.Files()
	if err != nil {
		return err
	}
	for _, f := range files {
		rows, err := s.SymbolsByFile(f.ID)
		if err != nil {
			return err
		}
		syms := make([]*syntax.Symbol, 0, len(rows))
		for _, row := range rows {
			syms = append(syms, row.toSymbol(f.Path))
		}
		idx.ReplaceFile(f.Path, syms, index.FileMeta{Path: f.Path, Language: f.Language})
	}
	return nil
}

func (r *SymbolRow) toSymbol(path string) *syntax.Symbol {
	return &syntax.Symbol{
		Name: r.Name,
		Kind: syntax.SymbolKind(r.Kind),
		Location: syntax.Location{
			FilePath: path,
			Range: syntax.Range{
				Start: syntax.Position{Line: r.StartLine, Column: r.StartCol, Offset: r.StartOffset},
				End:   syntax.Position{Line: r.EndLine, Column: r.EndCol, Offset: r.EndOffset},
			},
		},
		Scope:     syntax.NoScope,
		Modifiers: r.Modifiers,
		Decl:      syntax.NoNode,
	}
}

func marshalModifiers(mods []string) string {
	if len(mods) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(mods)
	return string(b)
}

func unmarshalModifiers(s string) []string {
	if s == "" || s == "null" {
		return nil
	}
	var mods []string
	_ = json.Unmarshal([]byte(s), &mods)
	if len(mods) == 0 {
		return nil
	}
	return mods
}
