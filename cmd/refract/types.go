package main

// CLIResult is the top-level JSON envelope for all commands.
type CLIResult struct {
	Command string `json:"command"`
	Results any    `json:"results"`
	Error   string `json:"error,omitempty"`
}

// CLISymbol is a JSON-friendly symbol representation. Lines and columns are
// 1-based on the wire.
type CLISymbol struct {
	Name      string   `json:"name"`
	Kind      string   `json:"kind"`
	Modifiers []string `json:"modifiers,omitempty"`
	File      string   `json:"file,omitempty"`
	Language  string   `json:"language,omitempty"`
	StartLine int      `json:"start_line"`
	StartCol  int      `json:"start_col"`
	EndLine   int      `json:"end_line"`
	EndCol    int      `json:"end_col"`
}

// CLISearchResult pairs a symbol with its match quality.
type CLISearchResult struct {
	CLISymbol
	Match string  `json:"match"`
	Score float64 `json:"score"`
}

// CLIReference is one classified occurrence of a symbol.
type CLIReference struct {
	Kind      string `json:"kind"`
	File      string `json:"file"`
	StartLine int    `json:"start_line"`
	StartCol  int    `json:"start_col"`
	EndLine   int    `json:"end_line"`
	EndCol    int    `json:"end_col"`
}

// CLIEdit is one planned text replacement.
type CLIEdit struct {
	File      string `json:"file"`
	Kind      string `json:"kind"`
	StartLine int    `json:"start_line"`
	StartCol  int    `json:"start_col"`
	EndLine   int    `json:"end_line"`
	EndCol    int    `json:"end_col"`
	NewText   string `json:"new_text"`
}

// CLIRefactor is the outcome of a rename or inline plan.
type CLIRefactor struct {
	Success  bool      `json:"success"`
	Applied  bool      `json:"applied"`
	Edits    []CLIEdit `json:"edits,omitempty"`
	Errors   []string  `json:"errors,omitempty"`
	Warnings []string  `json:"warnings,omitempty"`
}

// CLIStats summarizes the index.
type CLIStats struct {
	TotalSymbols  int            `json:"total_symbols"`
	TotalFiles    int            `json:"total_files"`
	SymbolsByKind map[string]int `json:"symbols_by_kind"`
}
