package parser

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"cool-semant/ast"
	"cool-semant/lexer"
)

// SourceFile is one input file with its import and module lines blanked out,
// so line numbers still match the file on disk.
type SourceFile struct {
	Path string
	Text string
}

// ResolveImports loads each path and every file it imports, transitively.
// Imports are written `import "name";` on a line of their own and name a
// sibling file, with ".cool" added when missing. A `module name` header is
// dropped only when it is the first non-empty line. Dependencies come before
// the files that import them and every file appears once.
func ResolveImports(paths ...string) ([]SourceFile, error) {
	r := &resolver{seen: make(map[string]bool)}
	for _, path := range paths {
		if err := r.visit(path, nil); err != nil {
			return nil, err
		}
	}
	return r.files, nil
}

type resolver struct {
	seen  map[string]bool
	files []SourceFile
}

func (r *resolver) visit(path string, stack []string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	for _, s := range stack {
		if s == abs {
			return fmt.Errorf("import cycle through %s", path)
		}
	}
	if r.seen[abs] {
		return nil
	}
	r.seen[abs] = true

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", path, err)
	}

	lines := strings.Split(string(content), "\n")
	var imports []string
	header := true
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if header && isModuleLine(trimmed) {
			lines[i] = ""
		} else if name, ok := importName(trimmed); ok {
			if !strings.HasSuffix(name, ".cool") {
				name += ".cool"
			}
			imports = append(imports, filepath.Join(filepath.Dir(path), name))
			lines[i] = ""
		}
		header = false
	}

	for _, imp := range imports {
		if err := r.visit(imp, append(stack, abs)); err != nil {
			return err
		}
	}
	r.files = append(r.files, SourceFile{Path: path, Text: strings.Join(lines, "\n")})
	return nil
}

// ParseFiles parses every file into one program. Each class records the
// path of the file it was declared in.
func ParseFiles(files []SourceFile) (*ast.Program, []string) {
	prog := &ast.Program{}
	var errs []string
	for _, f := range files {
		errs = append(errs, ParseSource(prog, f.Path, strings.NewReader(f.Text))...)
	}
	return prog, errs
}

// ParseSource parses one source stream into prog and returns its syntax errors.
func ParseSource(prog *ast.Program, filename string, r io.Reader) []string {
	p := New(lexer.NewLexer(r), filename)
	p.ParseInto(prog)
	return p.Errors()
}

// isModuleLine matches `module name` with an optional semicolon.
func isModuleLine(line string) bool {
	fields := strings.Fields(strings.TrimSuffix(line, ";"))
	return len(fields) == 2 && fields[0] == "module" && isIdentifier(fields[1])
}

// importName extracts name from `import "name";`. The semicolon is optional.
func importName(line string) (string, bool) {
	rest, ok := strings.CutPrefix(line, "import")
	if !ok {
		return "", false
	}
	rest = strings.TrimSpace(rest)
	if !strings.HasPrefix(rest, `"`) {
		return "", false
	}
	end := strings.Index(rest[1:], `"`)
	if end <= 0 {
		return "", false
	}
	name := rest[1 : end+1]
	if tail := strings.TrimSpace(rest[end+2:]); tail != "" && tail != ";" {
		return "", false
	}
	return name, true
}

func isIdentifier(s string) bool {
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return s != ""
}
