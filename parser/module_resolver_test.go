package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestResolveImports(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "shapes.cool", "module shapes\nclass Shape {};\n")
	writeFile(t, dir, "circle.cool", "import \"shapes\";\nclass Circle inherits Shape {};\n")
	main := writeFile(t, dir, "main.cool", "import \"shapes\";\nimport \"circle.cool\";\n\nclass Main {\n  main() : Object { 0 };\n};\n")

	files, err := ResolveImports(main)
	if err != nil {
		t.Fatalf("ResolveImports: %v", err)
	}

	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f.Path))
	}
	if got := strings.Join(names, ","); got != "shapes.cool,circle.cool,main.cool" {
		t.Fatalf("unexpected file order %s", got)
	}

	prog, errs := ParseFiles(files)
	if len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	assertClassCount(t, prog, 3)

	mainClass := prog.Classes[2]
	if mainClass.Name != "Main" || mainClass.Line != 4 || filepath.Base(mainClass.Filename) != "main.cool" {
		t.Errorf("Main position wrong: %s:%d", mainClass.Filename, mainClass.Line)
	}
	if filepath.Base(prog.Classes[0].Filename) != "shapes.cool" || prog.Classes[0].Line != 2 {
		t.Errorf("Shape position wrong: %s:%d", prog.Classes[0].Filename, prog.Classes[0].Line)
	}
}

func TestResolveImportsKeepsOrdinaryLines(t *testing.T) {
	dir := t.TempDir()
	src := "module app\nclass Main {\n  module : Int;\n  import : Int;\n" +
		"  main() : Object {\n    module <- 5\n  };\n};\n"
	main := writeFile(t, dir, "main.cool", src)

	files, err := ResolveImports(main)
	if err != nil {
		t.Fatalf("ResolveImports: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(files))
	}

	lines := strings.Split(files[0].Text, "\n")
	if lines[0] != "" {
		t.Errorf("module header kept: %q", lines[0])
	}
	for i, want := range map[int]string{2: "  module : Int;", 3: "  import : Int;", 5: "    module <- 5"} {
		if lines[i] != want {
			t.Errorf("line %d: expected %q, got %q", i+1, want, lines[i])
		}
	}

	prog, errs := ParseFiles(files)
	if len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	assertClassCount(t, prog, 1)
	if got := len(prog.Classes[0].Features); got != 3 {
		t.Errorf("expected 3 features, got %d", got)
	}
}

func TestImportName(t *testing.T) {
	tests := []struct {
		line string
		name string
		ok   bool
	}{
		{`import "shapes";`, "shapes", true},
		{`import "circle.cool"`, "circle.cool", true},
		{`import : Int;`, "", false},
		{`import <- 3;`, "", false},
		{`import "";`, "", false},
		{`import "a" + b;`, "", false},
		{`importer "a";`, "", false},
	}
	for _, tt := range tests {
		name, ok := importName(tt.line)
		if name != tt.name || ok != tt.ok {
			t.Errorf("importName(%q) = %q, %v; expected %q, %v", tt.line, name, ok, tt.name, tt.ok)
		}
	}
}

func TestResolveImportsErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		dir := t.TempDir()
		main := writeFile(t, dir, "main.cool", "import \"nowhere\";\n")
		_, err := ResolveImports(main)
		if err == nil || !strings.Contains(err.Error(), "failed to import") {
			t.Errorf("expected import failure, got %v", err)
		}
	})

	t.Run("cycle", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.cool", "import \"b\";\n")
		writeFile(t, dir, "b.cool", "import \"a\";\n")
		_, err := ResolveImports(filepath.Join(dir, "a.cool"))
		if err == nil || !strings.Contains(err.Error(), "import cycle") {
			t.Errorf("expected import cycle, got %v", err)
		}
	})
}
