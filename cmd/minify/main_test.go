package main

import (
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCSSMinification(t *testing.T) {
	m := newMinifier()
	input := `
		body {
			color: #fff;
			margin: 0  ;
		}
	`
	got, err := m.String("text/css", input)
	if err != nil {
		t.Fatalf("CSS minification failed: %v", err)
	}
	if want := `body{color:#fff;margin:0}`; got != want {
		t.Errorf("CSS minification mismatch:\nGot:      %q\nExpected: %q", got, want)
	}
}

func TestTemplateActionsSurvive(t *testing.T) {
	m := newMinifier()
	input := `{{ define "board" }}
<div   id="board">
    {{ range .view.Cells }}<span class="cell">{{ .Value }}</span>{{ end }}
</div>
{{ end }}`
	got, err := m.String("text/html", input)
	if err != nil {
		t.Fatalf("HTML minification failed: %v", err)
	}
	if len(got) >= len(input) {
		t.Errorf("expected output to shrink, got %d >= %d bytes", len(got), len(input))
	}
	if _, err := template.New("t").Parse(got); err != nil {
		t.Fatalf("minified template no longer parses: %v\n%s", err, got)
	}
	for _, want := range []string{"define", ".view.Cells", ".Value"} {
		if !strings.Contains(got, want) {
			t.Errorf("minified template lost %q: %s", want, got)
		}
	}
}

func TestMinifyTree(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "dist")

	files := map[string]string{
		"app.css":        "a {  color : red ; }",
		"js/app.js":      "function add(a, b) {\n  return a + b;\n}\n",
		"fonts/font.txt": "left   alone",
	}
	for name, body := range files {
		path := filepath.Join(src, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}

	n, err := minifyTree(newMinifier(), src, dst)
	if err != nil {
		t.Fatalf("minifyTree failed: %v", err)
	}
	if n != 2 {
		t.Errorf("minified %d files, want 2", n)
	}

	css, err := os.ReadFile(filepath.Join(dst, "app.css"))
	if err != nil {
		t.Fatal(err)
	}
	if string(css) != "a{color:red}" {
		t.Errorf("app.css = %q", css)
	}
	jsOut, err := os.ReadFile(filepath.Join(dst, "js", "app.js"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(jsOut), "\n  return") {
		t.Errorf("app.js was not minified: %q", jsOut)
	}
	raw, err := os.ReadFile(filepath.Join(dst, "fonts", "font.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != files["fonts/font.txt"] {
		t.Errorf("untouched file changed: %q", raw)
	}
}

func TestMinifyTreeMissingSource(t *testing.T) {
	if _, err := minifyTree(newMinifier(), filepath.Join(t.TempDir(), "nope"), t.TempDir()); err == nil {
		t.Error("expected an error for a missing source directory")
	}
}
