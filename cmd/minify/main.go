// Command minify writes minified copies of templates/ and static/ into dist/,
// which the server prefers in production.
package main

import (
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
)

var mediaTypes = map[string]string{
	".html": "text/html",
	".css":  "text/css",
	".js":   "application/javascript",
}

func newMinifier() *minify.M {
	m := minify.New()
	m.Add("text/html", &html.Minifier{
		TemplateDelims:   html.GoTemplateDelims,
		KeepDocumentTags: true,
		KeepEndTags:      true,
		KeepQuotes:       true,
	})
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("application/javascript", js.Minify)
	return m
}

func main() {
	var (
		root = flag.String("root", ".", "Project root holding templates/ and static/")
		out  = flag.String("out", "dist", "Output directory")
	)
	flag.Parse()

	m := newMinifier()
	total := 0
	for _, dir := range []string{"templates", "static"} {
		n, err := minifyTree(m, filepath.Join(*root, dir), filepath.Join(*out, dir))
		if err != nil {
			log.Fatalf("Failed to minify %s: %v", dir, err)
		}
		total += n
	}
	fmt.Printf("Successfully minified %d files into %s\n", total, *out)
}

// minifyTree mirrors src into dst, minifying files with a known extension
// and copying everything else unchanged.
func minifyTree(m *minify.M, src, dst string) (int, error) {
	count := 0
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if mediaType, ok := mediaTypes[strings.ToLower(filepath.Ext(path))]; ok {
			if data, err = m.Bytes(mediaType, data); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			count++
		}
		return os.WriteFile(target, data, 0644)
	})
	return count, err
}
