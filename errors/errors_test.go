package errors

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"
	"testing"

	qt "github.com/frankban/quicktest"
)

// codeFormat is anchored by qt.Matches.
const codeFormat = `[A-Z]+(_[A-Z]+)*`

// catalogueEntry is an Error declared as a package level var.
type catalogueEntry struct {
	name   string
	code   string
	fields map[string]bool
	pos    token.Position
}

// readCatalogue lists the Error literals declared in errors_definition.go.
// Package level vars cannot be enumerated at runtime, so the file is read as
// source.
func readCatalogue(c *qt.C) []catalogueEntry {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "errors_definition.go", nil, 0)
	c.Assert(err, qt.IsNil)

	var entries []catalogueEntry
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.VAR {
			continue
		}
		for _, spec := range gen.Specs {
			vs := spec.(*ast.ValueSpec)
			for i, value := range vs.Values {
				lit, ok := value.(*ast.CompositeLit)
				if !ok || !namesErrorType(lit.Type) {
					continue
				}
				entry := catalogueEntry{
					name:   vs.Names[i].Name,
					fields: map[string]bool{},
					pos:    fset.Position(vs.Names[i].Pos()),
				}
				for _, elt := range lit.Elts {
					kv, ok := elt.(*ast.KeyValueExpr)
					if !ok {
						continue
					}
					key, ok := kv.Key.(*ast.Ident)
					if !ok {
						continue
					}
					entry.fields[key.Name] = true
					if s, ok := kv.Value.(*ast.BasicLit); ok && key.Name == "Code" && s.Kind == token.STRING {
						entry.code, _ = strconv.Unquote(s.Value)
					}
				}
				entries = append(entries, entry)
			}
		}
	}
	return entries
}

func namesErrorType(expr ast.Expr) bool {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name == "Error"
	case *ast.SelectorExpr:
		return t.Sel.Name == "Error"
	}
	return false
}

func TestCatalogue(t *testing.T) {
	c := qt.New(t)
	entries := readCatalogue(c)
	c.Assert(len(entries) > 10, qt.IsTrue, qt.Commentf("only %d errors found", len(entries)))

	seen := map[string]catalogueEntry{}
	for _, e := range entries {
		c.Assert(e.code, qt.Matches, codeFormat, qt.Commentf("%s at %s", e.name, e.pos))
		c.Assert(e.fields["HTTPstatus"], qt.IsTrue, qt.Commentf("%s has no HTTP status", e.name))
		c.Assert(e.fields["Err"], qt.IsTrue, qt.Commentf("%s has no message", e.name))
		if prev, ok := seen[e.code]; ok {
			c.Errorf("code %s used by both %s (%s) and %s (%s)", e.code, prev.name, prev.pos, e.name, e.pos)
		}
		seen[e.code] = e
	}

	// spot check a few codes the API clients depend on
	for code, want := range map[string]Error{
		"INVALID_AMOUNT":    ErrInvalidAmount,
		"PROVINCE_CONFLICT": ErrProvinceConflict,
		"INVALID_SIGNATURE": ErrInvalidSignature,
	} {
		c.Assert(seen[code].name, qt.Not(qt.Equals), "", qt.Commentf("missing %s", code))
		c.Assert(want.Code, qt.Equals, code)
	}
}
