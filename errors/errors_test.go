package errors

import (
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestErrorMarshalAndWrite(t *testing.T) {
	c := qt.New(t)

	body, err := ErrUserNotFound.MarshalJSON()
	c.Assert(err, qt.IsNil)
	c.Assert(string(body), qt.Equals, `{"error":"user not found","code":40009}`)

	rec := httptest.NewRecorder()
	ErrInvalidAmount.Withf("got %d", -5).Write(rec)
	c.Assert(rec.Code, qt.Equals, 400)
	c.Assert(rec.Body.String(), qt.Contains, "amount must be a positive number: got -5")
	c.Assert(rec.Header().Get("Content-Type"), qt.Equals, "application/json")
}

// TestErrorCodesAreUnique parses the current package's source files,
// finds all vars initialized with an Error{...} composite literal,
// pulls out the Code field, and fails if there are duplicates.
func TestErrorCodesAreUnique(t *testing.T) {
	// Reflection can't list all package-level vars,
	// so the only way is to scan the package's AST
	fset := token.NewFileSet()
	pkgs, err := parser.ParseDir(fset, ".", func(info fs.FileInfo) bool {
		name := info.Name()
		return strings.HasSuffix(name, ".go") && !strings.HasSuffix(name, "_test.go")
	}, 0)
	if err != nil {
		t.Fatalf("parse dir: %v", err)
	}
	pkg, ok := pkgs["errors"]
	if !ok {
		t.Fatal("package 'errors' not found")
	}

	byCode := map[int][]string{}
	for _, f := range pkg.Files {
		ast.Inspect(f, func(n ast.Node) bool {
			gd, ok := n.(*ast.GenDecl)
			if !ok || gd.Tok != token.VAR {
				return true
			}
			for _, spec := range gd.Specs {
				vs, ok := spec.(*ast.ValueSpec)
				if !ok {
					continue
				}
				for i, name := range vs.Names {
					if i >= len(vs.Values) {
						continue
					}
					cl, ok := vs.Values[i].(*ast.CompositeLit)
					if !ok || !isErrorComposite(cl) {
						continue
					}
					if code, ok := extractCodeField(cl); ok {
						byCode[code] = append(byCode[code], name.Name)
					}
				}
			}
			return true
		})
	}

	for code, names := range byCode {
		if len(names) > 1 {
			t.Errorf("duplicate Error.Code %d: %s", code, strings.Join(names, ", "))
		}
	}
}

// isErrorComposite returns true if the composite literal's type is named "Error".
func isErrorComposite(cl *ast.CompositeLit) bool {
	switch t := cl.Type.(type) {
	case *ast.Ident:
		return t.Name == "Error"
	case *ast.SelectorExpr:
		return t.Sel.Name == "Error"
	default:
		return false
	}
}

// extractCodeField looks for a "Code: <int>" entry in the composite literal.
func extractCodeField(cl *ast.CompositeLit) (int, bool) {
	for _, elt := range cl.Elts {
		kv, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			continue
		}
		keyIdent, ok := kv.Key.(*ast.Ident)
		if !ok || keyIdent.Name != "Code" {
			continue
		}
		if v, ok := kv.Value.(*ast.BasicLit); ok && v.Kind == token.INT {
			txt := strings.ReplaceAll(v.Value, "_", "")
			if n, err := strconv.ParseInt(txt, 0, 32); err == nil {
				return int(n), true
			}
		}
	}
	return 0, false
}
