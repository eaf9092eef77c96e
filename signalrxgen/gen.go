package main

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"strconv"
	"strings"

	"github.com/dave/jennifer/jen"
)

// marker annotates interface declarations the generator picks up.
const marker = "signalrx:receiver"

const (
	signalrxPath = "github.com/philippseith/signalrx"
	rxgoPath     = "github.com/reactivex/rxgo/v2"
)

type receiverSpec struct {
	name    string
	methods []methodSpec
}

type methodSpec struct {
	name   string
	params []paramSpec
}

type paramSpec struct {
	name string
	typ  ast.Expr
}

// sourceImport is an import of the parsed file. explicit aliases must carry
// over to the generated file, inferred package names must not.
type sourceImport struct {
	path     string
	explicit bool
}

// generator collects the annotated interfaces of one source file and renders
// the receiver bindings for them.
type generator struct {
	pkg     string
	imports map[string]sourceImport
	specs   []receiverSpec
}

// run generates the bindings for source and writes them to out.
func run(source, out string) error {
	g := &generator{}
	if err := g.parse(source, nil); err != nil {
		return err
	}
	buf, err := g.generate()
	if err != nil {
		return err
	}
	return os.WriteFile(out, buf, 0644)
}

// parse reads the annotated interfaces from the file. src may carry the
// source as string or []byte for tests, with nil the file is read from disk.
func (g *generator) parse(fileName string, src interface{}) error {
	fSet := token.NewFileSet()
	file, err := parser.ParseFile(fSet, fileName, src, parser.ParseComments)
	if err != nil {
		return err
	}
	g.pkg = file.Name.Name
	g.imports = make(map[string]sourceImport)
	for _, imp := range file.Imports {
		path, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}
		g.imports[importAlias(imp, path)] = sourceImport{path: path, explicit: imp.Name != nil}
	}
	for _, decl := range file.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.TYPE {
			continue
		}
		declMarked := hasMarker(genDecl.Doc)
		for _, spec := range genDecl.Specs {
			typeSpec, ok := spec.(*ast.TypeSpec)
			if !ok || (!declMarked && !hasMarker(typeSpec.Doc)) {
				continue
			}
			ifaceType, ok := typeSpec.Type.(*ast.InterfaceType)
			if !ok {
				return fmt.Errorf("%v: %v is annotated with %v but is not an interface",
					fileName, typeSpec.Name.Name, marker)
			}
			rSpec, err := parseInterface(fileName, typeSpec.Name.Name, ifaceType)
			if err != nil {
				return err
			}
			g.specs = append(g.specs, rSpec)
		}
	}
	if len(g.specs) == 0 {
		return fmt.Errorf("%v: no interface annotated with %v", fileName, marker)
	}
	return nil
}

func importAlias(imp *ast.ImportSpec, path string) string {
	if imp.Name != nil {
		return imp.Name.Name
	}
	segments := strings.Split(path, "/")
	alias := segments[len(segments)-1]
	// module major version suffixes are no package names
	if len(segments) > 1 && len(alias) > 1 && alias[0] == 'v' {
		if _, err := strconv.Atoi(alias[1:]); err == nil {
			alias = segments[len(segments)-2]
		}
	}
	return alias
}

func hasMarker(doc *ast.CommentGroup) bool {
	if doc == nil {
		return false
	}
	for _, comment := range doc.List {
		if strings.TrimSpace(strings.TrimPrefix(comment.Text, "//")) == marker {
			return true
		}
	}
	return false
}

func parseInterface(fileName, name string, ifaceType *ast.InterfaceType) (receiverSpec, error) {
	spec := receiverSpec{name: name}
	for _, field := range ifaceType.Methods.List {
		funcType, ok := field.Type.(*ast.FuncType)
		if !ok {
			return spec, fmt.Errorf("%v: %v embeds another interface, only plain methods are supported",
				fileName, name)
		}
		method := methodSpec{name: field.Names[0].Name}
		if funcType.Results != nil && len(funcType.Results.List) > 0 {
			return spec, fmt.Errorf("%v: %v.%v returns values, server to client calls have no return path",
				fileName, name, method.name)
		}
		if funcType.Params != nil {
			for _, param := range funcType.Params.List {
				if _, ok := param.Type.(*ast.Ellipsis); ok {
					return spec, fmt.Errorf("%v: %v.%v is variadic, which the receiver dispatch does not support",
						fileName, name, method.name)
				}
				if len(param.Names) == 0 {
					method.params = append(method.params, paramSpec{
						name: fmt.Sprintf("arg%v", len(method.params)),
						typ:  param.Type,
					})
					continue
				}
				for _, paramName := range param.Names {
					// blank names cannot be referenced in the generated body
					name := paramName.Name
					if name == "_" {
						name = fmt.Sprintf("arg%v", len(method.params))
					}
					method.params = append(method.params, paramSpec{name: name, typ: param.Type})
				}
			}
		}
		spec.methods = append(spec.methods, method)
	}
	return spec, nil
}

// generate renders the bindings for all collected interfaces.
func (g *generator) generate() ([]byte, error) {
	f := jen.NewFile(g.pkg)
	f.HeaderComment("Code generated by signalrxgen. DO NOT EDIT.")
	f.ImportName(signalrxPath, "signalrx")
	f.ImportAlias(rxgoPath, "rxgo")
	for alias, imp := range g.imports {
		if imp.explicit {
			f.ImportAlias(imp.path, alias)
		} else {
			f.ImportName(imp.path, alias)
		}
	}
	for _, spec := range g.specs {
		if err := g.generateReceiver(f, spec); err != nil {
			return nil, err
		}
	}
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *generator) generateReceiver(f *jen.File, spec receiverSpec) error {
	recvName := spec.name + "Receiver"
	f.Commentf("%v receives the %v calls of the server and turns them into observables.", recvName, spec.name)
	f.Type().Id(recvName).Struct(jen.Qual(signalrxPath, "Receiver"))
	for _, method := range spec.methods {
		if err := g.generateMethod(f, recvName, method); err != nil {
			return err
		}
	}
	return nil
}

func (g *generator) generateMethod(f *jen.File, recvName string, method methodSpec) error {
	argsName := method.name + "Args"
	fields := make([]jen.Code, 0, len(method.params))
	for _, param := range method.params {
		typ, err := g.typeCode(param.typ)
		if err != nil {
			return fmt.Errorf("%v.%v: %w", recvName, method.name, err)
		}
		fields = append(fields, jen.Id(exportName(param.name)).Add(typ))
	}
	f.Commentf("%v carries the arguments of one %v call.", argsName, method.name)
	f.Type().Id(argsName).Struct(fields...)

	params := make([]jen.Code, 0, len(method.params))
	forwarded := make([]jen.Code, 0, len(method.params)+1)
	forwarded = append(forwarded, jen.Lit(method.name))
	for _, param := range method.params {
		typ, err := g.typeCode(param.typ)
		if err != nil {
			return fmt.Errorf("%v.%v: %w", recvName, method.name, err)
		}
		params = append(params, jen.Id(param.name).Add(typ))
		forwarded = append(forwarded, jen.Id(param.name))
	}
	f.Func().Params(jen.Id("r").Op("*").Id(recvName)).Id(method.name).
		Params(params...).
		Block(jen.Id("r").Dot("Notify").Call(forwarded...))

	values := make([]jen.Code, 0, len(method.params))
	for i, param := range method.params {
		typ, err := g.typeCode(param.typ)
		if err != nil {
			return fmt.Errorf("%v.%v: %w", recvName, method.name, err)
		}
		values = append(values, jen.Id("invocation").Dot("Arguments").Index(jen.Lit(i)).Assert(typ))
	}
	f.Commentf("Observe%v observes %v calls as %v items.", method.name, method.name, argsName)
	f.Func().Params(jen.Id("r").Op("*").Id(recvName)).Id("Observe"+method.name).
		Params().Qual(rxgoPath, "Observable").
		Block(jen.Return(jen.Id("r").Dot("On").Call(jen.Lit(method.name)).Dot("Map").Call(
			jen.Func().
				Params(jen.Id("_").Qual("context", "Context"), jen.Id("i").Interface()).
				Params(jen.Interface(), jen.Error()).
				Block(
					jen.Id("invocation").Op(":=").Id("i").Assert(jen.Qual(signalrxPath, "Invocation")),
					jen.Return(jen.Id(argsName).Values(values...), jen.Nil()),
				))))
	return nil
}

// typeCode renders a parameter type of the source interface. Identifiers,
// qualified names, pointers, slices, maps and interface{} cover what the
// json based receiver dispatch can deliver.
func (g *generator) typeCode(expr ast.Expr) (jen.Code, error) {
	switch t := expr.(type) {
	case *ast.Ident:
		return jen.Id(t.Name), nil
	case *ast.SelectorExpr:
		ident, ok := t.X.(*ast.Ident)
		if !ok {
			return nil, fmt.Errorf("unsupported parameter type %T", expr)
		}
		imp, ok := g.imports[ident.Name]
		if !ok {
			return nil, fmt.Errorf("unknown package %v in parameter type", ident.Name)
		}
		return jen.Qual(imp.path, t.Sel.Name), nil
	case *ast.StarExpr:
		inner, err := g.typeCode(t.X)
		if err != nil {
			return nil, err
		}
		return jen.Op("*").Add(inner), nil
	case *ast.ArrayType:
		if t.Len != nil {
			return nil, fmt.Errorf("unsupported array parameter type")
		}
		elem, err := g.typeCode(t.Elt)
		if err != nil {
			return nil, err
		}
		return jen.Index().Add(elem), nil
	case *ast.MapType:
		key, err := g.typeCode(t.Key)
		if err != nil {
			return nil, err
		}
		value, err := g.typeCode(t.Value)
		if err != nil {
			return nil, err
		}
		return jen.Map(key).Add(value), nil
	case *ast.InterfaceType:
		if len(t.Methods.List) == 0 {
			return jen.Interface(), nil
		}
		return nil, fmt.Errorf("unsupported parameter type %T", expr)
	default:
		return nil, fmt.Errorf("unsupported parameter type %T", expr)
	}
}

func exportName(name string) string {
	return strings.ToUpper(name[:1]) + name[1:]
}
