package compiler

import (
	"fmt"
	"path"
	"strings"
	"unicode"

	"weave/internal/ast"
	"weave/internal/diag"
	"weave/internal/traverse"
)

const (
	metaRunFirst = "spaceless.first"
	metaRunLast  = "spaceless.last"
)

func spacelessEnter(p *traverse.Path, s *State) error {
	s.spaceless++
	markTextRuns(p.Node)
	return nil
}

func spacelessExit(p *traverse.Path, s *State) error {
	s.spaceless--
	return spliceBody(p, p.Node.Children(ast.FieldBody))
}

// markTextRuns tags the first and last Text of every run of adjacent Text
// siblings below n.
func markTextRuns(n *ast.Node) {
	ast.Walk(n, func(cur *ast.Node) bool {
		for _, spec := range ast.FieldsOf(cur.Kind) {
			if !spec.List {
				continue
			}
			list := cur.Children(spec.Name)
			for i, c := range list {
				if c.Kind != ast.KindText || c.IsHost() {
					continue
				}
				if i == 0 || list[i-1].Kind != ast.KindText {
					c.SetMeta(metaRunFirst, true)
				}
				if i == len(list)-1 || list[i+1].Kind != ast.KindText {
					c.SetMeta(metaRunLast, true)
				}
			}
		}
		return true
	})
}

func spacelessText(p *traverse.Path, s *State) error {
	if s.spaceless == 0 || p.Node.IsHost() {
		return nil
	}
	v := collapseSpace(p.Node.Value)
	if first, _ := p.Node.Meta[metaRunFirst].(bool); first {
		v = strings.TrimLeftFunc(v, unicode.IsSpace)
	}
	if last, _ := p.Node.Meta[metaRunLast].(bool); last {
		v = strings.TrimRightFunc(v, unicode.IsSpace)
	}
	if v == "" {
		return p.Remove()
	}
	p.Node.Value = v
	return nil
}

// collapseSpace folds every whitespace run into one space.
func collapseSpace(v string) string {
	var sb strings.Builder
	sb.Grow(len(v))
	inSpace := false
	for _, r := range v {
		if unicode.IsSpace(r) {
			if !inSpace {
				sb.WriteByte(' ')
			}
			inSpace = true
			continue
		}
		inSpace = false
		sb.WriteRune(r)
	}
	return sb.String()
}

func convertIf(p *traverse.Path, _ *State) error {
	var alt *ast.Node
	if list := p.Node.Children(ast.FieldAlternate); len(list) > 0 {
		alt = ast.JSBlock(list...)
	}
	test := p.Node.Child(ast.FieldTest)
	return p.ReplaceWithJS(ast.JSIf(test, ast.JSBlock(p.Node.Children(ast.FieldConsequent)...), alt))
}

func convertFor(p *traverse.Path, s *State) error {
	sc := p.Scope
	key, _ := p.Data(dataLoopKey).(*traverse.Binding)
	value, _ := p.Data(dataLoopValue).(*traverse.Binding)
	if value == nil {
		return s.Error(diag.TplUnsupported, "for loop without a value variable", p.Node.Span, "")
	}

	seq := p.Node.Child(ast.FieldSequence)
	if seq == nil {
		seq = ast.JSArray()
	}
	var left, right *ast.Node
	vars := []*traverse.Binding{value}
	if key != nil {
		vars = []*traverse.Binding{key, value}
		left = ast.JSVar("const", ast.JSArrayPattern(ast.JSIdent(key.LocalName), ast.JSIdent(value.LocalName)), nil)
		right = ast.JSCall(s.runtime("entries"), seq)
	} else {
		left = ast.JSVar("const", ast.JSIdent(value.LocalName), nil)
		right = seq
	}

	body := s.hoist(sc)
	if sc.EscapesContext() {
		ctx := sc.ContextName()
		for _, b := range vars {
			body = append(body, ast.JSExprStmt(ast.JSAssign(ast.JSMember(ast.JSIdent(ctx), b.Name), ast.JSIdent(b.LocalName))))
		}
	}
	body = append(body, p.Node.Children(ast.FieldBody)...)
	return p.ReplaceWithJS(ast.JSForOf(left, right, ast.JSBlock(body...)))
}

// templateImport imports the template object of src under a name derived
// from its file stem: "./card.twig" -> _card.
func (s *State) templateImport(src string) string {
	stem := strings.TrimSuffix(path.Base(src), path.Ext(src))
	return s.AddImportFrom(src, templateObject, "_"+stem)
}

// includeContext is the context argument passed to an included render.
func (s *State) includeContext(p *traverse.Path) *ast.Node {
	arg := p.Node.Child(ast.FieldArgument)
	if p.Node.Has(ast.FlagContextFree) {
		if arg == nil {
			return ast.JSObject()
		}
		return arg
	}
	args := []*ast.Node{ast.JSIdent(p.Scope.ContextName())}
	if arg != nil {
		args = append(args, arg)
	}
	return ast.JSCall(s.runtime("createSubContext"), args...)
}

func renderCall(obj string, ctx *ast.Node) *ast.Node {
	return ast.JSExprStmt(ast.JSCall(ast.JSMember(ast.JSIdent(obj), "render"), ctx))
}

func convertInclude(p *traverse.Path, s *State) error {
	obj := s.templateImport(p.Node.Child(ast.FieldSource).Value)
	return p.ReplaceWithJS(renderCall(obj, s.includeContext(p)))
}

// convertEmbedEnter creates the module-level object that carries the embed's
// block overrides before the blocks are lowered.
func convertEmbedEnter(p *traverse.Path, s *State) error {
	parent := s.templateImport(p.Node.Child(ast.FieldSource).Value)
	obj := s.GenerateUid("_embed")
	create := ast.JSCall(ast.JSMember(ast.JSIdent("Object"), "create"), ast.JSIdent(parent))
	s.emit(ast.JSVar("const", ast.JSIdent(obj), create))
	p.SetData(dataEmbedObject, obj)
	return nil
}

func convertEmbedExit(p *traverse.Path, s *State) error {
	obj, _ := p.Data(dataEmbedObject).(string)
	return p.ReplaceWithJS(renderCall(obj, s.includeContext(p)))
}

func convertFilter(p *traverse.Path, s *State) error {
	target := p.Node.Child(ast.FieldTarget)
	if target == nil {
		return s.Error(diag.TplUnsupported, fmt.Sprintf("filter %q has nothing to filter", p.Node.Name), p.Node.Span, "")
	}
	args := []*ast.Node{target}
	args = append(args, p.Node.Children(ast.FieldArguments)...)
	return p.ReplaceWithJS(ast.JSCall(s.runtime(p.Node.Name), args...))
}
