package compiler

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"weave/internal/ast"
)

func TestAddImportFromIsIdempotent(t *testing.T) {
	s := NewState(DefaultOptions(), "page.twig")
	a := s.AddImportFrom("x", "y", "")
	b := s.AddImportFrom("x", "y", "other")
	if a != "y" || b != "y" {
		t.Fatalf("locals = %q, %q", a, b)
	}
	if diff := cmp.Diff(`import {y} from "x";`, ast.Sketch(s.Program)); diff != "" {
		t.Fatalf("program mismatch (-want +got):\n%s", diff)
	}
}

func TestImportLocalsAvoidCollisions(t *testing.T) {
	s := NewState(DefaultOptions(), "page.twig")
	s.MarkUsed("text")
	got := s.AddImportFrom("dom", "text", "")
	if got != "text$1" {
		t.Fatalf("local = %q", got)
	}
	if other := s.AddImportFrom("other", "text", ""); other != "text$2" {
		t.Fatalf("second module local = %q", other)
	}
}

func TestImportDeclarationShapes(t *testing.T) {
	s := NewState(DefaultOptions(), "page.twig")
	s.EnsureImportFrom("side")
	s.AddNamespaceImportFrom("lib", "m")
	s.AddImportFrom("lib", "w", "")
	s.AddDefaultImportFrom("lib", "Lib")
	s.AddImportFrom("side", "a", "")
	s.EnsureImportFrom("lib")
	if again := s.AddNamespaceImportFrom("lib", "other"); again != "m" {
		t.Fatalf("namespace local = %q", again)
	}

	want := lines(
		`import {a} from "side";`,
		`import * as m from "lib";`,
		`import Lib, {w} from "lib";`,
	)
	if diff := cmp.Diff(want, ast.Sketch(s.Program)); diff != "" {
		t.Fatalf("program mismatch (-want +got):\n%s", diff)
	}
}

func TestImportsStayAboveEmittedCode(t *testing.T) {
	s := NewState(DefaultOptions(), "page.twig")
	s.AddImportFrom("a", "x", "")
	s.emit(ast.JSExprStmt(s.runtime("later")))
	s.AddImportFrom("b", "y", "")
	want := lines(
		`import {x} from "a";`,
		`import {later} from "weave-runtime";`,
		`import {y} from "b";`,
		`later;`,
	)
	if diff := cmp.Diff(want, ast.Sketch(s.Program)); diff != "" {
		t.Fatalf("program mismatch (-want +got):\n%s", diff)
	}
}
