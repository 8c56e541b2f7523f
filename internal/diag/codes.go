package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Структурные ошибки шаблона
	TplInfo             Code = 1000
	TplImportPosition   Code = 1001
	TplDynamicSource    Code = 1002
	TplDuplicateBlock   Code = 1003
	TplMacroPosition    Code = 1004
	TplShadowedName     Code = 1005
	TplMissingTemplate  Code = 1006
	TplUnknownSelfMacro Code = 1007
	TplUnsupported      Code = 1008
	TplInheritanceCycle Code = 1009

	// Внутренние ошибки компилятора (баги расширений)
	CmpInfo      Code = 2000
	CmpInvariant Code = 2001

	// IO
	IOLoadFailure   Code = 4001
	IODecodeFailure Code = 4002

	// Проект
	PrjManifest Code = 5001
)

var codeDescription = map[Code]string{
	UnknownCode:         "Unknown error",
	TplInfo:             "Template information",
	TplImportPosition:   "Import outside of template, macro or block",
	TplDynamicSource:    "Template source must be a string literal",
	TplDuplicateBlock:   "Block is defined twice",
	TplMacroPosition:    "Macro declared outside of template level",
	TplShadowedName:     "Name shadows an earlier declaration",
	TplMissingTemplate:  "Document has no template root",
	TplUnknownSelfMacro: "Macro imported from _self does not exist",
	TplUnsupported:      "Unsupported construct",
	TplInheritanceCycle: "Templates extend each other in a cycle",
	CmpInfo:             "Compiler information",
	CmpInvariant:        "Compiler extension misused the traversal API",
	IOLoadFailure:       "Failed to load file",
	IODecodeFailure:     "Failed to decode AST document",
	PrjManifest:         "Invalid weave.toml",
}

// ID returns the stable textual id, e.g. TPL1003.
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("TPL%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("CMP%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	}
	return fmt.Sprintf("E%04d", int(c))
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
