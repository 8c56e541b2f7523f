// Package diagfmt renders diagnostic bags for humans (Pretty, Excerpt) and
// for tools (JSON).
package diagfmt
