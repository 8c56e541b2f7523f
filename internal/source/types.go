package source

type (
	// FileID identifies a file inside a FileSet.
	FileID uint32
	// FileFlags carries metadata about how a file was loaded.
	FileFlags uint8
)

const (
	// FileVirtual marks content that did not come from disk (tests, stdin, embedded sources).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
)

// File is a template source kept around for diagnostics.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32 // offsets of '\n'
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol is a human-readable position, both parts 1-based.
type LineCol struct {
	Line uint32
	Col  uint32
}
