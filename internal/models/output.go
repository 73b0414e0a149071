package models

// OutputFile is a build artifact. It is either a GeneratedFile or a CopiedFile.
type OutputFile interface {
	Destination() string
	isOutputFile()
}

// GeneratedFile is text produced by the build and written to Path.
type GeneratedFile struct {
	Path    string
	Content string
}

// Destination implements OutputFile.
func (f GeneratedFile) Destination() string { return f.Path }

func (GeneratedFile) isOutputFile() {}

// CopiedFile is a static asset copied byte-for-byte from Source to Path.
type CopiedFile struct {
	Source string
	Path   string
}

// Destination implements OutputFile.
func (f CopiedFile) Destination() string { return f.Path }

func (CopiedFile) isOutputFile() {}
