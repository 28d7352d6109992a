package gitlib

import (
	"bytes"
	"io"

	git2go "github.com/libgit2/git2go/v34"
)

// Blob wraps a libgit2 blob.
type Blob struct {
	blob *git2go.Blob
}

// Hash returns the blob hash.
func (b *Blob) Hash() Hash {
	return HashFromOid(b.blob.Id())
}

// Size returns the blob size.
func (b *Blob) Size() int64 {
	return b.blob.Size()
}

// Contents returns the blob contents.
func (b *Blob) Contents() []byte {
	return b.blob.Contents()
}

// Reader returns a reader for the blob contents.
func (b *Blob) Reader() io.Reader {
	return bytes.NewReader(b.blob.Contents())
}

// Free releases the blob resources.
func (b *Blob) Free() {
	if b.blob != nil {
		b.blob.Free()
		b.blob = nil
	}
}

// Native returns the underlying libgit2 blob.
func (b *Blob) Native() *git2go.Blob {
	return b.blob
}

// CountLines returns the number of text lines in data. A trailing byte
// without a final newline still counts as a line.
func CountLines(data []byte) int {
	if len(data) == 0 {
		return 0
	}

	count := bytes.Count(data, []byte{'\n'})

	if data[len(data)-1] != '\n' {
		count++
	}

	return count
}

// SplitLines splits data into text lines without their newline terminators.
func SplitLines(data []byte) []string {
	if len(data) == 0 {
		return nil
	}

	trimmed := data
	if trimmed[len(trimmed)-1] == '\n' {
		trimmed = trimmed[:len(trimmed)-1]
	}

	parts := bytes.Split(trimmed, []byte{'\n'})
	lines := make([]string, len(parts))

	for i, p := range parts {
		lines[i] = string(p)
	}

	return lines
}
