package zip

import (
	"archive/zip"
	"bytes"
)

// Artifact is one file to include in an archive.
type Artifact struct {
	Filename string
	Data     []byte
}

// Archive bundles artifacts into a single in-memory zip.
func Archive(artifacts []Artifact) []byte {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for _, artifact := range artifacts {
		w, err := zw.Create(artifact.Filename)
		if err != nil {
			continue
		}
		if _, err := w.Write(artifact.Data); err != nil {
			return nil
		}
	}
	_ = zw.Close()
	return buf.Bytes()
}
