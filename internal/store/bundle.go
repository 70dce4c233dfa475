package store

import (
	"bytes"
	"encoding/gob"
	"os"
)

func encodeBundle(b resourceBundle) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(b); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func loadBundle(path string) (resourceBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return resourceBundle{}, err
	}
	var b resourceBundle
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&b); err != nil {
		return resourceBundle{}, err
	}
	return b, nil
}
