package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrNoTokens is returned when a scene file declares no tokens.
var ErrNoTokens = errors.New("scene has no tokens")

// Decode reads a JSON scene and fills in defaults for missing grid values
// and token scales.
func Decode(r io.Reader) (Scene, error) {
	var sc Scene
	if err := json.NewDecoder(r).Decode(&sc); err != nil {
		return Scene{}, fmt.Errorf("decode scene: %w", err)
	}
	if sc.ID == "" {
		sc.ID = "default"
	}
	if sc.Grid <= 0 {
		sc.Grid = 100
	}
	if sc.GridDistance <= 0 {
		sc.GridDistance = 1
	}
	if len(sc.Tokens) == 0 {
		return Scene{}, fmt.Errorf("scene %s: %w", sc.ID, ErrNoTokens)
	}
	for i := range sc.Tokens {
		t := &sc.Tokens[i]
		if t.Scale == 0 {
			t.Scale = 1
		}
		if t.Width == 0 {
			t.Width = sc.Grid
		}
		if t.Height == 0 {
			t.Height = sc.Grid
		}
		if t.ID == "" {
			t.ID = fmt.Sprintf("token-%d", i)
		}
	}
	return sc, nil
}

// LoadFile reads a JSON scene file.
func LoadFile(path string) (Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return Scene{}, fmt.Errorf("open scene file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}
