// Package messages holds the citizen-facing notification copy.
package messages

import (
	_ "embed"
	"fmt"
	"io/fs"
	"sync"

	"gopkg.in/yaml.v3"

	"janmitra/internal/logging"
)

//go:embed messages.yaml
var bundled []byte

type catalog struct {
	Notifications map[string]string `yaml:"NOTIFICATIONS"`
}

var (
	templates = make(map[string]string)
	mu        sync.RWMutex
	loadOnce  sync.Once
)

// Load merges the templates in name over the bundled ones. Keys the file
// does not mention keep their bundled text.
func Load(fsys fs.FS, name string) error {
	ensureLoaded()

	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return err
	}
	return merge(name, data)
}

func ensureLoaded() {
	loadOnce.Do(func() {
		if err := merge("messages.yaml", bundled); err != nil {
			logging.Error().Err(err).Msg("failed to load bundled notification messages")
		}
	})
}

func merge(name string, data []byte) error {
	var c catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}

	mu.Lock()
	for k, v := range c.Notifications {
		templates[k] = v
	}
	mu.Unlock()
	return nil
}

// Format renders the template for key with args. An unknown key renders as
// the key itself.
func Format(key string, args ...any) string {
	ensureLoaded()

	mu.RLock()
	tmpl, ok := templates[key]
	mu.RUnlock()

	if !ok {
		return key
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}
