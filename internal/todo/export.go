package todo

import (
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	yaml "gopkg.in/yaml.v3"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// Formats returns the supported export formats.
func Formats() []string {
	return []string{FormatJSON, FormatYAML, FormatTOML}
}

// tomlDocument wraps the list because TOML has no top-level arrays.
type tomlDocument struct {
	Tasks []Task `toml:"tasks"`
}

// Export writes the collection to w in the given format.
func Export(w io.Writer, c Collection, format string) error {
	if c == nil {
		c = Collection{}
	}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatJSON:
		data, err := Encode(c)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode([]Task(c)); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(tomlDocument{Tasks: c}); err != nil {
			return fmt.Errorf("encode toml: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %q, must be one of: %s", format, strings.Join(Formats(), ", "))
	}
}
