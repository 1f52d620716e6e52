package identity

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadAliasFile lee el YAML de alias sembrados: nombre canónico → lista de
// variantes conocidas. Un archivo ausente no es error (se arranca sin semilla).
func LoadAliasFile(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("identity.LoadAliasFile: read %q: %w", path, err)
	}

	var seed map[string][]string
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("identity.LoadAliasFile: parse %q: %w", path, err)
	}
	return seed, nil
}
