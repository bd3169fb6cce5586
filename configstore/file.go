// Copyright (C) 2025-2026 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package configstore

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileStore serves a single project's configuration from a YAML file.
// Because the file is the whole project, it can answer fetches without an
// entity id.
type fileStore struct {
	entities map[string]struct{} // nil accepts any entity id
	configs  RawConfig
}

var _ Store = (*fileStore)(nil)

// fileDocument is the on-disk layout of a config file.
type fileDocument struct {
	Entities       []string  `yaml:"entities"`
	ServiceConfigs RawConfig `yaml:"service_configs"`
}

// NewFileStore loads a config store from a YAML file.
func NewFileStore(filename string) (Store, error) {
	contents, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read service configs from file %s: %w", filename, err)
	}

	return newFileStoreFromContents(filename, contents)
}

func newFileStoreFromContents(filename string, contents []byte) (Store, error) {
	var doc fileDocument
	if err := yaml.Unmarshal(contents, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal service configs from file %s: %w", filename, err)
	}

	s := &fileStore{
		configs: doc.ServiceConfigs,
	}
	if s.configs == nil {
		s.configs = RawConfig{}
	}

	// An entities list turns into an allowlist; without one any id resolves.
	if len(doc.Entities) > 0 {
		s.entities = make(map[string]struct{}, len(doc.Entities))
		for _, id := range doc.Entities {
			if id == GlobalKey {
				return nil, fmt.Errorf("entity id %q in file %s collides with the reserved global key", id, filename)
			}
			s.entities[id] = struct{}{}
		}
	}

	return s, nil
}

func (s *fileStore) FetchRawConfig(ctx context.Context, entityID string) (RawConfig, error) {
	if entityID != "" && s.entities != nil {
		if _, ok := s.entities[entityID]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, entityID)
		}
	}
	return s.configs, nil
}
