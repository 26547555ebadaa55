package vocabulary

import (
	"context"

	"github.com/BurntSushi/toml"
	"github.com/go-faster/errors"
)

type seedFile struct {
	Codes []seedCode `toml:"codes"`
}

type seedCode struct {
	Vocabulary string `toml:"vocabulary"`
	Code       string `toml:"code"`
	Label      string `toml:"label"`
	Active     *bool  `toml:"active"`
	Position   int    `toml:"position"`
}

// FileProvider reads vocabularies from a TOML seed file. It backs the
// `vocab seed` command and keeps tests off the database.
type FileProvider struct {
	path string
}

func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

// Load parses the seed file into Code entities.
func (p *FileProvider) Load() ([]*Code, error) {
	var file seedFile
	if _, err := toml.DecodeFile(p.path, &file); err != nil {
		return nil, errors.Wrapf(err, "decode vocabulary seed %s", p.path)
	}
	codes := make([]*Code, 0, len(file.Codes))
	for i, sc := range file.Codes {
		if sc.Vocabulary == "" || sc.Code == "" {
			return nil, errors.Errorf("vocabulary seed %s: entry %d missing vocabulary or code", p.path, i)
		}
		active := true
		if sc.Active != nil {
			active = *sc.Active
		}
		position := sc.Position
		if position == 0 {
			position = i + 1
		}
		codes = append(codes, New(
			sc.Vocabulary,
			sc.Code,
			WithLabel(sc.Label),
			WithActive(active),
			WithPosition(position),
		))
	}
	return codes, nil
}

func (p *FileProvider) Sets(_ context.Context) (map[string]Set, error) {
	codes, err := p.Load()
	if err != nil {
		return nil, err
	}
	sets := make(map[string]Set)
	for _, c := range codes {
		set, ok := sets[c.Vocabulary()]
		if !ok {
			set = Set{}
			sets[c.Vocabulary()] = set
		}
		set[c.Code()] = c.Active()
	}
	return sets, nil
}
