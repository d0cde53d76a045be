// ABOUTME: Static seed data for the in-memory entity stores
// ABOUTME: Embeds contacts, deals, and activities and supports JSON/YAML overrides from a directory
package mockdata

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"

	"gopkg.in/yaml.v3"

	"github.com/harperreed/crmdash/models"
)

//go:embed contacts.json deals.json activities.json
var embedded embed.FS

const (
	contactsFile   = "contacts"
	dealsFile      = "deals"
	activitiesFile = "activities"
)

var extensions = []string{".json", ".yaml", ".yml"}

// Seed is the initial content of every entity store.
type Seed struct {
	Contacts   []models.Contact
	Deals      []models.Deal
	Activities []models.Activity
}

// Default returns the embedded seed data.
func Default() (Seed, error) {
	return LoadFS(nil)
}

// MustDefault is Default for callers that cannot recover from a broken build.
func MustDefault() Seed {
	seed, err := Default()
	if err != nil {
		panic(fmt.Errorf("embedded seed data is invalid: %w", err))
	}
	return seed
}

// Load reads seed files from dir, falling back to the embedded copy for any
// entity without a file there. An empty dir means embedded data only.
func Load(dir string) (Seed, error) {
	if dir == "" {
		return Default()
	}
	info, err := os.Stat(dir)
	if err != nil {
		return Seed{}, fmt.Errorf("failed to open seed directory: %w", err)
	}
	if !info.IsDir() {
		return Seed{}, fmt.Errorf("seed path %s is not a directory", dir)
	}
	return LoadFS(os.DirFS(dir))
}

// LoadFS reads seed files from override, which may be nil.
func LoadFS(override fs.FS) (Seed, error) {
	var seed Seed
	if err := decodeEntity(override, contactsFile, &seed.Contacts); err != nil {
		return Seed{}, err
	}
	if err := decodeEntity(override, dealsFile, &seed.Deals); err != nil {
		return Seed{}, err
	}
	if err := decodeEntity(override, activitiesFile, &seed.Activities); err != nil {
		return Seed{}, err
	}
	return seed, nil
}

func decodeEntity(override fs.FS, name string, out interface{}) error {
	if override != nil {
		for _, ext := range extensions {
			data, err := fs.ReadFile(override, name+ext)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to read %s%s: %w", name, ext, err)
			}
			return decode(name+ext, data, out)
		}
	}

	data, err := embedded.ReadFile(name + ".json")
	if err != nil {
		return fmt.Errorf("failed to read embedded %s: %w", name, err)
	}
	return decode(name+".json", data, out)
}

func decode(file string, data []byte, out interface{}) error {
	var err error
	switch path.Ext(file) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, out)
	default:
		err = json.Unmarshal(data, out)
	}
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", file, err)
	}
	return nil
}
