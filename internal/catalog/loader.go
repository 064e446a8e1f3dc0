package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// Loader reads directive unit definitions from a directory of YAML files.
// Each file may hold a single unit or a list of units. The loader parses
// files concurrently but merges results in path order so the resulting
// catalog is deterministic.
type Loader struct {
	log *zap.Logger
}

// NewLoader creates a loader. A nil logger disables logging.
func NewLoader(log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{log: log}
}

// Load walks dir, parses every .yaml/.yml file, validates the combined
// unit set, and returns an immutable Catalog. Any validation error is
// fatal for the whole load and the full error list is returned as a
// *ValidationErrors.
func (l *Loader) Load(dir string) (*Catalog, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("catalog directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("catalog path %s is not a directory", dir)
	}

	paths, err := collectYAMLPaths(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to walk catalog directory %s: %w", dir, err)
	}

	l.log.Debug("loading catalog",
		zap.String("dir", dir),
		zap.Int("files", len(paths)))

	// Parse files concurrently; results land in per-file slots so the
	// merged order is the sorted path order regardless of scheduling.
	perFile := make([][]*Unit, len(paths))
	var mu sync.Mutex
	var parseErrs []error

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		g.Go(func() error {
			units, err := parseFile(path)
			if err != nil {
				mu.Lock()
				parseErrs = append(parseErrs, err)
				mu.Unlock()
				return nil // collect every file's errors, do not stop
			}
			perFile[i] = units
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var units []*Unit
	for _, fileUnits := range perFile {
		units = append(units, fileUnits...)
	}

	errs := parseErrs
	errs = append(errs, Validate(units)...)
	if len(errs) > 0 {
		return nil, &ValidationErrors{Errors: errs}
	}

	cat := New(units)
	l.log.Info("catalog loaded",
		zap.String("dir", dir),
		zap.Int("units", cat.Len()))
	return cat, nil
}

// collectYAMLPaths returns all YAML file paths under dir, sorted.
func collectYAMLPaths(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// yamlUnitDefinition mirrors the on-disk YAML shape of a unit.
type yamlUnitDefinition struct {
	ID          string `yaml:"id"`
	Kind        string `yaml:"kind"`
	Description string `yaml:"description,omitempty"`

	Triggers []Trigger `yaml:"triggers,omitempty"`
	Tier     *int      `yaml:"tier,omitempty"`

	DependsOn []string `yaml:"depends_on,omitempty"`
	Enhances  []string `yaml:"enhances,omitempty"`

	Status     string `yaml:"status,omitempty"`
	ReplacedBy string `yaml:"replaced_by,omitempty"`

	Concern       string `yaml:"concern,omitempty"`
	Authoritative bool   `yaml:"authoritative,omitempty"`
}

// parseFile parses one YAML file into units. It accepts either a list
// of unit definitions or a single definition.
func parseFile(path string) ([]*Unit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var raws []yamlUnitDefinition
	if err := yaml.Unmarshal(data, &raws); err != nil {
		var single yamlUnitDefinition
		if singleErr := yaml.Unmarshal(data, &single); singleErr != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		raws = []yamlUnitDefinition{single}
	}

	units := make([]*Unit, 0, len(raws))
	for _, raw := range raws {
		units = append(units, convertDefinition(raw, path))
	}
	return units, nil
}

// convertDefinition maps a raw YAML definition onto a Unit, applying
// defaults. Consistency checks are deferred to Validate so a single
// load surfaces every problem at once.
func convertDefinition(raw yamlUnitDefinition, source string) *Unit {
	status := Status(strings.ToLower(strings.TrimSpace(raw.Status)))
	if status == "" {
		status = StatusActive
	}

	tier := TierAdvisory
	if raw.Tier != nil {
		tier = Tier(*raw.Tier)
	}

	return &Unit{
		ID:            raw.ID,
		Kind:          Kind(strings.ToLower(strings.TrimSpace(raw.Kind))),
		Description:   raw.Description,
		Triggers:      raw.Triggers,
		Tier:          tier,
		DependsOn:     raw.DependsOn,
		Enhances:      raw.Enhances,
		Status:        status,
		ReplacedBy:    raw.ReplacedBy,
		Concern:       raw.Concern,
		Authoritative: raw.Authoritative,
		Source:        source,
	}
}
