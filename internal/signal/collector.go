package signal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// markerKind distinguishes the probe types in the marker registry.
type markerKind int

const (
	// markerFile is satisfied when a file exists at the relative path.
	markerFile markerKind = iota

	// markerDir is satisfied when a directory exists at the relative path.
	markerDir

	// markerManifest is satisfied when a manifest file exists and
	// contains the needle as a substring.
	markerManifest
)

// markerCheck is one entry of the fixed marker registry. Each check is
// independent: absence of the path is a negative signal, not an error.
type markerCheck struct {
	name   string
	kind   markerKind
	path   string // relative to the project root
	needle string // markerManifest only
}

// defaultRegistry is the fixed set of project probes. Probes follow the
// "has-*" naming scheme used throughout the catalog trigger definitions.
var defaultRegistry = []markerCheck{
	{name: "has-go-mod", kind: markerFile, path: "go.mod"},
	{name: "has-cargo-toml", kind: markerFile, path: "Cargo.toml"},
	{name: "has-package-json", kind: markerFile, path: "package.json"},
	{name: "has-pyproject", kind: markerFile, path: "pyproject.toml"},
	{name: "has-requirements-txt", kind: markerFile, path: "requirements.txt"},
	{name: "has-pom-xml", kind: markerFile, path: "pom.xml"},
	{name: "has-gemfile", kind: markerFile, path: "Gemfile"},
	{name: "has-dockerfile", kind: markerFile, path: "Dockerfile"},
	{name: "has-docker-compose", kind: markerFile, path: "docker-compose.yml"},
	{name: "has-makefile", kind: markerFile, path: "Makefile"},
	{name: "has-terraform", kind: markerFile, path: "main.tf"},

	{name: "has-git", kind: markerDir, path: ".git"},
	{name: "has-github-workflows", kind: markerDir, path: ".github/workflows"},
	{name: "has-kubernetes-manifests", kind: markerDir, path: "k8s"},
	{name: "has-node-modules", kind: markerDir, path: "node_modules"},

	{name: "has-react", kind: markerManifest, path: "package.json", needle: `"react"`},
	{name: "has-vue", kind: markerManifest, path: "package.json", needle: `"vue"`},
	{name: "has-nextjs", kind: markerManifest, path: "package.json", needle: `"next"`},
	{name: "has-express", kind: markerManifest, path: "package.json", needle: `"express"`},
	{name: "has-typescript", kind: markerManifest, path: "package.json", needle: `"typescript"`},
	{name: "has-jest", kind: markerManifest, path: "package.json", needle: `"jest"`},
	{name: "has-cobra", kind: markerManifest, path: "go.mod", needle: "github.com/spf13/cobra"},
	{name: "has-gin", kind: markerManifest, path: "go.mod", needle: "github.com/gin-gonic/gin"},
	{name: "has-grpc", kind: markerManifest, path: "go.mod", needle: "google.golang.org/grpc"},
	{name: "has-django", kind: markerManifest, path: "requirements.txt", needle: "django"},
	{name: "has-flask", kind: markerManifest, path: "requirements.txt", needle: "flask"},
}

// Collector inspects a project directory and task text, producing the
// Signals for one resolution call. Filesystem access is read-only.
type Collector struct {
	registry []markerCheck
	log      *zap.Logger
}

// NewCollector creates a collector with the default marker registry.
// A nil logger disables logging.
func NewCollector(log *zap.Logger) *Collector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Collector{registry: defaultRegistry, log: log}
}

// Collect probes the project root, tokenizes the task text, and records
// the explicit mode. A probe that errors (e.g. permission denied) is
// absorbed as a negative signal with a warning; only a missing or
// unreadable projectRoot fails the call.
func (c *Collector) Collect(projectRoot, taskText, explicitMode string) (*Signals, error) {
	info, err := os.Stat(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("project root %s: %w", projectRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root %s is not a directory", projectRoot)
	}

	sig := &Signals{
		Markers:  make(map[string]bool, len(c.registry)),
		Keywords: Tokenize(taskText),
		Mode:     explicitMode,
	}

	for _, check := range c.registry {
		present, err := c.probe(projectRoot, check)
		if err != nil {
			c.log.Warn("marker check failed, recording negative signal",
				zap.String("marker", check.name),
				zap.Error(err))
			present = false
		}
		sig.Markers[check.name] = present
	}

	c.log.Debug("signals collected",
		zap.String("project_root", projectRoot),
		zap.Strings("markers", sig.ActiveMarkers()),
		zap.Int("keywords", len(sig.Keywords)),
		zap.String("mode", sig.Mode))

	return sig, nil
}

// probe evaluates one marker check. A missing path is (false, nil);
// only unexpected errors are returned.
func (c *Collector) probe(root string, check markerCheck) (bool, error) {
	path := filepath.Join(root, check.path)

	switch check.kind {
	case markerFile, markerDir:
		info, err := os.Stat(path)
		if os.IsNotExist(err) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if check.kind == markerDir {
			return info.IsDir(), nil
		}
		return !info.IsDir(), nil

	case markerManifest:
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return strings.Contains(strings.ToLower(string(data)), strings.ToLower(check.needle)), nil

	default:
		return false, fmt.Errorf("unknown marker kind %d", check.kind)
	}
}

// Tokenize splits task text into lowercase, punctuation-stripped,
// deduplicated keywords.
func Tokenize(text string) map[string]bool {
	tokens := make(map[string]bool)

	word := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !isTokenRune(r)
	})
	for _, t := range word {
		if t != "" {
			tokens[t] = true
		}
	}

	return tokens
}

func isTokenRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '-' || r == '_':
		// Keep hyphenated tech terms ("docker-compose") intact.
		return true
	}
	return false
}
