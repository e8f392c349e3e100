// Package config provides the process-wide settings registry for xmind workbooks.
//
// A Registry is a flat mapping of colon-separated keys (for example
// "output:files:content") to string values. It is built once, from defaults,
// an optional JSON or HCL file and the environment, and is read-only afterwards.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ukaji3/xmind-go/pkg/xmind/errdefs"
)

// Well-known keys and prefixes.
const (
	KeyOutputBase     = "output:base"
	PrefixOutputFiles = "output:files"
	PrefixExports     = "output:exports"
	PrefixNamespaces  = "standardContentNamespaces"
	KeyCreatorName    = "metadata:creator:name"
	KeyCreatorVersion = "metadata:creator:version"

	// EnvConfigPath names the file loaded by Default.
	EnvConfigPath = "XMIND_CONFIG"
	// EnvPrefix is the prefix of environment overrides; "__" separates key segments.
	EnvPrefix = "XMIND_"
)

// Separator joins key segments.
const Separator = ":"

// Entry is a single key/value pair.
type Entry struct {
	Key   string
	Value string
}

// Registry is an immutable key/value settings store. It is safe for concurrent reads.
type Registry struct {
	values map[string]string
}

// Defaults returns the built-in settings.
func Defaults() map[string]string {
	return map[string]string{
		KeyOutputBase: "xmind-output",

		PrefixOutputFiles + ":content":     "content.xml",
		PrefixOutputFiles + ":manifest":    "META-INF/manifest.xml",
		PrefixOutputFiles + ":metadata":    "meta.xml",
		PrefixOutputFiles + ":attachments": "attachments/",
		PrefixExports + ":outline":         "outline.xlsx",

		PrefixNamespaces + ":xmap":  "urn:xmind:xmap:xmlns:content:2.0",
		PrefixNamespaces + ":xhtml": "http://www.w3.org/1999/xhtml",
		PrefixNamespaces + ":svg":   "http://www.w3.org/2000/svg",
		PrefixNamespaces + ":xlink": "http://www.w3.org/1999/xlink",
		PrefixNamespaces + ":fo":    "http://www.w3.org/1999/XSL/Format",

		KeyCreatorName:    "xmind-go",
		KeyCreatorVersion: "0.1.0",
	}
}

// New creates a Registry holding a copy of values.
func New(values map[string]string) *Registry {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &Registry{values: copied}
}

// NewDefault creates a Registry holding only the built-in settings.
func NewDefault() *Registry {
	return New(Defaults())
}

// Load builds a Registry from the defaults, overlaid by the file at path (if
// path is non-empty) and then by XMIND_ environment variables.
func Load(path string) (*Registry, error) {
	values := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}

		var fileValues map[string]string
		switch strings.ToLower(filepath.Ext(path)) {
		case ".json":
			fileValues, err = parseJSON(data)
		case ".hcl":
			fileValues, err = parseHCL(data, path)
		default:
			return nil, &errdefs.ConfigError{Key: path, Err: fmt.Errorf("unsupported config format %q", filepath.Ext(path))}
		}
		if err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		for k, v := range fileValues {
			values[k] = v
		}
	}

	for k, v := range fromEnvironment(os.Environ()) {
		values[k] = v
	}

	return New(values), nil
}

var (
	defaultRegistry *Registry
	defaultErr      error
	defaultOnce     sync.Once
)

// Default returns the process-wide Registry, loading it on first use from
// $XMIND_CONFIG (when set) and the environment. Later calls return the same value.
func Default() (*Registry, error) {
	defaultOnce.Do(func() {
		defaultRegistry, defaultErr = Load(os.Getenv(EnvConfigPath))
	})
	return defaultRegistry, defaultErr
}

// fromEnvironment maps XMIND_output__base=dir to "output:base".
func fromEnvironment(environ []string) map[string]string {
	result := make(map[string]string)
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) || name == EnvConfigPath {
			continue
		}
		key := strings.TrimPrefix(name, EnvPrefix)
		if key == "" {
			continue
		}
		result[strings.ReplaceAll(key, "__", Separator)] = value
	}
	return result
}

// Get returns the value for key and whether it was present.
func (r *Registry) Get(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

// String returns the value for key, or "" when it is missing.
func (r *Registry) String(key string) string {
	return r.values[key]
}

// Require returns the value for key, or a ConfigError when it is missing or empty.
func (r *Registry) Require(key string) (string, error) {
	v, ok := r.values[key]
	if !ok || strings.TrimSpace(v) == "" {
		return "", errdefs.NewMissingKeyError(key)
	}
	return v, nil
}

// Section returns the entries under prefix, with the prefix stripped from
// their keys, sorted by key.
func (r *Registry) Section(prefix string) []Entry {
	p := prefix + Separator
	var entries []Entry
	for k, v := range r.values {
		if strings.HasPrefix(k, p) {
			entries = append(entries, Entry{Key: strings.TrimPrefix(k, p), Value: v})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries
}

// OutputFiles returns the artifact label → relative path definitions that make up the archive.
func (r *Registry) OutputFiles() map[string]string {
	return r.sectionMap(PrefixOutputFiles)
}

// Exports returns the artifact label → relative path definitions written next to the archive.
func (r *Registry) Exports() map[string]string {
	return r.sectionMap(PrefixExports)
}

// Namespaces returns the prefix → URI map used when rendering content markup.
func (r *Registry) Namespaces() map[string]string {
	return r.sectionMap(PrefixNamespaces)
}

// Namespace returns the URI for a required content namespace prefix.
func (r *Registry) Namespace(prefix string) (string, error) {
	return r.Require(PrefixNamespaces + Separator + prefix)
}

func (r *Registry) sectionMap(prefix string) map[string]string {
	result := make(map[string]string)
	for _, e := range r.Section(prefix) {
		result[e.Key] = e.Value
	}
	return result
}
