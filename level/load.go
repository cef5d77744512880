package level

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// Format is an info file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// infoNames are the info file names looked up in a package directory, in order.
var infoNames = []string{"info.yaml", "info.yml", "info.json", "info.toml"}

// FormatOf derives the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
}

// Parse decodes and validates a package description.
func Parse(data []byte, format Format) (*Package, error) {
	pkg := &Package{}
	switch format {
	case FormatYAML, FormatJSON:
		// json is read by the yaml decoder; unknown keys are rejected in both
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(pkg); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", format, err)
		}
	case FormatTOML:
		md, err := toml.Decode(string(data), pkg)
		if err != nil {
			return nil, fmt.Errorf("decoding toml: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("decoding toml: unknown keys %v", undecoded)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err := Validate(pkg); err != nil {
		return nil, err
	}
	return pkg, nil
}

// LoadFile reads a package description from path.
func LoadFile(path string) (*Package, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading package: %w", err)
	}
	pkg, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("package %s: %w", path, err)
	}
	pkg.Dir = filepath.Dir(path)
	if pkg.Name == "" {
		pkg.Name = filepath.Base(pkg.Dir)
	}
	return pkg, nil
}

// LoadDir reads the package stored in dir.
func LoadDir(dir string) (*Package, error) {
	for _, name := range infoNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("probing %s: %w", path, err)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoInfo, dir)
}

// LoadPackages reads every package below root concurrently. Packages are
// returned sorted by name, then directory; the first failure cancels the rest.
func LoadPackages(ctx context.Context, root string) ([]*Package, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("listing packages: %w", err)
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, filepath.Join(root, e.Name()))
		}
	}

	pkgs := make([]*Package, len(dirs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, dir := range dirs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			pkg, err := LoadDir(dir)
			if err != nil {
				return err
			}
			pkgs[i] = pkg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.SliceStable(pkgs, func(i, j int) bool { return pkgs[i].Name < pkgs[j].Name })
	return pkgs, nil
}
