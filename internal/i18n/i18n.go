// Package i18n looks up translation strings by dot-separated key.
package i18n

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

//go:embed translations/*.json
var translationsFS embed.FS

// Catalog holds the translation strings of one locale. Unknown keys
// translate to themselves.
type Catalog struct {
	locale  string
	strings map[string]any
}

// Load returns the catalog for locale. Strings in dir (a directory of
// <locale>.json files, may be empty) override the embedded ones.
// A locale with no strings anywhere yields an empty catalog and an error,
// the catalog is still usable.
func Load(locale, dir string) (*Catalog, error) {
	c := &Catalog{locale: locale, strings: map[string]any{}}
	var errs []error

	raw, err := translationsFS.ReadFile("translations/" + locale + ".json")
	if err == nil {
		if err := c.merge(raw); err != nil {
			errs = append(errs, fmt.Errorf("embedded %s: %w", locale, err))
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		errs = append(errs, err)
	}

	if dir != "" {
		path := filepath.Join(dir, locale+".json")
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := c.merge(raw); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", path, err))
			}
		case !errors.Is(err, fs.ErrNotExist):
			errs = append(errs, err)
		}
	}

	if len(c.strings) == 0 {
		errs = append(errs, fmt.Errorf("no translation strings for locale %q", locale))
	}
	return c, errors.Join(errs...)
}

// Locale returns the catalog locale.
func (c *Catalog) Locale() string {
	return c.locale
}

// Translate returns the string at the dot-separated key, or key itself when
// the path does not resolve to a string.
func (c *Catalog) Translate(key string) string {
	var lookup any = c.strings
	for _, part := range strings.Split(key, ".") {
		m, ok := lookup.(map[string]any)
		if !ok {
			return key
		}
		lookup, ok = m[part]
		if !ok {
			return key
		}
	}
	s, ok := lookup.(string)
	if !ok {
		return key
	}
	return s
}

func (c *Catalog) merge(raw []byte) error {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return err
	}
	deepMerge(c.strings, m)
	return nil
}

func deepMerge(dst, src map[string]any) {
	for k, v := range src {
		srcMap, srcIsMap := v.(map[string]any)
		dstMap, dstIsMap := dst[k].(map[string]any)
		if srcIsMap && dstIsMap {
			deepMerge(dstMap, srcMap)
			continue
		}
		dst[k] = v
	}
}
