// Copyright 2026 The regxmlgo Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/sandflow/regxmlgo/dict"
	"github.com/sandflow/regxmlgo/klv"
)

// dictConfig is the shape of the optional --config YAML file: an ordered
// list of MetaDictionary XML files, loaded in the order given (earlier
// entries win ties in Collection lookup, per spec §4.G).
type dictConfig struct {
	Dictionaries []string `yaml:"dictionaries"`
}

func loadDictConfig(path string) (*dictConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dict config %s: %w", path, err)
	}
	var cfg dictConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing dict config %s: %w", path, err)
	}
	return &cfg, nil
}

// loadDictionaries parses every path in order into a Collection, collecting
// every failure (rather than stopping at the first) so a caller can report
// all bad dictionaries at once.
func loadDictionaries(paths []string) (*dict.Collection, error) {
	collection := dict.NewCollection()
	var errs error
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", p, err))
			continue
		}
		md, err := dict.Load(data)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", p, err))
			continue
		}
		collection.Add(md)
	}
	if errs != nil {
		return nil, errs
	}
	return collection, nil
}

// resolveRootClassFlag accepts the --root flag either as a class symbol
// (resolved against the loaded dictionaries) or as an AUID in URN/UL text
// form, per SPEC_FULL.md's CLI surface.
func resolveRootClassFlag(s string, resolver *dict.Collection) (klv.AUID, error) {
	s = strings.TrimSpace(s)
	if def, ok := resolver.BySymbol(s); ok {
		if def.Kind != dict.KindClass {
			return klv.AUID{}, fmt.Errorf("--root %q does not name a class definition", s)
		}
		return def.Identification, nil
	}
	return parseAUIDFlag(s)
}

// parseAUIDFlag parses the --root flag's AUID URN/UL text form, the same
// two shapes dict.Load accepts in MetaDictionary XML.
func parseAUIDFlag(s string) (klv.AUID, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "urn:uuid:") {
		u, err := klv.ParseUUID(s)
		if err != nil {
			return klv.AUID{}, err
		}
		return klv.AUIDFromUUID(u), nil
	}
	ul, err := klv.ParseUL(s)
	if err != nil {
		return klv.AUID{}, fmt.Errorf("malformed root class %q: %w", s, err)
	}
	return klv.AUIDFromUL(ul), nil
}
