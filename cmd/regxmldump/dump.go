// Copyright 2026 The regxmlgo Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"fmt"
	"os"

	mmap "github.com/edsrzf/mmap-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sandflow/regxmlgo/regxml"
)

type zapEventHandler struct {
	logger *zap.Logger
}

func (h zapEventHandler) HandleEvent(e regxml.Event) {
	fields := []zap.Field{zap.String("code", e.Code), zap.String("where", e.Where)}
	switch e.Severity {
	case regxml.SeverityInfo:
		h.logger.Debug(e.Reason, fields...)
	case regxml.SeverityWarn:
		h.logger.Warn(e.Reason, fields...)
	default:
		h.logger.Error(e.Reason, fields...)
	}
}

func newFragmentCmd(verbose *bool) *cobra.Command {
	var (
		dictPaths []string
		configPath string
		rootClass  string
		outPath    string
	)

	cmd := &cobra.Command{
		Use:   "fragment <mxf-file>",
		Short: "Assemble a RegXML fragment from an MXF file's header metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(*verbose)
			defer logger.Sync()

			paths := dictPaths
			if configPath != "" {
				cfg, err := loadDictConfig(configPath)
				if err != nil {
					return err
				}
				paths = append(paths, cfg.Dictionaries...)
			}
			if len(paths) == 0 {
				return fmt.Errorf("at least one --dict or a --config listing dictionaries is required")
			}

			resolver, err := loadDictionaries(paths)
			if err != nil {
				return fmt.Errorf("loading dictionaries: %w", err)
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			data, err := mmap.Map(f, mmap.RDONLY, 0)
			if err != nil {
				return fmt.Errorf("mapping %s: %w", args[0], err)
			}
			defer data.Unmap()

			opts := regxml.AssembleOptions{
				Names:   regxml.ResolverNames{Resolver: resolver},
				Handler: zapEventHandler{logger: logger},
			}
			if rootClass != "" {
				id, err := resolveRootClassFlag(rootClass, resolver)
				if err != nil {
					return err
				}
				opts.RootClass = id
				opts.HasRootClass = true
			}

			doc, err := regxml.AssembleFromBytes([]byte(data), resolver, opts)
			if err != nil {
				return fmt.Errorf("assembling fragment: %w", err)
			}
			doc.Indent(2)

			var buf bytes.Buffer
			if _, err := doc.WriteTo(&buf); err != nil {
				return fmt.Errorf("serializing fragment: %w", err)
			}

			if outPath == "" || outPath == "-" {
				_, err = os.Stdout.Write(buf.Bytes())
				return err
			}
			return os.WriteFile(outPath, buf.Bytes(), 0644)
		},
	}

	cmd.Flags().StringArrayVar(&dictPaths, "dict", nil, "MetaDictionary XML file (repeatable, earlier wins ties)")
	cmd.Flags().StringVar(&configPath, "config", "", "YAML file listing dictionaries to load")
	cmd.Flags().StringVar(&rootClass, "root", "", "root class symbol, or AUID in URN/UL text form; defaults to the Preface class")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	return cmd
}
