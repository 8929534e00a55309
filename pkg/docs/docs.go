// Copyright 2019-2025 The Liqo Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package docs generates the reference documentation of the recoveryctl commands.
package docs

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// Markdown is the markdown documentation type.
	Markdown = "markdown"
	// Man is the man page documentation type.
	Man = "man"
)

// Options encapsulates the arguments of the docs command.
type Options struct {
	Root            *cobra.Command
	Destination     string
	DocTypeString   string
	GenerateHeaders bool
}

// Run generates the documentation of the whole command tree in the destination directory.
func (o *Options) Run() error {
	switch o.DocTypeString {
	case Markdown:
		if o.GenerateHeaders {
			standardLinks := func(s string) string { return s }
			return doc.GenMarkdownTreeCustom(o.Root, o.Destination, header, standardLinks)
		}
		return doc.GenMarkdownTree(o.Root, o.Destination)
	case Man:
		manHdr := &doc.GenManHeader{Title: strings.ToUpper(o.Root.Name()), Section: "1"}
		return doc.GenManTree(o.Root, manHdr, o.Destination)
	default:
		return errors.Errorf("unknown doc type %q. Try %q or %q", o.DocTypeString, Markdown, Man)
	}
}

// header returns the front matter of a markdown page, titled after the command.
func header(filename string) string {
	base := filepath.Base(filename)
	name := strings.TrimSuffix(base, path.Ext(base))
	caser := cases.Title(language.AmericanEnglish)
	title := caser.String(strings.ReplaceAll(name, "_", " "))
	return fmt.Sprintf("---\ntitle: %q\n---\n\n", title)
}
