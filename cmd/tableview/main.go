// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command tableview filters, sorts and exports a table from the command
// line, sharing saved view preferences with the desktop console.
//
//	tableview -in students.csv -sort year:desc,name:asc -filter faculty=sci -format xlsx
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"campusadmin/config"
	"campusadmin/datatable"
	"campusadmin/export"
	"campusadmin/internal/logging"
	"campusadmin/prefs"
	"campusadmin/script"
	"campusadmin/source"
	"campusadmin/view"
)

// filterFlags collects repeated -filter key=pattern arguments.
type filterFlags []string

func (f *filterFlags) String() string { return strings.Join(*f, ",") }

func (f *filterFlags) Set(s string) error {
	if !strings.Contains(s, "=") {
		return fmt.Errorf("filter %q is not key=pattern", s)
	}
	*f = append(*f, s)
	return nil
}

type options struct {
	configDir string
	in        string
	delta     string
	schema    string
	table     string
	sort      string
	filters   filterFlags
	sel       string
	format    string
	out       string
	reset     bool
	verbose   bool
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "tableview: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	var o options
	fs := flag.NewFlagSet("tableview", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.configDir, "config", ".", "Directory holding config.toml and config/.env.<env>")
	fs.StringVar(&o.in, "in", "", "Input file (csv, parquet or json)")
	fs.StringVar(&o.delta, "delta", "", "Delta Sharing table as share.schema.table (uses the configured profile)")
	fs.StringVar(&o.schema, "schema", "", "TOML table definition")
	fs.StringVar(&o.table, "table", "", "Table identity for saved preferences (default: input name)")
	fs.StringVar(&o.sort, "sort", "", "Sort directive, e.g. year:desc,name:asc")
	fs.Var(&o.filters, "filter", "Column filter key=pattern (repeatable)")
	fs.StringVar(&o.sel, "select", "", "Export only these view positions, e.g. 0,2")
	fs.StringVar(&o.format, "format", "", "Export format: csv, xlsx, parquet or json (default from config)")
	fs.StringVar(&o.out, "out", "", "Output file, - for stdout (default: <exportDir>/export.<ext>)")
	fs.BoolVar(&o.reset, "reset", false, "Forget saved preferences for the table")
	fs.BoolVar(&o.verbose, "verbose", false, "Enable verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if (o.in == "") == (o.delta == "") {
		return fmt.Errorf("exactly one of -in or -delta is required")
	}

	cfg, err := config.Load(o.configDir)
	if err != nil {
		return err
	}
	level := cfg.LogLevel
	if o.verbose {
		level = "debug"
	}
	logger := logging.New(level, stderr)

	dataset, err := load(cfg, o)
	if err != nil {
		return err
	}

	var model *datatable.ColumnModel
	if o.schema != "" {
		schema, err := datatable.LoadSchema(o.schema)
		if err != nil {
			return err
		}
		if o.table == "" {
			o.table = schema.Table
		}
		model, err = dataset.ApplySchema(schema, script.Compiler)
		if err != nil {
			return err
		}
	} else if model, err = dataset.Model(); err != nil {
		return err
	}
	if o.table == "" {
		o.table = dataset.Name()
	}

	kv, err := cfg.PreferenceKV()
	if err != nil {
		return err
	}
	tbl := view.New(model, view.Options{
		TableID: o.table,
		Store:   prefs.NewStore(kv, logger),
		Logger:  logger,
	})
	if o.reset {
		tbl.ResetPreferences()
	}
	tbl.SetRows(dataset.Rows())

	if o.sort != "" {
		directive, err := parseDirective(o.sort)
		if err != nil {
			return err
		}
		if err := tbl.SetDirective(directive); err != nil {
			return err
		}
	}
	for _, f := range o.filters {
		key, pattern, _ := strings.Cut(f, "=")
		if err := tbl.SetFilter(key, pattern); err != nil {
			return err
		}
	}

	format := cfg.ExportFormat
	if o.format != "" {
		if format, err = export.ParseFormat(o.format); err != nil {
			return err
		}
	} else if o.out != "" && o.out != "-" {
		if f, err := export.FormatForPath(o.out); err == nil {
			format = f
		}
	}

	filename := ""
	if o.out != "" && o.out != "-" {
		filename = filepath.Base(o.out)
	}
	exportRows := tbl.Export
	if o.sel != "" {
		positions, err := parsePositions(o.sel)
		if err != nil {
			return err
		}
		for _, p := range positions {
			if err := tbl.SelectRow(p, true); err != nil {
				return err
			}
		}
		exportRows = tbl.ExportSelection
	}
	artifact, err := exportRows(format, filename)
	if err != nil {
		return err
	}

	fmt.Fprintln(stderr, tbl.Status())
	return write(stdout, cfg.ExportDir, o.out, artifact)
}

func load(cfg *config.Config, o options) (*source.Dataset, error) {
	if o.in != "" {
		return source.LoadFile(o.in)
	}
	if cfg.DeltaSharingProfile == "" {
		return nil, fmt.Errorf("-delta needs deltaSharing.profile in the configuration")
	}
	profile, err := os.ReadFile(cfg.DeltaSharingProfile)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	return source.LoadDeltaSharing(context.Background(), string(profile), o.delta, "", cfg.DeltaSharingTimeout)
}

func write(stdout io.Writer, exportDir, out string, a export.Artifact) error {
	if out == "-" {
		_, err := stdout.Write(a.Data)
		return err
	}
	path := out
	if path == "" {
		path = filepath.Join(exportDir, a.Filename)
	}
	if err := os.WriteFile(path, a.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(stdout, "wrote %s (%s, %d bytes)\n", path, a.MIMEType, len(a.Data))
	return nil
}

// parseDirective reads "key:dir,key:dir". A key without a direction sorts
// ascending.
func parseDirective(s string) (datatable.Directive, error) {
	var d datatable.Directive
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, dir, found := strings.Cut(part, ":")
		direction := datatable.SortAscending
		if found {
			var err error
			if direction, err = datatable.ParseSortDirection(dir); err != nil {
				return nil, err
			}
		}
		if direction == datatable.SortNone {
			continue
		}
		d = append(d, datatable.SortKey{Key: key, Direction: direction})
	}
	return d, d.Validate()
}

func parsePositions(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", datatable.ErrInvalidRow, part)
		}
		out = append(out, n)
	}
	return out, nil
}
