package cli

import (
	"fmt"

	"github.com/spf13/pflag"

	"duck-projection/internal/engine"
)

// sourceFlags are the flags that name a DuckDB source.
type sourceFlags struct {
	source   string
	format   string
	snapshot int64
}

func (f *sourceFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.source, "source", "", "Table name or file path/glob to read")
	fs.StringVar(&f.format, "format", "", "File format override (parquet, csv, json)")
	fs.Int64Var(&f.snapshot, "snapshot", -1, "Read a table at this snapshot version")
}

func (f *sourceFlags) resolve(fs *pflag.FlagSet) (engine.Source, error) {
	if f.source == "" {
		return engine.Source{}, fmt.Errorf("--source is required")
	}
	src := engine.ParseSource(f.source)
	if f.format != "" {
		src.Format = f.format
	}
	if fs.Changed("snapshot") {
		v := f.snapshot
		src.Snapshot = &v
	}
	if err := src.Validate(); err != nil {
		return engine.Source{}, err
	}
	return src, nil
}
