package cli

import (
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/wwweather/internal/csvio"
	"github.com/JonMunkholm/wwweather/internal/storage"
)

// csvFlags are the dialect flags shared by commands that read or write CSV.
type csvFlags struct {
	delimiter string
	layout    string
	encoding  string
}

func (f *csvFlags) register(cmd *cobra.Command, encoding string) {
	cmd.Flags().StringVar(&f.delimiter, "delimiter", "", `field delimiter (default from CSV_DELIMITER, ",")`)
	cmd.Flags().StringVar(&f.layout, "datetime-format", "", "Go time layout of last_updated (default from CSV_DATETIME_LAYOUT)")
	cmd.Flags().StringVar(&f.encoding, "encoding", encoding, "file charset, e.g. utf-8 or windows-1251")
}

// options merges the flags over the configured dialect.
func (a *App) csvOptions(f csvFlags) (csvio.Options, error) {
	opts := csvio.DefaultOptions()
	opts.Delimiter = a.cfg.CSV.DelimiterRune()
	opts.DateTimeLayout = a.cfg.CSV.DateTimeLayout
	opts.Encoding = f.encoding

	if f.delimiter != "" {
		d := f.delimiter
		if d == `\t` {
			d = "\t"
		}
		if utf8.RuneCountInString(d) != 1 {
			return opts, fmt.Errorf("%w: delimiter must be a single character (got %q)", storage.ErrValidation, f.delimiter)
		}
		opts.Delimiter, _ = utf8.DecodeRuneInString(d)
	}
	if f.layout != "" {
		opts.DateTimeLayout = f.layout
	}
	return opts, nil
}

// createOutput opens path for writing, truncating it unless appending.
func createOutput(path string, appendTo bool) (*os.File, error) {
	flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if appendTo {
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open output file: %w", err)
	}
	return f, nil
}

// needsHeader reports whether a file written in append mode still lacks a
// header row.
func needsHeader(f *os.File, appendTo bool) bool {
	if !appendTo {
		return true
	}
	info, err := f.Stat()
	return err != nil || info.Size() == 0
}
