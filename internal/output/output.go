package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/agisilaos/annofab-cli/internal/config"
)

type Format string

const (
	FormatCSV              Format = "csv"
	FormatJSON             Format = "json"
	FormatPrettyJSON       Format = "pretty_json"
	FormatTaskIDList       Format = "task_id_list"
	FormatInputDataIDList  Format = "input_data_id_list"
	FormatInspectionIDList Format = "inspection_id_list"
)

// ParseFormat accepts value only if it is one of allowed.
func ParseFormat(value string, allowed ...Format) (Format, error) {
	f := Format(strings.TrimSpace(value))
	for _, a := range allowed {
		if f == a {
			return f, nil
		}
	}
	names := make([]string, 0, len(allowed))
	for _, a := range allowed {
		names = append(names, string(a))
	}
	return "", fmt.Errorf("unsupported format %q (expected one of: %s)", value, strings.Join(names, ", "))
}

func (f Format) IsIDList() bool {
	return strings.HasSuffix(string(f), "_id_list")
}

// Open returns the writer for --output. An empty path writes to stdout; the
// returned close func must be called in both cases.
func Open(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" {
		return stdout, func() error { return nil }, nil
	}
	if err := config.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func WriteJSON(out io.Writer, data any, pretty bool) error {
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(data)
}

func WriteIDList(out io.Writer, ids []string) error {
	for _, id := range ids {
		if _, err := fmt.Fprintln(out, id); err != nil {
			return err
		}
	}
	return nil
}
