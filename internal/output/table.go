package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"
)

const utf8BOM = "\ufeff"

// CSVFormat mirrors the --csv_format option. The zero value is not usable;
// start from DefaultCSVFormat.
type CSVFormat struct {
	Sep rune
	BOM bool
}

var DefaultCSVFormat = CSVFormat{Sep: ',', BOM: true}

// ParseCSVFormat reads the keys "sep" and "encoding" from a decoded
// --csv_format object. Unknown keys are ignored.
func ParseCSVFormat(raw map[string]any) (CSVFormat, error) {
	f := DefaultCSVFormat
	if raw == nil {
		return f, nil
	}
	if v, ok := raw["sep"]; ok {
		s, isString := v.(string)
		if !isString || utf8.RuneCountInString(s) != 1 {
			return f, fmt.Errorf("csv_format.sep must be a single character, got %v", v)
		}
		r, _ := utf8.DecodeRuneInString(s)
		f.Sep = r
	}
	if v, ok := raw["encoding"]; ok {
		switch v {
		case "utf_8_sig", "utf-8-sig":
			f.BOM = true
		case "utf_8", "utf-8", "utf8":
			f.BOM = false
		default:
			return f, fmt.Errorf("unsupported csv_format.encoding %v", v)
		}
	}
	return f, nil
}

// Table is a header plus stringified rows, ready for CSV.
type Table struct {
	Columns []string
	Rows    [][]string
}

// BuildTable flattens records into dotted columns. baseColumns come first in
// the given order, any other key found in the records follows sorted. With no
// records the table is just the base header.
func BuildTable[R any](records []R, baseColumns []string) (Table, error) {
	flat := make([]map[string]string, 0, len(records))
	known := map[string]struct{}{}
	for _, c := range baseColumns {
		known[c] = struct{}{}
	}
	var extra []string
	for _, r := range records {
		m, err := Flatten(r)
		if err != nil {
			return Table{}, err
		}
		for k := range m {
			if _, ok := known[k]; !ok {
				known[k] = struct{}{}
				extra = append(extra, k)
			}
		}
		flat = append(flat, m)
	}
	sort.Strings(extra)
	cols := append(append([]string{}, baseColumns...), extra...)
	t := Table{Columns: cols, Rows: make([][]string, 0, len(flat))}
	for _, m := range flat {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = m[c]
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Flatten turns v into a map of dotted keys to cell text, the way its JSON
// encoding nests. Null values and empty objects produce no key. Numbers held
// in float fields of v keep a decimal point, so 50.0 stays "50.0".
func Flatten(v any) (map[string]string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, err
	}
	f := flattener{out: map[string]string{}, floats: floatFields(reflect.TypeOf(v))}
	if err := f.walk("", tree); err != nil {
		return nil, err
	}
	return f.out, nil
}

type flattener struct {
	out    map[string]string
	floats map[string]bool
}

func (f flattener) walk(prefix string, v any) error {
	switch t := v.(type) {
	case nil:
		return nil
	case map[string]any:
		if prefix == "" || len(t) > 0 {
			for k, child := range t {
				if err := f.walk(joinKey(prefix, k), child); err != nil {
					return err
				}
			}
		}
		return nil
	case string:
		f.out[prefix] = t
	case bool:
		f.out[prefix] = strconv.FormatBool(t)
	case json.Number:
		f.out[prefix] = formatNumber(t, f.isFloat(prefix))
	case []any:
		b, err := json.Marshal(t)
		if err != nil {
			return err
		}
		f.out[prefix] = string(b)
	default:
		return fmt.Errorf("flatten %s: unexpected %T", prefix, v)
	}
	return nil
}

func (f flattener) isFloat(key string) bool {
	if f.floats[key] {
		return true
	}
	if i := strings.LastIndexByte(key, '.'); i >= 0 {
		return f.floats[key[:i]+".*"]
	}
	return false
}

func joinKey(prefix, k string) string {
	if prefix == "" {
		return k
	}
	return prefix + "." + k
}

func formatNumber(n json.Number, float bool) string {
	if !float {
		if i, err := n.Int64(); err == nil {
			return strconv.FormatInt(i, 10)
		}
	}
	v, err := n.Float64()
	if err != nil {
		return n.String()
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if float && !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

var (
	floatFieldCache sync.Map // reflect.Type -> map[string]bool
	marshalerType   = reflect.TypeFor[json.Marshaler]()
)

// floatFields lists the dotted keys of t whose Go type is a float. Values of
// a string-keyed map are recorded as "prefix.*".
func floatFields(t reflect.Type) map[string]bool {
	if t == nil {
		return nil
	}
	if cached, ok := floatFieldCache.Load(t); ok {
		return cached.(map[string]bool)
	}
	out := map[string]bool{}
	collectFloatFields(out, "", t, 0)
	floatFieldCache.Store(t, out)
	return out
}

func collectFloatFields(out map[string]bool, prefix string, t reflect.Type, depth int) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if depth > 8 || t.Implements(marshalerType) || reflect.PointerTo(t).Implements(marshalerType) {
		return
	}
	switch t.Kind() {
	case reflect.Float32, reflect.Float64:
		out[prefix] = true
	case reflect.Map:
		if t.Key().Kind() == reflect.String {
			collectFloatFields(out, joinKey(prefix, "*"), t.Elem(), depth+1)
		}
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() && !field.Anonymous {
				continue
			}
			name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if name == "-" {
				continue
			}
			if field.Anonymous && name == "" {
				collectFloatFields(out, prefix, field.Type, depth+1)
				continue
			}
			if name == "" {
				name = field.Name
			}
			collectFloatFields(out, joinKey(prefix, name), field.Type, depth+1)
		}
	}
}

func WriteCSV(out io.Writer, t Table, format CSVFormat) error {
	if format.Sep == 0 {
		format = DefaultCSVFormat
	}
	if format.BOM {
		if _, err := io.WriteString(out, utf8BOM); err != nil {
			return err
		}
	}
	w := csv.NewWriter(out)
	w.Comma = format.Sep
	if err := w.Write(t.Columns); err != nil {
		return err
	}
	if err := w.WriteAll(t.Rows); err != nil {
		return err
	}
	return w.Error()
}
