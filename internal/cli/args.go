package cli

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/agisilaos/annofab-cli/internal/annotation"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const filePrefix = "file://"

// listFlags take space separated values: "--task_id a b" means two values.
var listFlags = map[string]struct{}{
	"--task_id":       {},
	"-t":              {},
	"--input_data_id": {},
	"-i":              {},
	"--label_name":    {},
	"--metadata_key":  {},
}

// normalizeArgs rewrites "--task_id a b" into "--task_id a --task_id b" so the
// flag parser only ever sees repeated flags.
func normalizeArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return append(out, args[i:]...)
		}
		if _, ok := listFlags[arg]; !ok {
			out = append(out, arg)
			continue
		}
		consumed := false
		for i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			i++
			out = append(out, arg, args[i])
			consumed = true
		}
		if !consumed {
			out = append(out, arg)
		}
	}
	return out
}

// listFromArgs returns the values of a list flag. A single "file://path"
// value is replaced by the non-blank lines of that file.
func listFromArgs(values []string) ([]string, error) {
	if values == nil {
		return []string{}, nil
	}
	if len(values) == 1 && strings.HasPrefix(values[0], filePrefix) {
		path := strings.TrimPrefix(values[0], filePrefix)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, usageError(err)
		}
		out := []string{}
		sc := bufio.NewScanner(bytes.NewReader(data))
		for sc.Scan() {
			if line := strings.TrimSpace(sc.Text()); line != "" {
				out = append(out, line)
			}
		}
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return out, nil
	}
	return values, nil
}

// jsonFromArgs returns the JSON given inline or as "file://path". An empty
// value yields nil.
func jsonFromArgs(value string) (json.RawMessage, error) {
	if value == "" {
		return nil, nil
	}
	data := []byte(value)
	if strings.HasPrefix(value, filePrefix) {
		var err error
		data, err = os.ReadFile(strings.TrimPrefix(value, filePrefix))
		if err != nil {
			return nil, usageError(err)
		}
	}
	data = bytes.TrimSpace(data)
	if !json.Valid(data) {
		return nil, usageErrorf("invalid JSON: %s", truncate(string(data), 80))
	}
	return json.RawMessage(data), nil
}

func jsonObjectFromArgs(flag, value string) (map[string]any, error) {
	raw, err := jsonFromArgs(value)
	if err != nil || raw == nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, usageErrorf("--%s must be a JSON object: %v", flag, err)
	}
	return out, nil
}

func taskQueryFromArgs(value string) (*annotation.TaskQuery, error) {
	raw, err := jsonFromArgs(value)
	if err != nil || raw == nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var q annotation.TaskQuery
	if err := dec.Decode(&q); err != nil {
		return nil, usageErrorf("invalid --task_query: %v", err)
	}
	return &q, nil
}

func truncate(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max-3]) + "..."
}

func requireFlags(cmd *cobra.Command, names ...string) error {
	var missing []string
	for _, name := range names {
		if !cmd.Flags().Changed(name) {
			missing = append(missing, "--"+name)
		}
	}
	if len(missing) > 0 {
		return usageErrorf("required flag(s) %s not set", strings.Join(missing, ", "))
	}
	return nil
}

// resolveParallelism settles *n before a bulk command runs. An explicit
// --parallelism must be >= 1 and needs --yes. Without the flag the configured
// parallelism applies when --yes is set, otherwise work runs one item at a time.
func resolveParallelism(cmd *cobra.Command, ctx *Context, n *int) error {
	if !cmd.Flags().Changed("parallelism") {
		*n = 1
		if ctx.Config.Parallelism > 1 {
			if ctx.Global.Yes {
				*n = ctx.Config.Parallelism
			} else {
				log.Debug().Int("parallelism", ctx.Config.Parallelism).Msg("configured parallelism needs --yes; running sequentially")
			}
		}
		return nil
	}
	if *n < 1 {
		return usageErrorf("--parallelism must be >= 1, got %d", *n)
	}
	if !ctx.Global.Yes {
		return usageError(fmt.Errorf("--parallelism requires --yes"))
	}
	return nil
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usageErrorf("unexpected argument %q for %q", args[0], cmd.CommandPath())
	}
	return nil
}
