package cli

import (
	"github.com/agisilaos/annofab-cli/internal/output"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type outputFlags struct {
	format    string
	output    string
	csvFormat string
	allowed   []output.Format
}

func addOutputFlags(cmd *cobra.Command, def output.Format, allowed ...output.Format) *outputFlags {
	o := &outputFlags{allowed: allowed}
	cmd.Flags().StringVarP(&o.format, "format", "f", string(def), "output format")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&o.csvFormat, "csv_format", "", `CSV options as JSON, e.g. {"sep": "\t", "encoding": "utf-8"}`)
	return o
}

type resolvedOutput struct {
	format    output.Format
	path      string
	csvFormat output.CSVFormat
}

// resolve validates the flags before any remote call is made.
func (o *outputFlags) resolve(ctx *Context) (resolvedOutput, error) {
	format, err := output.ParseFormat(o.format, o.allowed...)
	if err != nil {
		return resolvedOutput{}, usageError(err)
	}
	rawCSV := ctx.Config.CSVFormat
	if o.csvFormat != "" {
		rawCSV, err = jsonObjectFromArgs("csv_format", o.csvFormat)
		if err != nil {
			return resolvedOutput{}, err
		}
	}
	csvFormat, err := output.ParseCSVFormat(rawCSV)
	if err != nil {
		return resolvedOutput{}, usageError(err)
	}
	return resolvedOutput{format: format, path: o.output, csvFormat: csvFormat}, nil
}

// printRecords writes records in the resolved format. ids maps each id-list
// format to the field it prints.
func printRecords[R any](ctx *Context, out resolvedOutput, records []R, columns []string, ids map[output.Format]func(R) string) error {
	w, closeFn, err := output.Open(out.path, ctx.Stdout)
	if err != nil {
		return err
	}
	defer closeFn()
	switch {
	case out.format == output.FormatCSV:
		table, err := output.BuildTable(records, columns)
		if err != nil {
			return err
		}
		err = output.WriteCSV(w, table, out.csvFormat)
		if err != nil {
			return err
		}
	case out.format == output.FormatJSON || out.format == output.FormatPrettyJSON:
		if err := output.WriteJSON(w, records, out.format == output.FormatPrettyJSON); err != nil {
			return err
		}
	case out.format.IsIDList():
		idOf, ok := ids[out.format]
		if !ok {
			return usageErrorf("format %s is not supported here", out.format)
		}
		list := make([]string, 0, len(records))
		for _, r := range records {
			list = append(list, idOf(r))
		}
		if err := output.WriteIDList(w, list); err != nil {
			return err
		}
	}
	if out.path != "" {
		log.Info().Str("path", out.path).Int("records", len(records)).Msg("wrote output")
	}
	return closeFn()
}
