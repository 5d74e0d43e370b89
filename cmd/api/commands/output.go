package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/watchlog/core/internal/client"
	"github.com/watchlog/core/internal/domain/entities"
)

var seriesHeaders = []string{"ID", "Título", "Temporadas", "Lançamento", "Diretor", "Produtora", "Categoria", "Assistiu"}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// useTable reports whether output should be a table: only on a terminal
// and only when --json was not given.
func useTable(cmd *cobra.Command) bool {
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return false
	}
	return isTerminal(cmd.OutOrStdout())
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func writeSeries(cmd *cobra.Command, series ...entities.Series) error {
	rows := make([][]string, 0, len(series))
	for _, s := range series {
		rows = append(rows, []string{
			strconv.Itoa(s.ID),
			s.Titulo,
			strconv.Itoa(s.NumeroTemporadas),
			s.DataLancamentoTemporada,
			s.Diretor,
			s.Produtora,
			s.Categoria,
			s.DataAssistiu,
		})
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), renderTable(seriesHeaders, rows))
	return err
}

func renderTable(headers []string, rows [][]string) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	// id and season count are numeric
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})

	return tw.Render()
}

// FormatError renders a command failure as one line for the terminal.
func FormatError(err error) string {
	var (
		connErr    *client.ConnectionError
		timeoutErr *client.TimeoutError
		apiErr     *client.APIError
	)
	switch {
	case errors.As(err, &timeoutErr):
		return timeoutErr.Error()
	case errors.As(err, &connErr):
		return connErr.Error()
	case errors.As(err, &apiErr):
		msg := apiErr.Message
		if msg == "" {
			msg = strings.ToLower(http.StatusText(apiErr.StatusCode))
		}
		if len(apiErr.Missing) > 0 {
			msg += " (missing: " + strings.Join(apiErr.Missing, ", ") + ")"
		}
		if len(apiErr.Invalid) > 0 {
			msg += " (invalid: " + strings.Join(apiErr.Invalid, ", ") + ")"
		}
		return msg
	default:
		return err.Error()
	}
}
