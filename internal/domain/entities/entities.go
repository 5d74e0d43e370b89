package entities

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Wire names of the series fields
const (
	FieldID                      = "id"
	FieldTitulo                  = "titulo"
	FieldNumeroTemporadas        = "numeroTemporadas"
	FieldDataLancamentoTemporada = "dataLancamentoTemporada"
	FieldDiretor                 = "diretor"
	FieldProdutora               = "produtora"
	FieldCategoria               = "categoria"
	FieldDataAssistiu            = "dataAssistiu"
)

// SeriesFields lists every client-supplied field in wire order.
var SeriesFields = []string{
	FieldTitulo,
	FieldNumeroTemporadas,
	FieldDataLancamentoTemporada,
	FieldDiretor,
	FieldProdutora,
	FieldCategoria,
	FieldDataAssistiu,
}

// Series represents one watched TV series entry
type Series struct {
	ID                      int    `json:"id"`
	Titulo                  string `json:"titulo" validate:"required"`
	NumeroTemporadas        int    `json:"numeroTemporadas" validate:"gte=1"`
	DataLancamentoTemporada string `json:"dataLancamentoTemporada" validate:"required"`
	Diretor                 string `json:"diretor" validate:"required"`
	Produtora               string `json:"produtora" validate:"required"`
	Categoria               string `json:"categoria" validate:"required"`
	DataAssistiu            string `json:"dataAssistiu" validate:"required"`
}

// SeriesPatch is a partial update; nil fields are left untouched.
type SeriesPatch struct {
	Titulo                  *string `json:"titulo,omitempty"`
	NumeroTemporadas        *int    `json:"numeroTemporadas,omitempty"`
	DataLancamentoTemporada *string `json:"dataLancamentoTemporada,omitempty"`
	Diretor                 *string `json:"diretor,omitempty"`
	Produtora               *string `json:"produtora,omitempty"`
	Categoria               *string `json:"categoria,omitempty"`
	DataAssistiu            *string `json:"dataAssistiu,omitempty"`
}

// IsEmpty reports whether the patch carries no field at all.
func (p SeriesPatch) IsEmpty() bool {
	return p.Titulo == nil && p.NumeroTemporadas == nil && p.DataLancamentoTemporada == nil &&
		p.Diretor == nil && p.Produtora == nil && p.Categoria == nil && p.DataAssistiu == nil
}

var errNotInteger = errors.New("not an integer")

// NewSeriesFromFields builds a series from a decoded request body. Every
// field is required; numbers are coerced to int and everything else to
// string. The id, if any, is ignored.
func NewSeriesFromFields(fields map[string]any) (*Series, error) {
	var missing []string
	for _, name := range SeriesFields {
		if isBlank(fields[name]) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &ValidationError{
			Message: "all fields are required",
			Fields:  SubmittedFields(fields),
			Missing: missing,
		}
	}

	series := &Series{}
	if err := series.ApplyFields(fields); err != nil {
		return nil, err
	}
	return series, nil
}

// ApplyFields merges the known fields present in the map over s. Unknown
// keys and the id are ignored.
func (s *Series) ApplyFields(fields map[string]any) error {
	var invalid []string

	for _, name := range SeriesFields {
		value, ok := fields[name]
		if !ok {
			continue
		}
		switch name {
		case FieldNumeroTemporadas:
			n, err := coerceInt(value)
			if err != nil {
				invalid = append(invalid, name)
				continue
			}
			s.NumeroTemporadas = n
		case FieldTitulo:
			s.Titulo = coerceString(value)
		case FieldDataLancamentoTemporada:
			s.DataLancamentoTemporada = coerceString(value)
		case FieldDiretor:
			s.Diretor = coerceString(value)
		case FieldProdutora:
			s.Produtora = coerceString(value)
		case FieldCategoria:
			s.Categoria = coerceString(value)
		case FieldDataAssistiu:
			s.DataAssistiu = coerceString(value)
		}
	}

	if len(invalid) > 0 {
		return &ValidationError{
			Message: fmt.Sprintf("invalid value for %s", strings.Join(invalid, ", ")),
			Fields:  SubmittedFields(fields),
			Invalid: invalid,
		}
	}
	return nil
}

// SeriesFromStored rebuilds a persisted record without rejecting it. Values
// of the wrong type are coerced where possible; the names of fields that
// could not be coerced (left at zero) are returned.
func SeriesFromStored(raw map[string]any) (Series, []string) {
	var (
		s       Series
		invalid []string
	)

	if v, ok := raw[FieldID]; ok {
		id, ok := storedInt(v)
		if !ok {
			invalid = append(invalid, FieldID)
		}
		s.ID = id
	}

	for _, name := range SeriesFields {
		value, ok := raw[name]
		if !ok || value == nil {
			continue
		}
		if name == FieldNumeroTemporadas {
			n, ok := storedInt(value)
			if !ok {
				invalid = append(invalid, name)
			}
			s.NumeroTemporadas = n
			continue
		}
		// string fields never fail
		_ = s.ApplyFields(map[string]any{name: value})
	}

	return s, invalid
}

// Fields returns the set fields keyed by wire name.
func (p SeriesPatch) Fields() map[string]any {
	fields := make(map[string]any)
	setString := func(name string, v *string) {
		if v != nil {
			fields[name] = *v
		}
	}
	setString(FieldTitulo, p.Titulo)
	if p.NumeroTemporadas != nil {
		fields[FieldNumeroTemporadas] = *p.NumeroTemporadas
	}
	setString(FieldDataLancamentoTemporada, p.DataLancamentoTemporada)
	setString(FieldDiretor, p.Diretor)
	setString(FieldProdutora, p.Produtora)
	setString(FieldCategoria, p.Categoria)
	setString(FieldDataAssistiu, p.DataAssistiu)
	return fields
}

// SubmittedFields echoes the value supplied for every series field, nil
// when absent.
func SubmittedFields(fields map[string]any) map[string]any {
	submitted := make(map[string]any, len(SeriesFields))
	for _, name := range SeriesFields {
		submitted[name] = fields[name]
	}
	return submitted
}

// NextID returns max(existing ids)+1, or 1 for an empty collection.
func NextID(series []Series) int {
	maxID := 0
	for _, s := range series {
		if s.ID > maxID {
			maxID = s.ID
		}
	}
	return maxID + 1
}

// IndexOf returns the position of the series with the given id, or -1.
func IndexOf(series []Series, id int) int {
	for i, s := range series {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	}
	return false
}

func coerceString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// storedInt is coerceInt that truncates fractional numbers.
func storedInt(v any) (int, bool) {
	if n, err := coerceInt(v); err == nil {
		return n, true
	}

	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return int(math.Trunc(f)), true
}

func coerceInt(v any) (int, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case float64:
		if t != math.Trunc(t) || math.IsInf(t, 0) {
			return 0, errNotInteger
		}
		return int(t), nil
	case json.Number:
		return strconv.Atoi(t.String())
	case string:
		return strconv.Atoi(strings.TrimSpace(t))
	default:
		return 0, errNotInteger
	}
}
