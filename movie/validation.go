package movie

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Rule is a single declarative check on one input field. Tag uses the
// go-playground/validator syntax and is applied to the value returned by
// the rule's accessor.
type Rule struct {
	Field   string
	Tag     string
	Message string

	value func(Input) interface{}
}

// CreateRules are checked in order on every new movie.
var CreateRules = []Rule{
	{
		Field:   "nome",
		Tag:     "required",
		Message: "Nome do filme é obrigatório",
		value:   func(in Input) interface{} { return in.Name },
	},
	{
		Field:   "genero",
		Tag:     "required",
		Message: "Genero do filme é obrigatório",
		value:   func(in Input) interface{} { return in.Genre },
	},
	{
		Field:   "diretor",
		Tag:     "required",
		Message: "Nome do Diretor é obrigatório",
		value:   func(in Input) interface{} { return in.Director },
	},
	{
		Field:   "anoLancamento",
		Tag:     "required,min=1890,max=2030",
		Message: "O ano de lançamento deve estar entre 1890 e 2030",
		value:   func(in Input) interface{} { return in.ReleaseYear.Int() },
	},
	{
		Field:   "notaIMDB",
		Tag:     "required,numeric",
		Message: "A nota deve ser um número",
		value:   func(in Input) interface{} { return string(in.IMDBRating) },
	},
	{
		Field:   "notaIMDB",
		Tag:     "required,min=0,max=10",
		Message: "A nota do filme deve estar entre 0 e 10",
		value:   func(in Input) interface{} { return in.IMDBRating.Int() },
	},
}

// UpdateRules additionally require the id of the movie being replaced.
var UpdateRules = append([]Rule{
	{
		Field:   "_id",
		Tag:     "required",
		Message: "O id do filme é obrigatório",
		value:   func(in Input) interface{} { return in.ID },
	},
}, CreateRules...)

// FieldError describes one failed rule.
type FieldError struct {
	Value    interface{} `json:"value"`
	Msg      string      `json:"msg"`
	Param    string      `json:"param"`
	Location string      `json:"location"`
}

// ValidationError carries every rule an input failed, in rule order.
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		fields = append(fields, fe.Param)
	}
	return "validation error: " + strings.Join(fields, ", ")
}

// HasField reports whether any failed rule belongs to field.
func (e *ValidationError) HasField(field string) bool {
	for _, fe := range e.Errors {
		if fe.Param == field {
			return true
		}
	}
	return false
}

// Validate runs every rule against in and collects all failures. It returns
// nil when the input passes, otherwise a *ValidationError.
func (in Input) Validate(rules []Rule) error {
	var failed []FieldError
	for _, r := range rules {
		if err := validate.Var(r.value(in), r.Tag); err != nil {
			failed = append(failed, FieldError{
				Value:    in.raw(r.Field),
				Msg:      r.Message,
				Param:    r.Field,
				Location: "body",
			})
		}
	}

	if len(failed) > 0 {
		return &ValidationError{Errors: failed}
	}
	return nil
}

func (in Input) raw(field string) interface{} {
	switch field {
	case "_id":
		return in.ID
	case "nome":
		return in.Name
	case "genero":
		return in.Genre
	case "diretor":
		return in.Director
	case "anoLancamento":
		if len(in.rawReleaseYear) > 0 {
			return in.rawReleaseYear
		}
		return in.ReleaseYear
	case "notaIMDB":
		if len(in.rawIMDBRating) > 0 {
			return in.rawIMDBRating
		}
		return in.IMDBRating
	}
	return nil
}
