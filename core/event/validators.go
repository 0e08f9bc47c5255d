package event

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/ilmhub/ilm/core"
)

var (
	categoryTag  = "eventcategory"
	categoryText = "invalid event category"

	endsAtText = "ends_at cannot be before starts_at"
	endsAtTag  = "endsafter"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	core.RegisterOneOf(validate, translator, categoryTag, categoryText, Categories)

	validate.RegisterStructValidation(newEventStructValidation, NewEvent{})
	core.RegisterCustomTranslation(validate, translator, endsAtTag, endsAtText)
}

// newEventStructValidation checks that the event does not end before it starts.
func newEventStructValidation(sl validator.StructLevel) {
	if ne, ok := sl.Current().Interface().(NewEvent); ok {
		if checkPeriod(ne.StartsAt, ne.EndsAt) != nil {
			sl.ReportError(ne.EndsAt, "ends_at", "EndsAt", endsAtTag, "")
		}
	}
}

func checkPeriod(startsAt time.Time, endsAt null.Time) error {
	if endsAt.Valid && endsAt.Time.Before(startsAt) {
		return core.NewValidationError(nil, core.FieldError{Field: "ends_at", Error: endsAtText})
	}
	return nil
}
