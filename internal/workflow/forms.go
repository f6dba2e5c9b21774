package workflow

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jorge-barreto/blogflow/internal/common"
	"github.com/jorge-barreto/blogflow/internal/pipeline"
)

// OutlineForm is the editable copy of an outline record.
type OutlineForm struct {
	Title          string `json:"title"`
	AlternateTitle string `json:"alternate_title"`
	Outline        string `json:"outline" validate:"required"`
	BodyPrompt     string `json:"body_prompt"`
	TargetAudience string `json:"target_audience"`
	Goal           string `json:"goal"`
}

// FinalForm is the editable copy of a final-article record.
type FinalForm struct {
	Title          string `json:"title" validate:"required"`
	AlternateTitle string `json:"alternate_title" validate:"required"`
	Article        string `json:"final_article" validate:"required"`
}

// crossTitles picks the form title and alternate title from a record's
// new_title and Title fields. The title prefers new_title, then Title; the
// alternate title is whichever of the two the title did not come from.
func crossTitles(newTitle, title string) (string, string) {
	if newTitle != "" {
		return newTitle, title
	}
	return title, newTitle
}

func seedOutline(rec *pipeline.OutlineRecord) *OutlineForm {
	if rec == nil {
		return nil
	}
	title, alt := crossTitles(rec.NewTitle, rec.Title)
	return &OutlineForm{
		Title:          title,
		AlternateTitle: alt,
		Outline:        rec.Outline,
		BodyPrompt:     rec.BodyPrompt,
		TargetAudience: rec.TargetAudience,
		Goal:           rec.Goal,
	}
}

func seedFinal(rec *pipeline.FinalArticleRecord) *FinalForm {
	if rec == nil {
		return nil
	}
	title, alt := crossTitles(rec.NewTitle, rec.Title)
	return &FinalForm{
		Title:          title,
		AlternateTitle: alt,
		Article:        rec.Article,
	}
}

func (f FinalForm) trimmed() FinalForm {
	return FinalForm{
		Title:          strings.TrimSpace(f.Title),
		AlternateTitle: strings.TrimSpace(f.AlternateTitle),
		Article:        strings.TrimSpace(f.Article),
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// validateForm runs struct validation and reports failures as a single
// validation error.
func validateForm(v *validator.Validate, form any) error {
	err := v.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return common.Validation("%v", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", e.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", e.Field()))
		}
	}
	return common.Validation("%s", strings.Join(msgs, "; "))
}
