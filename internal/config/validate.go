package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gobwas/glob"
)

// Validate checks cfg for values that load fine but will not do what the user
// expects: unknown providers, unknown blocking thresholds, bad URLs and
// patterns that do not compile. Load never calls it; 'zwischen doctor' and
// 'zwischen config show' report the problems it returns.
func Validate(cfg *Config) []string {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = validate.RegisterValidation("glob", func(fl validator.FieldLevel) bool {
		_, err := glob.Compile(fl.Field().String(), '/')
		return err == nil
	})

	view := struct {
		Config
		Ignore []string `mapstructure:"ignore" validate:"dive,required,glob"`
	}{Config: *cfg, Ignore: cfg.Ignore}

	err := validate.Struct(view)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return []string{err.Error()}
	}
	problems := make([]string, 0, len(errs))
	for _, e := range errs {
		parts := strings.Split(e.Namespace(), ".")
		for len(parts) > 1 && (parts[0] == "" || parts[0] == "Config") {
			parts = parts[1:]
		}
		field := strings.Join(parts, ".")
		msg := fmt.Sprintf("%s: rule '%s'", field, e.Tag())
		if e.Param() != "" {
			msg += fmt.Sprintf(" (expected: %s)", e.Param())
		}
		if e.Value() != nil && e.Value() != "" {
			msg += fmt.Sprintf(", actual: '%v'", e.Value())
		}
		problems = append(problems, msg)
	}
	return problems
}
