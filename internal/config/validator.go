package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validate enforces the `validate:"..."` struct tags declared on Config,
// replacing the teacher's hand-rolled field-by-field checks with the
// struct-tag-driven validator those tags were clearly written for (the
// teacher's own config.go carries `validate:"oneof=..."`/`validate:"min=..."`
// tags that nothing in the teacher repo ever wires to a real validator).
var validate = validator.New()

func Validate(c *Config) error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}
