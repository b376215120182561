// Package validation registers the marketplace binding rules with the validator used by gin.
package validation

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/huskybridge/marketplace/internal/app/lifecycle"
	"github.com/huskybridge/marketplace/internal/app/models"
)

// Password and name limits shared by account creation and profile updates
const (
	PasswordMinLength = 8
	NameMinLength     = 1
	NameMaxLength     = 100
)

// Rules maps binding tags to their validation functions
var Rules = map[string]validator.Func{
	"posttype": func(fl validator.FieldLevel) bool {
		return models.PostType(fl.Field().String()).Valid()
	},
	"category": func(fl validator.FieldLevel) bool {
		return models.Category(fl.Field().String()).Valid()
	},
	"availability": func(fl validator.FieldLevel) bool {
		_, _, err := lifecycle.ParseAvailability(fl.Field().String())
		return err == nil
	},
	"reportreason": func(fl validator.FieldLevel) bool {
		return models.ReportReason(fl.Field().String()).Valid()
	},
}

var (
	registerOnce sync.Once
	registerErr  error
)

// Register installs Rules on v
func Register(v *validator.Validate) error {
	for tag, fn := range Rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("failed to register validation %q: %w", tag, err)
		}
	}
	return nil
}

// RegisterWithGin installs Rules on gin's default binding validator. It is idempotent.
func RegisterWithGin() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = fmt.Errorf("unexpected binding validator engine %T", binding.Validator.Engine())
			return
		}
		registerErr = Register(v)
	})
	return registerErr
}
