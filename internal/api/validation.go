package api

import (
	"alcyxob/learnhub/internal/service"
	"regexp"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var unitCodePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,31}$`)

var registerOnce sync.Once

// RegisterValidators adds the custom binding tags used by request DTOs.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("coursecode", func(fl validator.FieldLevel) bool {
			return service.CourseCodePattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("unitcode", func(fl validator.FieldLevel) bool {
			return unitCodePattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
			return primitive.IsValidObjectID(fl.Field().String())
		})
	})
}
