package util

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var slugFormat = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidateSlug 验证字段是否为合法的 slug
func ValidateSlug(fl validator.FieldLevel) bool {
	slug, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return slugFormat.MatchString(slug)
}
