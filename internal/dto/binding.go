package dto

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// init registers the "dgt0" rule with gin's validator so amount fields can be
// rejected at binding time instead of deep in the posting engine.
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("dgt0", decimalGreaterThanZero)
	}
}

// decimalGreaterThanZero accepts only strictly positive decimal.Decimal values.
func decimalGreaterThanZero(fl validator.FieldLevel) bool {
	d, ok := fl.Field().Interface().(decimal.Decimal)
	return ok && d.IsPositive()
}
