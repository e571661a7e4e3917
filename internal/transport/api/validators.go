package api

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// validateMaxBytes checks the length of a string in bytes, the builtin max tag counts runes.
func validateMaxBytes(fl validator.FieldLevel) bool {
	maxBytes, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}

	str, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}

	return len(str) <= maxBytes
}

// decimalValue lets tags see decimal.Decimal fields as their string form.
func decimalValue(field reflect.Value) any {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.String()
	}
	return nil
}

// fieldDecimal parses the field and rejects values that do not fit a money column.
func fieldDecimal(fl validator.FieldLevel) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(fl.Field().String())
	return d, err == nil && domain.HasMoneyScale(d)
}

// validateDecimalGT0 requires a positive decimal.Decimal.
func validateDecimalGT0(fl validator.FieldLevel) bool {
	d, ok := fieldDecimal(fl)
	return ok && d.IsPositive()
}

// validateDecimalGTE0 requires a non-negative decimal.Decimal.
func validateDecimalGTE0(fl validator.FieldLevel) bool {
	d, ok := fieldDecimal(fl)
	return ok && !d.IsNegative()
}

func registerValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("validator registration: unexpected engine %T", binding.Validator.Engine())
	}
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})

	validators := map[string]validator.Func{
		"max_bytes":    validateMaxBytes,
		"decimal_gt0":  validateDecimalGT0,
		"decimal_gte0": validateDecimalGTE0,
	}
	for tag, fn := range validators {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("validator registration: %s", err.Error())
		}
	}
	return nil
}
