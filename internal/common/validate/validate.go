package validate

import (
	"reflect"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// Get returns the shared validator with the decimal type and the "price"
// tag registered.
func Get() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterCustomTypeFunc(DecimalValue, decimal.Decimal{})
		if err := validate.RegisterValidation("price", ValidatePrice); err != nil {
			panic(err)
		}
	})
	return validate
}

// ValidatePrice accepts non-negative decimal prices.
func ValidatePrice(fl validator.FieldLevel) bool {
	value, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return false
	}
	return !d.IsNegative()
}

func DecimalValue(v reflect.Value) interface{} {
	n, ok := v.Interface().(decimal.Decimal)
	if !ok {
		return nil
	}
	return n.String()
}
