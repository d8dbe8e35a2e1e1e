package handlers

import (
	"sync"

	"github.com/SscSPs/secure_pay/internal/utils"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerValidatorsOnce sync.Once

// registerValidators adds the mobile and pin binding tags to gin's validator.
func registerValidators() {
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("mobile", func(fl validator.FieldLevel) bool {
			return utils.IsValidMobile(fl.Field().String())
		})
		_ = v.RegisterValidation("pin", func(fl validator.FieldLevel) bool {
			return utils.IsValidPIN(fl.Field().String())
		})
	})
}
