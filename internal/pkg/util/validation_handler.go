package util

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// 错误信息里使用前端看到的字段名
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	return v
}

// ValidateDTO 只返回第一条错误，格式化为可直接展示的提示
func ValidateDTO(dto any) error {
	err := validate.Struct(dto)
	if err == nil {
		return nil
	}
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return err
	}
	return errors.New(describe(vErrs[0]))
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("字段 [%s] 不能为空", field)
	case "max":
		return fmt.Sprintf("字段 [%s] 超出长度上限 %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("字段 [%s] 不能小于 %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("字段 [%s] 只能是 %s 之一", field, fe.Param())
	case "email":
		return fmt.Sprintf("字段 [%s] 不是合法的邮箱", field)
	default:
		return fmt.Sprintf("字段 [%s] 校验失败，规则 [%s]", field, fe.Tag())
	}
}
