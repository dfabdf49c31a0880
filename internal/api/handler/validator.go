package handler

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"guidance-planner/internal/planner"
)

var registerOnce sync.Once

// RegisterValidators 在 gin 的 validator 引擎上注册自定义规则：
//   - hhmm: "HH:MM" 24 小时制
//   - weekday: 1-7，周一=1
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
			_, err := planner.ParseClock(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
			return planner.ValidateDay(int(fl.Field().Int())) == nil
		})
	})
}
