package tickets

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidations adds the ticket_type rule to gin's validator. Safe to
// call more than once.
func RegisterValidations() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("ticket_type", validateTicketType)
		}
	})
}

func validateTicketType(fl validator.FieldLevel) bool {
	return Type(fl.Field().String()).IsValid()
}
