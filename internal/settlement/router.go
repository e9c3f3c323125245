package settlement

import "github.com/gin-gonic/gin"

// SetupWebhookRoutes mounts the provider callback. It sits outside the
// versioned API and carries no JWT; the signature is the authentication.
func SetupWebhookRoutes(r gin.IRouter, controller *Controller) {
	r.POST("/payments/webhook", controller.Webhook) // POST /payments/webhook
}
