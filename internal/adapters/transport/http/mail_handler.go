package http

import (
	"net/http"

	"github.com/Miraines/MoonyAndStarry/account-service/internal/adapters/transport/http/dto"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/mail"
	"github.com/gin-gonic/gin"
)

type MailHandler struct {
	notifier mail.Notifier
	v        *dto.Validator
}

func NewMailHandler(n mail.Notifier, v *dto.Validator) *MailHandler {
	return &MailHandler{notifier: n, v: v}
}

// Send queues tmpl for the recipient in the body. Delivery is not awaited.
func (h *MailHandler) Send(tmpl mail.Template) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.SendMailDTO
		if !bindJSON(c, h.v, &body) {
			return
		}
		h.notifier.Notify(c.Request.Context(), tmpl, mail.Recipient{
			Email: body.Email,
			Name:  body.Name,
			Link:  body.Redirection,
		})
		c.JSON(http.StatusOK, gin.H{"message": "queued"})
	}
}
