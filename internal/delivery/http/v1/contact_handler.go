package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio-contact/internal/delivery/http/response"
	"portfolio-contact/internal/domain"
	"portfolio-contact/pkg/apperror"
)

type ContactHandler struct {
	contactUC domain.ContactUsecase
}

// NewContactHandler registers the contact routes (public, no auth required)
func NewContactHandler(public *gin.RouterGroup, contactUC domain.ContactUsecase) {
	handler := &ContactHandler{
		contactUC: contactUC,
	}

	public.POST("/contact", handler.SubmitContact)
}

// SubmitContact godoc
// @Summary      Submit Contact Form
// @Description  Send a message through the contact form. The response carries an opaque error key on failure.
// @Tags         contact
// @Accept       json
// @Produce      json
// @Param        contact  body      domain.ContactRequest  true  "Contact Form Data"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response  "errorInvalid"
// @Failure      429      {object}  response.Response  "errorRateLimit"
// @Failure      500      {object}  response.Response  "errorSendFailed"
// @Router       /contact [post]
func (h *ContactHandler) SubmitContact(c *gin.Context) {
	var req domain.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.New(http.StatusBadRequest, "Invalid input", err).WithKey(domain.ErrorKeyInvalid))
		return
	}

	origin := domain.RequestOrigin{
		ForwardedFor: c.GetHeader("X-Forwarded-For"),
		RealIP:       c.GetHeader("X-Real-IP"),
	}

	result := h.contactUC.Submit(c.Request.Context(), &req, origin)
	if !result.Success {
		c.Error(errorForKey(result.Error))
		return
	}

	response.Success(c, http.StatusOK, "Your message has been sent successfully!", nil)
}

func errorForKey(key string) *apperror.AppError {
	switch key {
	case domain.ErrorKeyInvalid:
		return apperror.BadRequest("Invalid input").WithKey(key)
	case domain.ErrorKeyRateLimit:
		return apperror.TooManyRequests("Please wait before sending another message").WithKey(key)
	default:
		return apperror.New(http.StatusInternalServerError, "Failed to send message. Please try again later.", nil).
			WithKey(domain.ErrorKeySendFailed)
	}
}
