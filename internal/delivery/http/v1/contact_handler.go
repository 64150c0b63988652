package v1

import (
	"errors"
	"fmt"
	"net/http"

	"linire-backend/internal/delivery/http/response"
	"linire-backend/internal/domain"
	"linire-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type ContactHandler struct {
	contactUC domain.ContactUsecase
}

// NewContactHandler registers the contact routes (public, no auth required).
// limit runs after the method check so stray GETs do not use up the quota.
func NewContactHandler(public *gin.RouterGroup, contactUC domain.ContactUsecase, limit gin.HandlerFunc) {
	handler := &ContactHandler{
		contactUC: contactUC,
	}

	public.Any("/contact", handler.requirePost, limit, handler.SubmitContact)
}

// contactJSON accepts consent as a boolean, number or string
type contactJSON struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Service   string `json:"service"`
	Message   string `json:"message"`
	Consent   any    `json:"consent"`
}

func (r contactJSON) form() domain.ContactForm {
	consent := ""
	if r.Consent != nil {
		consent = fmt.Sprint(r.Consent)
	}
	return domain.ContactForm{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Phone:     r.Phone,
		Service:   r.Service,
		Message:   r.Message,
		Consent:   consent,
	}
}

func (h *ContactHandler) requirePost(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		c.Header("Allow", http.MethodPost)
		response.JSON(c, http.StatusMethodNotAllowed, domain.ContactResult{
			Success: false,
			Message: "Invalid request method",
		})
		c.Abort()
		return
	}
	c.Next()
}

// SubmitContact godoc
// @Summary      Submit Contact Form
// @Description  Stores a contact inquiry and emails the firm and the sender. Accepts form-encoded, multipart or JSON bodies.
// @Tags         contact
// @Accept       x-www-form-urlencoded
// @Accept       json
// @Produce      json
// @Param        contact  body      domain.ContactForm  true  "Contact Form Data"
// @Success      200      {object}  domain.ContactResult
// @Failure      400      {object}  domain.ContactResult
// @Failure      405      {object}  domain.ContactResult
// @Failure      422      {object}  domain.ContactResult
// @Failure      429      {object}  response.Response
// @Failure      500      {object}  response.Response
// @Router       /contact [post]
func (h *ContactHandler) SubmitContact(c *gin.Context) {
	var form domain.ContactForm
	if c.ContentType() == binding.MIMEJSON {
		var req contactJSON
		if err := c.ShouldBindJSON(&req); err != nil {
			response.JSON(c, http.StatusBadRequest, domain.ContactResult{Success: false, Message: "Invalid request body"})
			return
		}
		form = req.form()
	} else if err := c.ShouldBind(&form); err != nil {
		response.JSON(c, http.StatusBadRequest, domain.ContactResult{Success: false, Message: "Invalid request body"})
		return
	}

	result, err := h.contactUC.Submit(c.Request.Context(), form)
	if err != nil {
		var appErr *apperror.AppError
		if !errors.As(err, &appErr) {
			err = apperror.New(http.StatusInternalServerError, domain.MsgContactFailed, err)
		}
		c.Error(err)
		return
	}

	if !result.Success {
		response.JSON(c, http.StatusUnprocessableEntity, result)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
