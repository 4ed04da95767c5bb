package user

import (
	"errors"
	"io"
	"net/http"

	"barylstyle/contacts-api/app/httperr"
	"barylstyle/contacts-api/internal"

	"github.com/gin-gonic/gin"
)

func UserVerify(c *gin.Context, d *internal.Deps) {
	if err := d.Auth.ConfirmVerification(c.Request.Context(), c.Param("token")); err != nil {
		httperr.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Verification successful",
	})
}

type resendBody struct {
	Email string `json:"email"`
}

// UserResendVerification sends the verification mail again
func UserResendVerification(c *gin.Context, d *internal.Deps) {
	var data resendBody
	// An empty body is reported the same way as a missing email
	if err := c.ShouldBindJSON(&data); err != nil && !errors.Is(err, io.EOF) {
		httperr.Bind(c, err)
		return
	}

	if err := d.Auth.RequestVerification(c.Request.Context(), data.Email); err != nil {
		httperr.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Verification email sent",
	})
}
