// Package user contains the handlers of the /api/users routes
package user

import (
	"net/http"

	"barylstyle/contacts-api/app/httperr"
	"barylstyle/contacts-api/internal"

	"github.com/gin-gonic/gin"
)

type credentialsBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func UserSignup(c *gin.Context, d *internal.Deps) {
	var data credentialsBody
	if err := c.ShouldBindJSON(&data); err != nil {
		httperr.Bind(c, err)
		return
	}

	user, err := d.Auth.Register(c.Request.Context(), data.Email, data.Password)
	if err != nil {
		httperr.Abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user": user.Public(),
	})
}
