package user

import (
	"net/http"

	"barylstyle/contacts-api/app/httperr"
	"barylstyle/contacts-api/internal"
	"barylstyle/contacts-api/pkg/middleware"

	"github.com/gin-gonic/gin"
)

func UserLogin(c *gin.Context, d *internal.Deps) {
	var data credentialsBody
	if err := c.ShouldBindJSON(&data); err != nil {
		httperr.Bind(c, err)
		return
	}

	res, err := d.Auth.Login(c.Request.Context(), data.Email, data.Password)
	if err != nil {
		httperr.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": res.Token,
		"user": gin.H{
			"email":        res.User.Email,
			"subscription": res.User.Subscription,
		},
	})
}

func UserLogout(c *gin.Context, d *internal.Deps) {
	if err := d.Auth.Logout(c.Request.Context(), middleware.CurrentUser(c)); err != nil {
		httperr.Abort(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
