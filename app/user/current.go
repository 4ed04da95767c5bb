package user

import (
	"net/http"

	"barylstyle/contacts-api/app/httperr"
	"barylstyle/contacts-api/internal"
	"barylstyle/contacts-api/internal/model"
	"barylstyle/contacts-api/pkg/middleware"

	"github.com/gin-gonic/gin"
)

func UserCurrent(c *gin.Context, d *internal.Deps) {
	c.JSON(http.StatusOK, d.Auth.Current(middleware.CurrentUser(c)))
}

type subscriptionBody struct {
	Subscription model.Subscription `json:"subscription" binding:"required,oneof=starter pro business"`
}

func UserSubscription(c *gin.Context, d *internal.Deps) {
	var data subscriptionBody
	if err := c.ShouldBindJSON(&data); err != nil {
		httperr.Bind(c, err)
		return
	}

	user, err := d.Auth.UpdateSubscription(c.Request.Context(), middleware.CurrentUser(c), data.Subscription)
	if err != nil {
		httperr.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
