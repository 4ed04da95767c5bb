package contact

import (
	"net/http"

	"barylstyle/contacts-api/app/httperr"
	"barylstyle/contacts-api/internal"
	"barylstyle/contacts-api/internal/model"
	"barylstyle/contacts-api/pkg/middleware"

	"github.com/gin-gonic/gin"
)

type createBody struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required"`
	Favorite bool   `json:"favorite"`
}

func ContactCreate(c *gin.Context, d *internal.Deps) {
	var data createBody
	if err := c.ShouldBindJSON(&data); err != nil {
		httperr.Bind(c, err)
		return
	}

	contact := &model.Contact{
		Name:     data.Name,
		Email:    data.Email,
		Phone:    data.Phone,
		Favorite: data.Favorite,
		Owner:    middleware.CurrentUser(c).ID,
	}

	if err := d.Contacts.Create(c.Request.Context(), contact); err != nil {
		httperr.Abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, contact)
}
