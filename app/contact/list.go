package contact

import (
	"net/http"

	"barylstyle/contacts-api/app/httperr"
	"barylstyle/contacts-api/internal"
	"barylstyle/contacts-api/internal/model"
	"barylstyle/contacts-api/pkg/middleware"

	"github.com/gin-gonic/gin"
)

type listQuery struct {
	Favorite *bool `form:"favorite"`
	Page     int   `form:"page" binding:"omitempty,min=1"`
	Limit    int   `form:"limit" binding:"omitempty,oneof=10 20 50 100 250"`
}

func ContactList(c *gin.Context, d *internal.Deps) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httperr.Bind(c, err)
		return
	}

	filter := model.ContactFilter{
		Favorite: q.Favorite,
		Limit:    q.Limit,
	}
	if q.Page > 0 {
		filter.Page = q.Page - 1
	}

	contacts, err := d.Contacts.List(c.Request.Context(), middleware.CurrentUser(c).ID, filter)
	if err != nil {
		httperr.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, contacts)
}

func ContactGet(c *gin.Context, d *internal.Deps) {
	contact, err := d.Contacts.Get(c.Request.Context(), middleware.CurrentUser(c).ID, c.Param("id"))
	if err != nil {
		httperr.Abort(c, repoError(err))
		return
	}

	c.JSON(http.StatusOK, contact)
}
