package contact

import (
	"net/http"

	"barylstyle/contacts-api/app/httperr"
	"barylstyle/contacts-api/internal"
	"barylstyle/contacts-api/pkg/middleware"

	"github.com/gin-gonic/gin"
)

func ContactDelete(c *gin.Context, d *internal.Deps) {
	if err := d.Contacts.Delete(c.Request.Context(), middleware.CurrentUser(c).ID, c.Param("id")); err != nil {
		httperr.Abort(c, repoError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Contact deleted",
	})
}
