package contact

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"barylstyle/contacts-api/app/httperr"
	"barylstyle/contacts-api/internal"
	"barylstyle/contacts-api/internal/apperr"
	"barylstyle/contacts-api/internal/model"
	"barylstyle/contacts-api/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const msgMissingFields = "missing fields"

type updateBody struct {
	Name  *string `json:"name" binding:"omitempty,min=1"`
	Email *string `json:"email" binding:"omitempty,email"`
	Phone *string `json:"phone" binding:"omitempty,min=1"`
}

type favoriteBody struct {
	Favorite *bool `json:"favorite"`
}

// bindOptional binds a JSON body where an empty body is not an error
func bindOptional(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		httperr.Bind(c, err)
		return false
	}

	return true
}

func ContactUpdate(c *gin.Context, d *internal.Deps) {
	var data updateBody
	if err := c.ShouldBindJSON(&data); err != nil && !errors.Is(err, io.EOF) {
		// A field with the wrong type or value fails the update schema as a whole
		var verr validator.ValidationErrors
		var terr *json.UnmarshalTypeError
		if errors.As(err, &verr) || errors.As(err, &terr) {
			httperr.Abort(c, apperr.BadRequest(msgMissingFields))
			return
		}

		httperr.Bind(c, err)
		return
	}

	patch := model.ContactPatch{
		Name:  data.Name,
		Email: data.Email,
		Phone: data.Phone,
	}

	if patch.Empty() {
		httperr.Abort(c, apperr.BadRequest(msgMissingFields))
		return
	}

	contact, err := d.Contacts.Update(c.Request.Context(), middleware.CurrentUser(c).ID, c.Param("id"), patch)
	if err != nil {
		httperr.Abort(c, repoError(err))
		return
	}

	c.JSON(http.StatusOK, contact)
}

func ContactFavorite(c *gin.Context, d *internal.Deps) {
	var data favoriteBody
	if !bindOptional(c, &data) {
		return
	}

	if data.Favorite == nil {
		httperr.Abort(c, apperr.BadRequest("missing field favorite"))
		return
	}

	contact, err := d.Contacts.SetFavorite(c.Request.Context(), middleware.CurrentUser(c).ID, c.Param("id"), *data.Favorite)
	if err != nil {
		httperr.Abort(c, repoError(err))
		return
	}

	c.JSON(http.StatusOK, contact)
}
