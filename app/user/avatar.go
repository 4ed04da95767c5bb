package user

import (
	"net/http"
	"os"

	"barylstyle/contacts-api/app/httperr"
	"barylstyle/contacts-api/internal"
	"barylstyle/contacts-api/internal/apperr"
	"barylstyle/contacts-api/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func UserAvatar(c *gin.Context, d *internal.Deps) {
	requestID := middleware.RequestID(c)

	header, err := c.FormFile("avatar")
	if err != nil {
		if err == http.ErrMissingFile {
			httperr.Abort(c, apperr.BadRequest(`"avatar" file is required`))
			return
		}

		httperr.Bind(c, err)
		return
	}

	tmp, err := os.CreateTemp(d.Config.Avatar.TmpDir, "avatar-*")
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	tmp.Close()

	if err := c.SaveUploadedFile(header, tmp.Name()); err != nil {
		os.Remove(tmp.Name())
		httperr.Abort(c, err)
		return
	}

	user := middleware.CurrentUser(c)

	url, err := d.Avatars.SetAvatar(c.Request.Context(), user, tmp.Name(), header.Filename)
	if err != nil {
		zap.L().Debug("Avatar rejected", zap.Error(err), zap.String("requestID", requestID))
		httperr.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"avatarURL": url,
	})
}
