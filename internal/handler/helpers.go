package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/wzgate/estatechat/internal/pkg/errcode"
	"github.com/wzgate/estatechat/internal/pkg/errs"
	"github.com/wzgate/estatechat/internal/pkg/response"
)

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	switch {
	case errors.Is(err, errs.ErrUnauthorized):
		response.Error(c, errcode.ErrUnauthorized, "unauthorized")
	case errors.Is(err, errs.ErrNotFound):
		response.Error(c, errcode.ErrNotFound, "not found")
	case errors.Is(err, errs.ErrInvalid), errors.Is(err, errs.ErrUnsupportedDoc):
		response.Error(c, errcode.ErrInvalid, "invalid request")
	case errors.Is(err, errs.ErrConflict):
		response.Error(c, errcode.ErrConflict, "conflict")
	case errors.Is(err, errs.ErrRebuildRunning):
		response.Error(c, errcode.ErrRebuildRunning, "index rebuild already running")
	case errors.Is(err, errs.ErrIndexNotLoaded):
		response.Error(c, errcode.ErrIndexNotLoaded, "index not loaded")
	default:
		response.Error(c, errcode.ErrInternal, "internal error")
	}
}
