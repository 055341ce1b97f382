package handler

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/wzgate/estatechat/internal/docsource"
	"github.com/wzgate/estatechat/internal/pkg/errcode"
	"github.com/wzgate/estatechat/internal/pkg/response"
	"github.com/wzgate/estatechat/internal/service"
)

const maxUploadBytes = 16 << 20

type IndexHandler struct {
	index *service.IndexService
}

func NewIndexHandler(index *service.IndexService) *IndexHandler {
	return &IndexHandler{index: index}
}

func (h *IndexHandler) Info(c *gin.Context) {
	files, sources, chunks := h.index.Info()
	response.Success(c, gin.H{
		"num_files": files,
		"filenames": sources,
		"chunks":    chunks,
	})
}

// Upload chunks one uploaded document and appends it to the live index.
func (h *IndexHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, errcode.ErrInvalidFile, "file is required")
		return
	}
	if file.Size > maxUploadBytes {
		response.Error(c, errcode.ErrInvalidFile, "file too large")
		return
	}
	opened, err := file.Open()
	if err != nil {
		response.Error(c, errcode.ErrInvalidFile, "failed to open file")
		return
	}
	defer opened.Close()
	data, err := io.ReadAll(opened)
	if err != nil {
		response.Error(c, errcode.ErrUploadFailed, "failed to read file")
		return
	}

	added, err := h.index.UpdateWithDocument(c.Request.Context(), file.Filename, data)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "index updated", "chunks_added": added})
}

type rebuildRequest struct {
	Source string      `json:"source"`
	Config interface{} `json:"config"`
}

// Rebuild schedules a background rebuild from an external document source
// and returns immediately.
func (h *IndexHandler) Rebuild(c *gin.Context) {
	var req rebuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	src, err := docsource.NewSource(req.Source, req.Config)
	if err != nil {
		response.Error(c, errcode.ErrInvalid, err.Error())
		return
	}
	if err := h.index.StartRebuild(src); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "rebuild scheduled"})
}

func (h *IndexHandler) RebuildStatus(c *gin.Context) {
	response.Success(c, h.index.Status())
}
