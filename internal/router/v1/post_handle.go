package v1

import (
	"mime/multipart"
	"strconv"

	"SocialServer/consts"
	"SocialServer/internal/middleware"
	"SocialServer/internal/service"
	"SocialServer/pkg/logger"
	"SocialServer/pkg/result"

	"github.com/gin-gonic/gin"
)

// PostHandler 动态处理器
type PostHandler struct {
	postService service.IPostService
}

// NewPostHandler 创建动态处理器
func NewPostHandler(postService service.IPostService) *PostHandler {
	return &PostHandler{
		postService: postService,
	}
}

// CreatePost 发布动态接口
// multipart 表单：text 文本，image/video 可选的媒体文件。
// @Router /api/v1/post [post]
func (h *PostHandler) CreatePost(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	userUUID, _ := middleware.GetUserUUID(c)

	text := c.PostForm("text")

	image, imageClose, err := openFormFile(c, "image")
	if err != nil {
		result.Fail(c, nil, consts.CodeBodyError)
		return
	}
	if imageClose != nil {
		defer imageClose()
	}

	video, videoClose, err := openFormFile(c, "video")
	if err != nil {
		result.Fail(c, nil, consts.CodeBodyError)
		return
	}
	if videoClose != nil {
		defer videoClose()
	}

	item, err := h.postService.CreatePost(ctx, userUUID, text, image, video)
	if err != nil {
		code := service.CodeOf(err)
		if consts.IsNonServerError(code) {
			result.Fail(c, nil, code)
			return
		}

		logger.Error(ctx, "发布动态服务内部错误",
			logger.ErrorField("error", err),
		)
		result.Fail(c, nil, consts.CodeInternalError)
		return
	}

	result.Success(c, item)
}

// GetPosts 获取动态列表
// @Router /api/v1/posts [get]
func (h *PostHandler) GetPosts(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	items, err := h.postService.GetPosts(ctx)
	if err != nil {
		logger.Error(ctx, "获取动态列表服务内部错误",
			logger.ErrorField("error", err),
		)
		result.Fail(c, nil, consts.CodeInternalError)
		return
	}

	result.Success(c, items)
}

// GetPost 获取单条动态
// @Router /api/v1/post/:id [get]
func (h *PostHandler) GetPost(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	id, ok := parsePostID(c)
	if !ok {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	item, err := h.postService.GetPost(ctx, id)
	if err != nil {
		code := service.CodeOf(err)
		if consts.IsNonServerError(code) {
			result.Fail(c, nil, code)
			return
		}

		logger.Error(ctx, "获取动态服务内部错误",
			logger.Int64("post_id", id),
			logger.ErrorField("error", err),
		)
		result.Fail(c, nil, consts.CodeInternalError)
		return
	}

	result.Success(c, item)
}

// UpdatePost 编辑动态
// multipart 表单：text 文本，image/video 可选的替换媒体。
// @Router /api/v1/post/:id [put]
func (h *PostHandler) UpdatePost(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	userUUID, _ := middleware.GetUserUUID(c)

	id, ok := parsePostID(c)
	if !ok {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	text := c.PostForm("text")

	image, imageClose, err := openFormFile(c, "image")
	if err != nil {
		result.Fail(c, nil, consts.CodeBodyError)
		return
	}
	if imageClose != nil {
		defer imageClose()
	}

	video, videoClose, err := openFormFile(c, "video")
	if err != nil {
		result.Fail(c, nil, consts.CodeBodyError)
		return
	}
	if videoClose != nil {
		defer videoClose()
	}

	item, err := h.postService.UpdatePost(ctx, userUUID, id, text, image, video)
	if err != nil {
		code := service.CodeOf(err)
		if consts.IsNonServerError(code) {
			result.Fail(c, nil, code)
			return
		}

		logger.Error(ctx, "编辑动态服务内部错误",
			logger.Int64("post_id", id),
			logger.ErrorField("error", err),
		)
		result.Fail(c, nil, consts.CodeInternalError)
		return
	}

	result.Success(c, item)
}

// DeletePost 删除动态
// @Router /api/v1/post/:id [delete]
func (h *PostHandler) DeletePost(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	userUUID, _ := middleware.GetUserUUID(c)

	id, ok := parsePostID(c)
	if !ok {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	if err := h.postService.DeletePost(ctx, userUUID, id); err != nil {
		code := service.CodeOf(err)
		if consts.IsNonServerError(code) {
			result.Fail(c, nil, code)
			return
		}

		logger.Error(ctx, "删除动态服务内部错误",
			logger.Int64("post_id", id),
			logger.ErrorField("error", err),
		)
		result.Fail(c, nil, consts.CodeInternalError)
		return
	}

	result.Success(c, nil)
}

// openFormFile 打开可选的表单文件字段。
// 字段缺失返回 (nil, nil, nil)；打开失败才算错误。
func openFormFile(c *gin.Context, field string) (*service.MediaUpload, func(), error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		// 可选字段：没传不算错
		return nil, nil, nil
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, nil, err
	}

	return &service.MediaUpload{
		Reader:      file,
		Size:        fileHeader.Size,
		FileName:    fileHeader.Filename,
		ContentType: contentTypeOf(fileHeader),
	}, func() { _ = file.Close() }, nil
}

func contentTypeOf(fh *multipart.FileHeader) string {
	return fh.Header.Get("Content-Type")
}

// parsePostID 解析路径里的动态 id
func parsePostID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
