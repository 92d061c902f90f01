package service

import (
	"context"
	"io"
	"unicode/utf8"

	"SocialServer/consts"
	"SocialServer/internal/dto"
	"SocialServer/internal/repository"
	"SocialServer/model"
	"SocialServer/pkg/logger"
	"SocialServer/pkg/minio"
	"SocialServer/pkg/util"
)

// postMediaCategory 动态媒体在对象存储里的路径前缀
const postMediaCategory = "posts"

// ObjectStore 对象存储抽象，生产实现是 minio.MinIOClient
type ObjectStore interface {
	Store(ctx context.Context, reader io.Reader, size int64, opts minio.StoreOptions) (string, error)
	Delete(ctx context.Context, publicURL string) error
}

// postServiceImpl 动态服务实现。
// store 为 nil 表示对象存储未配置，纯文本动态不受影响，带媒体的发布被拒绝。
type postServiceImpl struct {
	userRepo repository.IUserRepository
	postRepo repository.IPostRepository
	store    ObjectStore
}

// NewPostService 创建动态服务
func NewPostService(
	userRepo repository.IUserRepository,
	postRepo repository.IPostRepository,
	store ObjectStore,
) IPostService {
	return &postServiceImpl{
		userRepo: userRepo,
		postRepo: postRepo,
		store:    store,
	}
}

// CreatePost 发布动态。文本与媒体至少要有一项。
// 两个媒体都上传成功后才落库；第二个上传失败时回收第一个，不留孤儿对象。
func (s *postServiceImpl) CreatePost(ctx context.Context, userUUID, text string, image, video *MediaUpload) (*dto.PostItem, error) {
	if text == "" && image == nil && video == nil {
		return nil, NewBizError(consts.CodePostEmpty)
	}
	if utf8.RuneCountInString(text) > consts.MaxPostTextLen {
		return nil, NewBizError(consts.CodePostTooLong)
	}
	if (image != nil || video != nil) && s.store == nil {
		return nil, NewBizError(consts.CodeServiceUnavailable)
	}

	var imageURL, videoURL string
	if image != nil {
		url, err := s.uploadMedia(ctx, image)
		if err != nil {
			return nil, err
		}
		imageURL = url
	}
	if video != nil {
		url, err := s.uploadMedia(ctx, video)
		if err != nil {
			if imageURL != "" {
				_ = s.store.Delete(ctx, imageURL)
			}
			return nil, err
		}
		videoURL = url
	}

	post := &model.Post{
		Id:       util.NextID(),
		UserUuid: userUUID,
		Text:     text,
		Image:    imageURL,
		Video:    videoURL,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	author, err := s.getAuthorBrief(ctx, userUUID)
	if err != nil {
		return nil, err
	}
	return dto.NewPostItem(post, author), nil
}

// uploadMedia 上传单个媒体文件，失败归为上游错误
func (s *postServiceImpl) uploadMedia(ctx context.Context, media *MediaUpload) (string, error) {
	url, err := s.store.Store(ctx, media.Reader, media.Size, minio.StoreOptions{
		FileName:    media.FileName,
		Category:    postMediaCategory,
		ContentType: media.ContentType,
	})
	if err != nil {
		logger.Error(ctx, "动态媒体上传失败",
			logger.String("file_name", media.FileName),
			logger.ErrorField("error", err),
		)
		return "", NewBizError(consts.CodeUpstreamError)
	}
	return url, nil
}

// GetPosts 返回全部动态，新到旧，附带作者投影
func (s *postServiceImpl) GetPosts(ctx context.Context) ([]*dto.PostItem, error) {
	posts, err := s.postRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	uuidSet := make(map[string]struct{}, len(posts))
	for _, post := range posts {
		uuidSet[post.UserUuid] = struct{}{}
	}
	uuids := make([]string, 0, len(uuidSet))
	for uuid := range uuidSet {
		uuids = append(uuids, uuid)
	}

	authors, err := s.userRepo.BatchGetByUUIDs(ctx, uuids)
	if err != nil {
		return nil, err
	}
	briefByUUID := make(map[string]*dto.UserBrief, len(authors))
	for _, u := range authors {
		briefByUUID[u.Uuid] = dto.NewUserBrief(u)
	}

	items := make([]*dto.PostItem, 0, len(posts))
	for _, post := range posts {
		items = append(items, dto.NewPostItem(post, briefByUUID[post.UserUuid]))
	}
	return items, nil
}

func (s *postServiceImpl) GetPost(ctx context.Context, id int64) (*dto.PostItem, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, wrapRepoError(err, consts.CodePostNotFound)
	}
	author, err := s.getAuthorBrief(ctx, post.UserUuid)
	if err != nil {
		return nil, err
	}
	return dto.NewPostItem(post, author), nil
}

// UpdatePost 编辑动态。仅作者可编辑；传入的图片/视频会替换原有媒体。
// 媒体替换顺序与发布一致：先传完新对象再落库，落库成功后才
// 清理被替换的旧对象（清理失败只记日志，残留对象可重试清理）。
func (s *postServiceImpl) UpdatePost(ctx context.Context, userUUID string, id int64, text string, image, video *MediaUpload) (*dto.PostItem, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, wrapRepoError(err, consts.CodePostNotFound)
	}
	if post.UserUuid != userUUID {
		return nil, NewBizError(consts.CodeNotPostOwner)
	}
	if text == "" && image == nil && video == nil && post.Image == "" && post.Video == "" {
		return nil, NewBizError(consts.CodePostEmpty)
	}
	if utf8.RuneCountInString(text) > consts.MaxPostTextLen {
		return nil, NewBizError(consts.CodePostTooLong)
	}
	if (image != nil || video != nil) && s.store == nil {
		return nil, NewBizError(consts.CodeServiceUnavailable)
	}

	var newImageURL, newVideoURL string
	if image != nil {
		url, err := s.uploadMedia(ctx, image)
		if err != nil {
			return nil, err
		}
		newImageURL = url
	}
	if video != nil {
		url, err := s.uploadMedia(ctx, video)
		if err != nil {
			if newImageURL != "" {
				_ = s.store.Delete(ctx, newImageURL)
			}
			return nil, err
		}
		newVideoURL = url
	}

	var replaced []string
	post.Text = text
	if newImageURL != "" {
		if post.Image != "" {
			replaced = append(replaced, post.Image)
		}
		post.Image = newImageURL
	}
	if newVideoURL != "" {
		if post.Video != "" {
			replaced = append(replaced, post.Video)
		}
		post.Video = newVideoURL
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, wrapRepoError(err, consts.CodePostNotFound)
	}

	for _, url := range replaced {
		if err := s.store.Delete(ctx, url); err != nil {
			logger.Warn(ctx, "被替换的动态媒体清理失败",
				logger.Int64("post_id", id),
				logger.String("url", url),
				logger.ErrorField("error", err),
			)
		}
	}

	author, err := s.getAuthorBrief(ctx, userUUID)
	if err != nil {
		return nil, err
	}
	return dto.NewPostItem(post, author), nil
}

// DeletePost 删除动态。先删行再清媒体：
// 对象删除失败只记日志，Delete 本身幂等，残留对象可重试清理。
func (s *postServiceImpl) DeletePost(ctx context.Context, userUUID string, id int64) error {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return wrapRepoError(err, consts.CodePostNotFound)
	}
	if post.UserUuid != userUUID {
		return NewBizError(consts.CodeNotPostOwner)
	}

	if err := s.postRepo.Delete(ctx, id); err != nil {
		return wrapRepoError(err, consts.CodePostNotFound)
	}

	if s.store != nil {
		for _, url := range []string{post.Image, post.Video} {
			if url == "" {
				continue
			}
			if err := s.store.Delete(ctx, url); err != nil {
				logger.Warn(ctx, "动态媒体清理失败",
					logger.Int64("post_id", id),
					logger.String("url", url),
					logger.ErrorField("error", err),
				)
			}
		}
	}
	return nil
}

func (s *postServiceImpl) getAuthorBrief(ctx context.Context, uuid string) (*dto.UserBrief, error) {
	user, err := s.userRepo.GetByUUID(ctx, uuid)
	if err != nil {
		return nil, wrapRepoError(err, consts.CodeUserNotFound)
	}
	return dto.NewUserBrief(user), nil
}
