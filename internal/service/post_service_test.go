package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"SocialServer/consts"
	"SocialServer/model"
	"SocialServer/pkg/minio"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostServiceForTest(userRepo *fakeUserRepo, postRepo *fakePostRepo, store ObjectStore) IPostService {
	initServiceTestLogger()
	if userRepo == nil {
		userRepo = &fakeUserRepo{}
	}
	if postRepo == nil {
		postRepo = &fakePostRepo{}
	}
	return NewPostService(userRepo, postRepo, store)
}

func testMediaUpload(name string) *MediaUpload {
	return &MediaUpload{
		Reader:      strings.NewReader("media-bytes"),
		Size:        11,
		FileName:    name,
		ContentType: "image/png",
	}
}

func TestCreatePost_Empty(t *testing.T) {
	svc := newPostServiceForTest(nil, nil, nil)

	_, err := svc.CreatePost(context.Background(), "u-1", "", nil, nil)
	require.Error(t, err)
	assert.Equal(t, consts.CodePostEmpty, CodeOf(err))
}

func TestCreatePost_TextTooLong(t *testing.T) {
	svc := newPostServiceForTest(nil, nil, nil)

	_, err := svc.CreatePost(context.Background(), "u-1", strings.Repeat("长", consts.MaxPostTextLen+1), nil, nil)
	require.Error(t, err)
	assert.Equal(t, consts.CodePostTooLong, CodeOf(err))
}

// 对象存储未配置：纯文本可发，带媒体的发布被拒绝
func TestCreatePost_MediaWithoutStore(t *testing.T) {
	svc := newPostServiceForTest(nil, nil, nil)

	_, err := svc.CreatePost(context.Background(), "u-1", "text", testMediaUpload("a.png"), nil)
	require.Error(t, err)
	assert.Equal(t, consts.CodeServiceUnavailable, CodeOf(err))

	item, err := svc.CreatePost(context.Background(), "u-1", "text only", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "text only", item.Text)
}

func TestCreatePost_WithMedia(t *testing.T) {
	store := &fakeObjectStore{
		storeFn: func(ctx context.Context, reader io.Reader, size int64, opts minio.StoreOptions) (string, error) {
			return "http://store.local/bucket/posts/" + opts.FileName, nil
		},
	}
	var createdPost *model.Post
	postRepo := &fakePostRepo{
		createFn: func(ctx context.Context, post *model.Post) error {
			createdPost = post
			return nil
		},
	}
	svc := newPostServiceForTest(nil, postRepo, store)

	item, err := svc.CreatePost(context.Background(), "u-1", "caption", testMediaUpload("a.png"), testMediaUpload("b.mp4"))
	require.NoError(t, err)
	require.NotNil(t, createdPost)
	assert.Equal(t, "http://store.local/bucket/posts/a.png", createdPost.Image)
	assert.Equal(t, "http://store.local/bucket/posts/b.mp4", createdPost.Video)
	assert.Equal(t, createdPost.Image, item.Image)
	assert.Equal(t, createdPost.Video, item.Video)
}

// 视频上传失败要回收已传的图片，不留孤儿对象
func TestCreatePost_VideoFailureReclaimsImage(t *testing.T) {
	store := &fakeObjectStore{
		storeFn: func(ctx context.Context, reader io.Reader, size int64, opts minio.StoreOptions) (string, error) {
			if strings.HasSuffix(opts.FileName, ".mp4") {
				return "", errors.New("upload failed")
			}
			return "http://store.local/bucket/posts/" + opts.FileName, nil
		},
	}
	created := false
	postRepo := &fakePostRepo{
		createFn: func(ctx context.Context, post *model.Post) error {
			created = true
			return nil
		},
	}
	svc := newPostServiceForTest(nil, postRepo, store)

	_, err := svc.CreatePost(context.Background(), "u-1", "", testMediaUpload("a.png"), testMediaUpload("b.mp4"))
	require.Error(t, err)
	assert.Equal(t, consts.CodeUpstreamError, CodeOf(err))
	assert.False(t, created)
	require.Len(t, store.deleted, 1)
	assert.Equal(t, "http://store.local/bucket/posts/a.png", store.deleted[0])
}

func TestUpdatePost_NotOwner(t *testing.T) {
	postRepo := &fakePostRepo{
		getByIDFn: func(ctx context.Context, id int64) (*model.Post, error) {
			return &model.Post{Id: id, UserUuid: "u-1", Text: "origin"}, nil
		},
	}
	svc := newPostServiceForTest(nil, postRepo, nil)

	_, err := svc.UpdatePost(context.Background(), "u-2", 100, "edited", nil, nil)
	require.Error(t, err)
	assert.Equal(t, consts.CodeNotPostOwner, CodeOf(err))
}

// 清空文本后必须仍有媒体兜底
func TestUpdatePost_CannotClearTextWithoutMedia(t *testing.T) {
	postRepo := &fakePostRepo{
		getByIDFn: func(ctx context.Context, id int64) (*model.Post, error) {
			return &model.Post{Id: id, UserUuid: "u-1", Text: "origin"}, nil
		},
	}
	svc := newPostServiceForTest(nil, postRepo, nil)

	_, err := svc.UpdatePost(context.Background(), "u-1", 100, "", nil, nil)
	require.Error(t, err)
	assert.Equal(t, consts.CodePostEmpty, CodeOf(err))
}

func TestUpdatePost_Success(t *testing.T) {
	var updated *model.Post
	postRepo := &fakePostRepo{
		getByIDFn: func(ctx context.Context, id int64) (*model.Post, error) {
			return &model.Post{Id: id, UserUuid: "u-1", Text: "origin"}, nil
		},
		updateFn: func(ctx context.Context, post *model.Post) error {
			updated = post
			return nil
		},
	}
	svc := newPostServiceForTest(nil, postRepo, nil)

	item, err := svc.UpdatePost(context.Background(), "u-1", 100, "edited", nil, nil)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "edited", updated.Text)
	assert.Equal(t, "edited", item.Text)
}

// 编辑时带新媒体：落库后清理被替换的旧对象
func TestUpdatePost_ReplacesMedia(t *testing.T) {
	var updated *model.Post
	postRepo := &fakePostRepo{
		getByIDFn: func(ctx context.Context, id int64) (*model.Post, error) {
			return &model.Post{
				Id:       id,
				UserUuid: "u-1",
				Text:     "origin",
				Image:    "http://store.local/bucket/posts/old.png",
			}, nil
		},
		updateFn: func(ctx context.Context, post *model.Post) error {
			updated = post
			return nil
		},
	}
	store := &fakeObjectStore{
		storeFn: func(ctx context.Context, reader io.Reader, size int64, opts minio.StoreOptions) (string, error) {
			return "http://store.local/bucket/posts/" + opts.FileName, nil
		},
	}
	svc := newPostServiceForTest(nil, postRepo, store)

	item, err := svc.UpdatePost(context.Background(), "u-1", 100, "edited", testMediaUpload("new.png"), nil)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "http://store.local/bucket/posts/new.png", updated.Image)
	assert.Equal(t, updated.Image, item.Image)
	// 旧图在新图落库后才回收
	assert.Equal(t, []string{"http://store.local/bucket/posts/old.png"}, store.deleted)
}

// 对象存储未配置：文本编辑可用，带媒体的编辑被拒绝
func TestUpdatePost_MediaWithoutStore(t *testing.T) {
	postRepo := &fakePostRepo{
		getByIDFn: func(ctx context.Context, id int64) (*model.Post, error) {
			return &model.Post{Id: id, UserUuid: "u-1", Text: "origin"}, nil
		},
	}
	svc := newPostServiceForTest(nil, postRepo, nil)

	_, err := svc.UpdatePost(context.Background(), "u-1", 100, "edited", testMediaUpload("new.png"), nil)
	require.Error(t, err)
	assert.Equal(t, consts.CodeServiceUnavailable, CodeOf(err))
}

func TestDeletePost_NotFound(t *testing.T) {
	svc := newPostServiceForTest(nil, nil, nil)

	err := svc.DeletePost(context.Background(), "u-1", 404)
	require.Error(t, err)
	assert.Equal(t, consts.CodePostNotFound, CodeOf(err))
}

// 删行成功后清理媒体对象
func TestDeletePost_CleansUpMedia(t *testing.T) {
	postRepo := &fakePostRepo{
		getByIDFn: func(ctx context.Context, id int64) (*model.Post, error) {
			return &model.Post{
				Id:       id,
				UserUuid: "u-1",
				Image:    "http://store.local/bucket/posts/a.png",
				Video:    "http://store.local/bucket/posts/b.mp4",
			}, nil
		},
	}
	store := &fakeObjectStore{}
	svc := newPostServiceForTest(nil, postRepo, store)

	err := svc.DeletePost(context.Background(), "u-1", 100)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"http://store.local/bucket/posts/a.png",
		"http://store.local/bucket/posts/b.mp4",
	}, store.deleted)
}

func TestGetPosts_AttachesAuthors(t *testing.T) {
	postRepo := &fakePostRepo{
		listAllFn: func(ctx context.Context) ([]*model.Post, error) {
			return []*model.Post{
				{Id: 2, UserUuid: "u-2", Text: "second"},
				{Id: 1, UserUuid: "u-1", Text: "first"},
			}, nil
		},
	}
	userRepo := &fakeUserRepo{
		batchGetFn: func(ctx context.Context, uuids []string) ([]*model.UserInfo, error) {
			users := make([]*model.UserInfo, 0, len(uuids))
			for _, uuid := range uuids {
				users = append(users, &model.UserInfo{Uuid: uuid, Name: "name-" + uuid})
			}
			return users, nil
		},
	}
	svc := newPostServiceForTest(userRepo, postRepo, nil)

	items, err := svc.GetPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.NotNil(t, items[0].Author)
	assert.Equal(t, "name-u-2", items[0].Author.Name)
	assert.Equal(t, "name-u-1", items[1].Author.Name)
}
