package api

import (
	"context"
	"strconv"
)

// ClipsService /clips/ 接口
type ClipsService struct {
	c *Client
}

// List 片段列表，可按视频过滤
func (s *ClipsService) List(ctx context.Context, params ListParams) ([]Clip, error) {
	req := s.c.http.Get(s.c.url("/clips/")).SetContext(ctx)
	return decodeList[Clip](params.apply(req))
}

// Get 片段详情
func (s *ClipsService) Get(ctx context.Context, id int) (*Clip, error) {
	return decode[Clip](s.c.http.Get(s.c.url(clipPath(id))).SetContext(ctx))
}

// Create 创建片段
func (s *ClipsService) Create(ctx context.Context, in ClipInput) (*Clip, error) {
	req := s.c.http.Post(s.c.url("/clips/")).SetContext(ctx).SetBody(in)
	return decode[Clip](req)
}

// Update 更新片段
func (s *ClipsService) Update(ctx context.Context, id int, in ClipInput) (*Clip, error) {
	req := s.c.http.Put(s.c.url(clipPath(id))).SetContext(ctx).SetBody(in)
	return decode[Clip](req)
}

// Delete 删除片段
func (s *ClipsService) Delete(ctx context.Context, id int) error {
	return send(s.c.http.Delete(s.c.url(clipPath(id))).SetContext(ctx))
}

// TogglePublic 切换片段公开状态
func (s *ClipsService) TogglePublic(ctx context.Context, id int) (*Clip, error) {
	req := s.c.http.Post(s.c.url(clipPath(id) + "toggle_public/")).SetContext(ctx)
	return decode[Clip](req)
}

// Mine 当前用户创建的片段
func (s *ClipsService) Mine(ctx context.Context) ([]Clip, error) {
	return decodeList[Clip](s.c.http.Get(s.c.url("/clips/my_clips/")).SetContext(ctx))
}

// Public 公开片段
func (s *ClipsService) Public(ctx context.Context) ([]Clip, error) {
	return decodeList[Clip](s.c.http.Get(s.c.url("/clips/public_clips/")).SetContext(ctx))
}

func clipPath(id int) string {
	return "/clips/" + strconv.Itoa(id) + "/"
}
