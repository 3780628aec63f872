package api

import (
	"context"
	"io"
	"strconv"

	"github.com/clipper-video/clipper/pkg/request"
)

// VideosService /videos/ 接口
type VideosService struct {
	c *Client
}

func (p ListParams) apply(req *request.Request) *request.Request {
	req.SetQuery("search", p.Search).SetQuery("ordering", p.Ordering)
	if p.VideoID > 0 {
		req.SetQuery("video_id", strconv.Itoa(p.VideoID))
	}
	return req
}

// List 视频列表
func (s *VideosService) List(ctx context.Context, params ListParams) ([]Video, error) {
	req := s.c.http.Get(s.c.url("/videos/")).SetContext(ctx)
	return decodeList[Video](params.apply(req))
}

// Get 视频详情（含片段）
func (s *VideosService) Get(ctx context.Context, id int) (*Video, error) {
	return decode[Video](s.c.http.Get(s.c.url(videoPath(id))).SetContext(ctx))
}

// Create 以 multipart 上传视频文件并创建视频
func (s *VideosService) Create(ctx context.Context, in VideoInput, file io.Reader) (*Video, error) {
	return s.create(ctx, "/videos/", in, file)
}

// Upload 同 Create，走 /videos/upload/ 动作
func (s *VideosService) Upload(ctx context.Context, in VideoInput, file io.Reader) (*Video, error) {
	return s.create(ctx, "/videos/upload/", in, file)
}

func (s *VideosService) create(ctx context.Context, path string, in VideoInput, file io.Reader) (*Video, error) {
	form := map[string]string{
		"title":    in.Title,
		"duration": strconv.FormatFloat(in.Duration, 'f', -1, 64),
	}
	if in.Description != "" {
		form["description"] = in.Description
	}
	req := s.c.http.Post(s.c.url(path)).
		SetContext(ctx).
		SetFormData(form).
		SetFile("video_file", in.FileName, file)
	return decode[Video](req)
}

// Update 更新视频元数据
func (s *VideosService) Update(ctx context.Context, id int, in VideoUpdate) (*Video, error) {
	req := s.c.http.Put(s.c.url(videoPath(id))).SetContext(ctx).SetBody(in)
	return decode[Video](req)
}

// Delete 删除视频
func (s *VideosService) Delete(ctx context.Context, id int) error {
	return send(s.c.http.Delete(s.c.url(videoPath(id))).SetContext(ctx))
}

// Clips 视频下的片段
func (s *VideosService) Clips(ctx context.Context, id int) ([]Clip, error) {
	req := s.c.http.Get(s.c.url(videoPath(id) + "clips/")).SetContext(ctx)
	return decodeList[Clip](req)
}

func videoPath(id int) string {
	return "/videos/" + strconv.Itoa(id) + "/"
}
