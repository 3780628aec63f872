package api

import (
	"context"
	"encoding/json"
	"io"
	"strconv"

	"github.com/google/uuid"

	"github.com/clipper-video/clipper/pkg/request"
)

// JobTokenHeader 任务令牌请求头
const JobTokenHeader = "X-Job-Token"

// JobsService /jobs/ 接口
type JobsService struct {
	c *Client
}

// ParseJobID 校验并规范化任务 ID（UUID）
func ParseJobID(id string) (string, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", ErrInvalidJobID.WithError(err)
	}
	return u.String(), nil
}

// Create 创建 YouTube 任务
// 活跃任务达到上限时返回 *ActiveJobLimitError
func (s *JobsService) Create(ctx context.Context, in JobCreateRequest) (*JobTicket, error) {
	req := s.c.http.Post(s.c.url("/jobs/")).
		SetContext(ctx).
		SetBody(in)
	return decode[JobTicket](req)
}

// Upload 上传本地视频并创建任务，file 流式上传
func (s *JobsService) Upload(ctx context.Context, in LocalJobUpload, file io.Reader) (*JobTicket, error) {
	form, err := in.formData()
	if err != nil {
		return nil, request.ErrMarshal.WithError(err)
	}
	req := s.c.http.Post(s.c.url("/jobs/upload/")).
		SetContext(ctx).
		SetFormData(form).
		SetFile("video_file", in.FileName, file)
	return decode[JobTicket](req)
}

// Get 查询任务详情
func (s *JobsService) Get(ctx context.Context, id string) (*JobDetail, error) {
	id, err := ParseJobID(id)
	if err != nil {
		return nil, err
	}
	req := s.c.http.Get(s.c.url("/jobs/" + id + "/")).SetContext(ctx)
	return decode[JobDetail](req)
}

// Cancel 取消任务，已处于终态的任务原样返回
func (s *JobsService) Cancel(ctx context.Context, id, token string) (*JobDetail, error) {
	id, err := ParseJobID(id)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, ErrInvalidToken.WithMessage("job token is required")
	}
	req := s.c.http.Post(s.c.url("/jobs/"+id+"/cancel/")).
		SetContext(ctx).
		SetHeader(JobTokenHeader, token)
	return decode[JobDetail](req)
}

// DownloadZipURL 任务产出 ZIP 的下载地址，不校验 ID
func (s *JobsService) DownloadZipURL(id string) string {
	return s.c.url("/jobs/" + id + "/download-zip/")
}

// DownloadZip 下载任务产出 ZIP 到 w
func (s *JobsService) DownloadZip(ctx context.Context, id string, w io.Writer) (int64, error) {
	id, err := ParseJobID(id)
	if err != nil {
		return 0, err
	}
	return s.c.http.Get(s.DownloadZipURL(id)).
		SetContext(ctx).
		Stream(w)
}

// Words 获取任务的逐词字幕，key 为片段序号
func (s *JobsService) Words(ctx context.Context, id, token string) (map[string]json.RawMessage, error) {
	id, err := ParseJobID(id)
	if err != nil {
		return nil, err
	}
	req := s.c.http.Get(s.c.url("/subs/"+id+"/words.json")).
		SetContext(ctx).
		SetHeader(JobTokenHeader, token)
	out, err := decode[map[string]json.RawMessage](req)
	if err != nil {
		return nil, err
	}
	return *out, nil
}

// ClipWords 获取单个片段的逐词字幕，片段没有字幕文件时后端返回空数组
func (s *JobsService) ClipWords(ctx context.Context, id string, idx int, token string) (json.RawMessage, error) {
	id, err := ParseJobID(id)
	if err != nil {
		return nil, err
	}
	if idx < 0 {
		return nil, ErrInvalidRequest.WithMessage("clip index must not be negative")
	}
	req := s.c.http.Get(s.c.url("/subs/"+id+"/"+strconv.Itoa(idx)+"/words.json")).
		SetContext(ctx).
		SetHeader(JobTokenHeader, token)
	out, err := decode[json.RawMessage](req)
	if err != nil {
		return nil, err
	}
	return *out, nil
}
