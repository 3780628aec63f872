// Package api 是视频剪辑后端 REST 接口的类型化客户端
package api

import (
	"strings"

	"github.com/clipper-video/clipper/pkg/request"
)

// DefaultBaseURL 后端默认地址
const DefaultBaseURL = "http://localhost:8000/api"

// Client 后端 API 客户端
type Client struct {
	http    *request.Client
	baseURL string

	Jobs   *JobsService
	Videos *VideosService
	Clips  *ClipsService
}

// New 创建 API 客户端，rc 未设置 BaseURL 时使用 DefaultBaseURL
func New(rc *request.Client) *Client {
	baseURL := rc.BaseURL()
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	c := &Client{http: rc, baseURL: baseURL}
	c.Jobs = &JobsService{c: c}
	c.Videos = &VideosService{c: c}
	c.Clips = &ClipsService{c: c}
	return c
}

// BaseURL 返回后端地址
func (c *Client) BaseURL() string {
	return c.baseURL
}

// url 拼接完整地址，请求客户端据此忽略自身 BaseURL
func (c *Client) url(path string) string {
	return c.baseURL + path
}
