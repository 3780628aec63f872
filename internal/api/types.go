package api

// JobStatus 任务状态
type JobStatus string

const (
	StatusQueued   JobStatus = "queued"
	StatusRunning  JobStatus = "running"
	StatusDone     JobStatus = "done"
	StatusFailed   JobStatus = "failed"
	StatusCanceled JobStatus = "canceled"
)

// Terminal 是否为终态
func (s JobStatus) Terminal() bool {
	switch s {
	case StatusDone, StatusFailed, StatusCanceled:
		return true
	}
	return false
}

// Active 是否计入活跃任务上限
func (s JobStatus) Active() bool {
	return s == StatusQueued || s == StatusRunning
}

// 任务参数取值
const (
	ModeAuto   = "auto"
	ModeManual = "manual"

	SourceYouTube = "youtube"
	SourceLocal   = "local"

	OrientationLandscape = "landscape"
	OrientationPortrait  = "portrait"

	MaxRanges   = 60
	MaxClipsCap = 60
)

// TimeRange 手动模式的片段，格式 H:MM:SS[.f]
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// JobOptions 创建任务与上传任务共用的剪辑参数
type JobOptions struct {
	Mode              string      `json:"mode"`
	IntervalMinutes   *int        `json:"interval_minutes,omitempty"`
	Ranges            []TimeRange `json:"ranges,omitempty"`
	Strict1080        bool        `json:"strict_1080"`
	MinHeightFallback int         `json:"min_height_fallback,omitempty"`
	SubtitleLangs     []string    `json:"subtitle_langs,omitempty"`
	BurnSubtitles     bool        `json:"burn_subtitles"`
	AutoCaptions      bool        `json:"auto_captions"`
	AutoCaptionLang   string      `json:"auto_caption_lang,omitempty"`
	WhisperModel      string      `json:"whisper_model,omitempty"`
	Orientation       string      `json:"orientation,omitempty"`
	MaxClips          *int        `json:"max_clips,omitempty"`
}

// JobCreateRequest POST /jobs/ 请求体
type JobCreateRequest struct {
	SourceType       string `json:"source_type,omitempty"`
	YouTubeURL       string `json:"youtube_url"`
	DownloadSections bool   `json:"download_sections"`
	JobOptions
}

// LocalJobUpload POST /jobs/upload/ 的 multipart 表单
type LocalJobUpload struct {
	JobOptions
	FileName      string
	SubtitleFont  string
	SubtitleSize  int
	BurnWordLevel bool
}

// JobTicket 创建任务的响应
type JobTicket struct {
	ID          string    `json:"id"`
	Status      JobStatus `json:"status"`
	Progress    float64   `json:"progress"`
	Message     string    `json:"message"`
	CreatedAt   string    `json:"created_at"`
	AccessToken string    `json:"access_token"`
}

// JobSummary 429 响应中的活跃任务
type JobSummary struct {
	ID        string    `json:"id"`
	Status    JobStatus `json:"status"`
	Progress  float64   `json:"progress"`
	Message   string    `json:"message"`
	CreatedAt string    `json:"created_at"`
}

// JobResult 任务产出文件
type JobResult struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// JobDetail GET /jobs/{id}/ 响应
type JobDetail struct {
	ID              string      `json:"id"`
	Status          JobStatus   `json:"status"`
	Progress        float64     `json:"progress"`
	Message         string      `json:"message"`
	Error           string      `json:"error"`
	CancelRequested bool        `json:"cancel_requested"`
	CreatedAt       string      `json:"created_at"`
	Results         []JobResult `json:"results"`
}

// User 资源所有者
type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Video 视频资源
type Video struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	VideoFile   string  `json:"video_file,omitempty"`
	Duration    float64 `json:"duration"`
	Thumbnail   string  `json:"thumbnail"`
	UploadedBy  *User   `json:"uploaded_by,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at,omitempty"`
	Clips       []Clip  `json:"clips,omitempty"`
	ClipsCount  int     `json:"clips_count"`
}

// VideoInput 创建视频的表单字段
type VideoInput struct {
	Title       string
	Description string
	Duration    float64
	FileName    string
}

// VideoUpdate PUT /videos/{id}/ 请求体
type VideoUpdate struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Duration    float64 `json:"duration"`
}

// Clip 剪辑片段资源
type Clip struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Video       int     `json:"video"`
	StartTime   float64 `json:"start_time"`
	EndTime     float64 `json:"end_time"`
	Thumbnail   string  `json:"thumbnail"`
	CreatedBy   *User   `json:"created_by,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
	IsPublic    bool    `json:"is_public"`
	Duration    float64 `json:"duration"`
}

// ClipInput 创建或更新片段的请求体
type ClipInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Video       int     `json:"video"`
	StartTime   float64 `json:"start_time"`
	EndTime     float64 `json:"end_time"`
	IsPublic    bool    `json:"is_public"`
}

// ListParams 列表查询参数（DRF SearchFilter / OrderingFilter）
type ListParams struct {
	Search   string
	Ordering string
	VideoID  int // 仅 clips 列表
}
