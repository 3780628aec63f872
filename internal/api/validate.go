package api

import (
	"encoding/json"
	"regexp"
	"slices"
	"strconv"
)

var (
	youtubeURLPattern = regexp.MustCompile(`^(https?://)?([a-zA-Z0-9-]+\.)?(youtube\.com|youtu\.be)/`)
	timestampPattern  = regexp.MustCompile(`^\d{1,2}:\d{2}:\d{2}(\.\d+)?$`)

	minHeightFallbacks = []int{720, 480}
	captionLangs       = []string{"id", "en"}
	whisperModels      = []string{"tiny", "base", "small"}
	orientations       = []string{OrientationLandscape, OrientationPortrait}
)

// DefaultSubtitleLangs 烧录字幕或自动字幕时的默认语言
var DefaultSubtitleLangs = []string{"id", "en"}

// Normalize 烧录字幕或自动字幕且未指定语言时填充默认语言
func (o *JobOptions) Normalize() {
	if (o.BurnSubtitles || o.AutoCaptions) && len(o.SubtitleLangs) == 0 {
		o.SubtitleLangs = slices.Clone(DefaultSubtitleLangs)
	}
}

func (o *JobOptions) validateMode() error {
	switch o.Mode {
	case ModeAuto:
		if o.IntervalMinutes == nil {
			return fieldError("interval_minutes", "required for auto mode")
		}
		if *o.IntervalMinutes < 1 {
			return fieldError("interval_minutes", "must be at least 1 minute")
		}
	case ModeManual:
		if len(o.Ranges) == 0 {
			return fieldError("ranges", "required for manual mode")
		}
	default:
		return fieldError("mode", "must be %q or %q", ModeAuto, ModeManual)
	}
	return nil
}

func (o *JobOptions) validateRanges() error {
	if o.Mode != ModeManual {
		return nil
	}
	if len(o.Ranges) > MaxRanges {
		return fieldError("ranges", "at most %d ranges per job", MaxRanges)
	}
	for i, r := range o.Ranges {
		if r.Start == "" || r.End == "" {
			return fieldError("ranges", "range %d needs start and end", i)
		}
		if !timestampPattern.MatchString(r.Start) || !timestampPattern.MatchString(r.End) {
			return fieldError("ranges", "range %d: time must be HH:MM:SS", i)
		}
	}
	return nil
}

func (o *JobOptions) validateChoices() error {
	if o.MaxClips != nil {
		if *o.MaxClips < 0 {
			return fieldError("max_clips", "must not be negative")
		}
		if *o.MaxClips > MaxClipsCap {
			return fieldError("max_clips", "must be at most %d", MaxClipsCap)
		}
	}
	if o.AutoCaptions && o.AutoCaptionLang != "" && !slices.Contains(captionLangs, o.AutoCaptionLang) {
		return fieldError("auto_caption_lang", "must be id or en")
	}
	if o.WhisperModel != "" && !slices.Contains(whisperModels, o.WhisperModel) {
		return fieldError("whisper_model", "must be tiny, base or small")
	}
	if o.Orientation != "" && !slices.Contains(orientations, o.Orientation) {
		return fieldError("orientation", "must be landscape or portrait")
	}
	return nil
}

// Validate 按后端规则校验 YouTube 任务
func (r *JobCreateRequest) Validate() error {
	switch r.SourceType {
	case "", SourceYouTube:
	case SourceLocal:
		return fieldError("source_type", "local sources must use the upload endpoint")
	default:
		return fieldError("source_type", "must be %q or %q", SourceYouTube, SourceLocal)
	}

	if r.YouTubeURL == "" {
		return fieldError("youtube_url", "required for youtube source")
	}
	if !youtubeURLPattern.MatchString(r.YouTubeURL) {
		return fieldError("youtube_url", "must be a youtube.com or youtu.be url")
	}

	if err := r.validateMode(); err != nil {
		return err
	}
	if err := r.validateRanges(); err != nil {
		return err
	}

	if !r.Strict1080 && r.MinHeightFallback != 0 && !slices.Contains(minHeightFallbacks, r.MinHeightFallback) {
		return fieldError("min_height_fallback", "must be 720 or 480")
	}

	return r.validateChoices()
}

// Validate 校验本地上传任务
func (u *LocalJobUpload) Validate() error {
	if u.FileName == "" {
		return fieldError("video_file", "file name is required")
	}
	if err := u.validateMode(); err != nil {
		return err
	}
	if err := u.validateRanges(); err != nil {
		return err
	}
	if u.AutoCaptionLang != "" && !slices.Contains(captionLangs, u.AutoCaptionLang) {
		return fieldError("auto_caption_lang", "must be id or en")
	}
	return u.validateChoices()
}

// formData 编码为 multipart 表单字段，JSON 字段按字符串传递
func (u *LocalJobUpload) formData() (map[string]string, error) {
	form := map[string]string{
		"mode":           u.Mode,
		"strict_1080":    strconv.FormatBool(u.Strict1080),
		"burn_subtitles": strconv.FormatBool(u.BurnSubtitles),
		"auto_captions":  strconv.FormatBool(u.AutoCaptions),
	}
	if u.IntervalMinutes != nil {
		form["interval_minutes"] = strconv.Itoa(*u.IntervalMinutes)
	}
	if len(u.Ranges) > 0 {
		b, err := json.Marshal(u.Ranges)
		if err != nil {
			return nil, err
		}
		form["ranges"] = string(b)
	}
	if len(u.SubtitleLangs) > 0 {
		b, err := json.Marshal(u.SubtitleLangs)
		if err != nil {
			return nil, err
		}
		form["subtitle_langs"] = string(b)
	}
	if u.MinHeightFallback != 0 {
		form["min_height_fallback"] = strconv.Itoa(u.MinHeightFallback)
	}
	if u.AutoCaptionLang != "" {
		form["auto_caption_lang"] = u.AutoCaptionLang
	}
	if u.WhisperModel != "" {
		form["whisper_model"] = u.WhisperModel
	}
	if u.Orientation != "" {
		form["orientation"] = u.Orientation
	}
	if u.MaxClips != nil {
		form["max_clips"] = strconv.Itoa(*u.MaxClips)
	}
	if u.SubtitleFont != "" {
		form["subtitle_font"] = u.SubtitleFont
	}
	if u.SubtitleSize > 0 {
		form["subtitle_size"] = strconv.Itoa(u.SubtitleSize)
	}
	if u.BurnWordLevel {
		form["burn_word_level"] = "true"
	}
	return form, nil
}
