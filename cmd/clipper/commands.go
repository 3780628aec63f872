package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/clipper-video/clipper/internal/api"
	"github.com/clipper-video/clipper/internal/tracker"
	"github.com/clipper-video/clipper/utils/pointer"
)

// binder 需要运行时组件的子命令
type binder interface {
	bind(rt *app)
}

type cmdBase struct {
	rt *app
}

func (b *cmdBase) bind(rt *app) { b.rt = rt }

// JobFlags submit 与 upload 共用的剪辑参数
type JobFlags struct {
	Mode         string   `long:"mode" choice:"auto" choice:"manual" default:"auto" description:"clip selection mode"`
	Interval     int      `long:"interval" description:"minutes per clip in auto mode"`
	Ranges       []string `long:"range" description:"manual range START-END, e.g. 0:01:00-0:02:30 (repeatable)"`
	Strict1080   bool     `long:"strict-1080" description:"fail instead of falling back below 1080p"`
	MinHeight    int      `long:"min-height" description:"fallback height, 720 or 480"`
	Subtitles    []string `long:"sub" description:"subtitle language (repeatable)"`
	Burn         bool     `long:"burn" description:"burn subtitles into clips"`
	AutoCaptions bool     `long:"auto-captions" description:"generate captions with whisper"`
	CaptionLang  string   `long:"caption-lang" description:"auto caption language, id or en"`
	WhisperModel string   `long:"whisper" description:"whisper model: tiny, base or small"`
	Orientation  string   `long:"orientation" description:"landscape or portrait"`
	MaxClips     int      `long:"max-clips" default:"-1" description:"limit number of clips, 0 for no limit"`
	Wait         bool     `short:"w" long:"wait" description:"wait until the job finishes"`
}

func (f *JobFlags) options() (api.JobOptions, error) {
	o := api.JobOptions{
		Mode:              f.Mode,
		Strict1080:        f.Strict1080,
		MinHeightFallback: f.MinHeight,
		SubtitleLangs:     f.Subtitles,
		BurnSubtitles:     f.Burn,
		AutoCaptions:      f.AutoCaptions,
		AutoCaptionLang:   f.CaptionLang,
		WhisperModel:      f.WhisperModel,
		Orientation:       f.Orientation,
	}
	if f.Interval != 0 {
		o.IntervalMinutes = pointer.Of(f.Interval)
	}
	if f.MaxClips >= 0 {
		o.MaxClips = pointer.Of(f.MaxClips)
	}
	for _, r := range f.Ranges {
		start, end, ok := strings.Cut(r, "-")
		if !ok {
			return o, fmt.Errorf("range %q: want START-END", r)
		}
		o.Ranges = append(o.Ranges, api.TimeRange{Start: strings.TrimSpace(start), End: strings.TrimSpace(end)})
	}
	return o, nil
}

type submitCmd struct {
	cmdBase
	JobFlags
	DownloadSections bool `long:"download-sections" description:"download only the selected sections"`
	Args             struct {
		URL string `positional-arg-name:"URL" required:"true"`
	} `positional-args:"yes"`
}

func (c *submitCmd) Execute([]string) error {
	o, err := c.options()
	if err != nil {
		return err
	}
	ticket, err := c.rt.tracker.Start(c.rt.ctx, api.JobCreateRequest{
		SourceType:       api.SourceYouTube,
		YouTubeURL:       c.Args.URL,
		DownloadSections: c.DownloadSections,
		JobOptions:       o,
	})
	return started(c.rt, c.Wait, ticket, err)
}

type uploadCmd struct {
	cmdBase
	JobFlags
	Font      string `long:"font" description:"subtitle font"`
	FontSize  int    `long:"font-size" description:"subtitle font size"`
	WordLevel bool   `long:"word-level" description:"burn word level highlights"`
	Args      struct {
		File string `positional-arg-name:"FILE" required:"true"`
	} `positional-args:"yes"`
}

func (c *uploadCmd) Execute([]string) error {
	o, err := c.options()
	if err != nil {
		return err
	}
	f, err := os.Open(c.Args.File)
	if err != nil {
		return err
	}
	defer f.Close()

	ticket, err := c.rt.tracker.StartUpload(c.rt.ctx, api.LocalJobUpload{
		JobOptions:    o,
		FileName:      filepath.Base(f.Name()),
		SubtitleFont:  c.Font,
		SubtitleSize:  c.FontSize,
		BurnWordLevel: c.WordLevel,
	}, f)
	return started(c.rt, c.Wait, ticket, err)
}

// started 输出新任务，wait 时继续轮询至终态
// 活跃任务达到上限时先列出占用名额的任务
func started(rt *app, wait bool, ticket *api.JobTicket, err error) error {
	var limit *api.ActiveJobLimitError
	if errors.As(err, &limit) {
		for _, j := range limit.ActiveJobDetails {
			rt.out.progress(&api.JobDetail{ID: j.ID, Status: j.Status, Progress: j.Progress, Message: j.Message})
		}
		return err
	}
	if ticket == nil {
		return err
	}
	if perr := rt.out.ticket(ticket); perr != nil {
		return perr
	}
	if err != nil || !wait {
		return err
	}
	return waitFor(rt, ticket.ID, 0)
}

type statusCmd struct {
	cmdBase
	Args struct {
		ID string `positional-arg-name:"JOB_ID"`
	} `positional-args:"yes"`
}

func (c *statusCmd) Execute([]string) error {
	if c.Args.ID != "" {
		detail, err := c.rt.api.Jobs.Get(c.rt.ctx, c.Args.ID)
		if err != nil {
			return err
		}
		return c.rt.out.detail(detail)
	}

	jobs := c.rt.jobs
	rec, err := jobs.Get(c.rt.ctx)
	if err != nil {
		return err
	}
	if rec == nil {
		return c.rt.out.message("no current job")
	}
	if !jobs.IsValid(rec) {
		return c.rt.out.message(fmt.Sprintf("job %s is older than %s and will not be resumed", rec.ID, jobs.MaxAge()))
	}
	expiresAt, ok := jobs.ExpiresAt(rec)
	return c.rt.out.record(rec, expiresAt, ok)
}

type resumeCmd struct {
	cmdBase
}

func (c *resumeCmd) Execute([]string) error {
	detail, err := c.rt.tracker.Resume(c.rt.ctx)
	if err != nil {
		return err
	}
	if detail == nil {
		return c.rt.out.message("nothing to resume")
	}
	return c.rt.out.detail(detail)
}

type waitCmd struct {
	cmdBase
	Interval time.Duration `short:"i" long:"interval" description:"poll interval (default 2s)"`
	Args     struct {
		ID string `positional-arg-name:"JOB_ID"`
	} `positional-args:"yes"`
}

func (c *waitCmd) Execute([]string) error {
	id, err := currentID(c.rt, c.Args.ID)
	if err != nil {
		return err
	}
	return waitFor(c.rt, id, c.Interval)
}

type cancelCmd struct {
	cmdBase
}

func (c *cancelCmd) Execute([]string) error {
	detail, err := c.rt.tracker.Cancel(c.rt.ctx)
	if errors.Is(err, tracker.ErrJobGone) {
		return c.rt.out.message("job no longer exists, forgotten")
	}
	if err != nil {
		return err
	}
	return c.rt.out.detail(detail)
}

type clearCmd struct {
	cmdBase
}

func (c *clearCmd) Execute([]string) error {
	if err := c.rt.tracker.Forget(c.rt.ctx); err != nil {
		return err
	}
	return c.rt.out.message("current job forgotten")
}

type zipCmd struct {
	cmdBase
	Out  string `short:"O" long:"out" description:"output file (default JOB_ID.zip, - for stdout)"`
	Args struct {
		ID string `positional-arg-name:"JOB_ID"`
	} `positional-args:"yes"`
}

func (c *zipCmd) Execute([]string) error {
	id, err := currentID(c.rt, c.Args.ID)
	if err != nil {
		return err
	}

	if c.Out == "-" {
		_, err := c.rt.api.Jobs.DownloadZip(c.rt.ctx, id, c.rt.out.w)
		return err
	}

	name := c.Out
	if name == "" {
		name = id + ".zip"
	}
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	n, err := c.rt.api.Jobs.DownloadZip(c.rt.ctx, id, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(name)
		return err
	}
	return c.rt.out.message(fmt.Sprintf("saved %s (%d bytes)", name, n))
}

type wordsCmd struct {
	cmdBase
	Clip  int    `long:"clip" default:"-1" description:"clip index, all clips by default"`
	Token string `long:"token" description:"job token (default: token of the remembered job)"`
	Args  struct {
		ID string `positional-arg-name:"JOB_ID"`
	} `positional-args:"yes"`
}

func (c *wordsCmd) Execute([]string) error {
	id, token, err := c.target()
	if err != nil {
		return err
	}

	var words any
	if c.Clip >= 0 {
		words, err = c.rt.api.Jobs.ClipWords(c.rt.ctx, id, c.Clip, token)
	} else {
		words, err = c.rt.api.Jobs.Words(c.rt.ctx, id, token)
	}
	if err != nil {
		return err
	}

	// 字幕原样转交，yaml 需要先解出通用结构
	data, err := json.Marshal(words)
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	return c.rt.out.print(v, func(w io.Writer) {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(v)
	})
}

// target 未指定令牌时使用记住的任务的令牌
func (c *wordsCmd) target() (id, token string, err error) {
	id, token = c.Args.ID, c.Token
	if token != "" && id != "" {
		return id, token, nil
	}
	rec, err := c.rt.tracker.Current(c.rt.ctx)
	if err != nil {
		return "", "", err
	}
	if rec == nil || (id != "" && rec.ID.String() != id) {
		if id == "" {
			return "", "", tracker.ErrNoCurrentJob
		}
		return "", "", api.ErrInvalidToken.WithMessage("job token is required, use --token")
	}
	if token == "" {
		token = rec.AccessToken
	}
	return rec.ID.String(), token, nil
}

// currentID 优先使用参数，否则取记住的任务
func currentID(rt *app, id string) (string, error) {
	if id != "" {
		return id, nil
	}
	rec, err := rt.tracker.Current(rt.ctx)
	if err != nil {
		return "", err
	}
	if rec == nil {
		return "", tracker.ErrNoCurrentJob
	}
	return rec.ID.String(), nil
}

func waitFor(rt *app, id string, interval time.Duration) error {
	detail, err := rt.tracker.Wait(rt.ctx, id, interval, rt.out.progress)
	if err != nil {
		return err
	}
	if rt.out.format != "text" {
		return rt.out.detail(detail)
	}
	for _, r := range detail.Results {
		fmt.Fprintf(rt.out.w, "  %s  %s\n", r.Filename, r.URL)
	}
	if detail.Status == api.StatusDone {
		fmt.Fprintf(rt.out.w, "zip: %s\n", rt.api.Jobs.DownloadZipURL(detail.ID))
	}
	return nil
}
