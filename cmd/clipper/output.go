package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/clipper-video/clipper/internal/api"
	"github.com/clipper-video/clipper/internal/jobcache"
	"github.com/clipper-video/clipper/utils/datetime"
)

// printer 按 text/json/yaml 输出命令结果
type printer struct {
	w      io.Writer
	format string
	now    func() time.Time
}

func newPrinter(w io.Writer, format string) *printer {
	if format == "" {
		format = "text"
	}
	return &printer{w: w, format: format, now: time.Now}
}

// print 结构化格式直接编码 v，text 格式调用 text
func (p *printer) print(v any, text func(w io.Writer)) error {
	switch p.format {
	case "json":
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		b, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = p.w.Write(b)
		return err
	default:
		text(p.w)
		return nil
	}
}

func (p *printer) message(msg string) error {
	return p.print(map[string]string{"message": msg}, func(w io.Writer) {
		fmt.Fprintln(w, msg)
	})
}

func (p *printer) ticket(t *api.JobTicket) error {
	return p.print(t, func(w io.Writer) {
		fmt.Fprintf(w, "job     %s\n", t.ID)
		fmt.Fprintf(w, "status  %s\n", t.Status)
		if t.CreatedAt != "" {
			fmt.Fprintf(w, "created %s\n", p.created(t.CreatedAt))
		}
	})
}

func (p *printer) detail(d *api.JobDetail) error {
	return p.print(d, func(w io.Writer) {
		fmt.Fprintf(w, "job     %s\n", d.ID)
		fmt.Fprintf(w, "status  %s\n", statusLine(d))
		if d.CreatedAt != "" {
			fmt.Fprintf(w, "created %s\n", p.created(d.CreatedAt))
		}
		if d.Error != "" {
			fmt.Fprintf(w, "error   %s\n", d.Error)
		}
		for _, r := range d.Results {
			fmt.Fprintf(w, "  %s  %s\n", r.Filename, r.URL)
		}
	})
}

// record 打印缓存中的任务，expires 为 false 表示无法判断过期时间
func (p *printer) record(rec *jobcache.Record, expiresAt time.Time, expires bool) error {
	return p.print(rec, func(w io.Writer) {
		fmt.Fprintf(w, "job     %s\n", rec.ID)
		fmt.Fprintf(w, "status  %s (%.0f%%)\n", rec.Status, rec.Progress)
		if rec.CreatedAt != "" {
			fmt.Fprintf(w, "created %s\n", p.created(rec.CreatedAt))
		}
		if expires {
			fmt.Fprintf(w, "expires in %s\n", datetime.DurationText(expiresAt.Sub(p.now())))
		}
	})
}

func (p *printer) progress(d *api.JobDetail) {
	if p.format != "text" {
		return
	}
	fmt.Fprintf(p.w, "%s %s\n", d.ID, statusLine(d))
}

func (p *printer) created(s string) string {
	t, err := datetime.Parse(s)
	if err != nil {
		return s
	}
	return datetime.FormatDateTime(t) + " (" + datetime.TimeAgo(t, p.now()) + ")"
}

func statusLine(d *api.JobDetail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %.0f%%", d.Status, d.Progress)
	if d.Message != "" {
		b.WriteString(" " + d.Message)
	}
	if d.CancelRequested && !d.Status.Terminal() {
		b.WriteString(" (cancel requested)")
	}
	return b.String()
}
