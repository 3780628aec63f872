// Package datetime 解析后端返回的时间字符串并生成展示文本
package datetime

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DateFormat     = "2006-01-02"
	DateTimeFormat = "2006-01-02 15:04:05"
)

// ErrUnrecognized 无法识别的时间格式
var ErrUnrecognized = errors.New("unrecognized time format")

// isoLayouts 秒后的小数部分由 time.Parse 自动接受
var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	DateFormat,
}

// looseLayouts 浏览器 Date 能识别的其他常见写法
var looseLayouts = []string{
	time.RFC1123,
	time.RFC1123Z,
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2006/1/2 15:04:05",
	"2006/1/2 15:04",
	"2006/1/2",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

func parseIn(s string, layouts ...[]string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s != "" {
		for _, set := range layouts {
			for _, layout := range set {
				if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
					return t, nil
				}
			}
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnrecognized, s)
}

// ParseISO 解析 ISO-8601，不带时区的按 UTC
func ParseISO(s string) (time.Time, error) {
	return parseIn(s, isoLayouts)
}

// Parse 先按 ISO-8601，再按 looseLayouts 解析
func Parse(s string) (time.Time, error) {
	return parseIn(s, isoLayouts, looseLayouts)
}

// FormatDateTime 本地无关的日期时间文本
func FormatDateTime(t time.Time) string {
	return t.Format(DateTimeFormat)
}

// TimeAgo t 相对 now 的描述，如 "3 minutes ago"、"yesterday"
// 未来时间返回完整日期时间，一周以前返回日期
func TimeAgo(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < 0:
		return FormatDateTime(t)
	case d < 5*time.Second:
		return "just now"
	case d < time.Minute:
		return fmt.Sprintf("%d seconds ago", int(d/time.Second))
	case d < time.Hour:
		return ago(int(d/time.Minute), "minute")
	case d < 24*time.Hour:
		return ago(int(d/time.Hour), "hour")
	case d < 48*time.Hour:
		return "yesterday"
	case d < 7*24*time.Hour:
		return ago(int(d/(24*time.Hour)), "day")
	}
	return t.Format(DateFormat)
}

func ago(n int, unit string) string {
	if n == 1 {
		return "1 " + unit + " ago"
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

var durationUnits = []struct {
	d      time.Duration
	suffix string
}{
	{24 * time.Hour, "d"},
	{time.Hour, "h"},
	{time.Minute, "m"},
	{time.Second, "s"},
}

// DurationText 如 "2h 30m 45s"，取绝对值，省略为 0 的单位
func DurationText(d time.Duration) string {
	d = d.Abs().Truncate(time.Second)
	var parts []string
	for _, u := range durationUnits {
		if n := d / u.d; n > 0 {
			parts = append(parts, fmt.Sprintf("%d%s", n, u.suffix))
			d -= n * u.d
		}
	}
	if len(parts) == 0 {
		return "0s"
	}
	return strings.Join(parts, " ")
}
