package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipper-video/clipper/pkg/request"
)

const testJobID = "3f1c2a9e-7b4d-4e0a-9c51-2d6f8e0b1a77"

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(request.New(request.WithBaseURL(srv.URL + "/api")))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func intPtr(v int) *int { return &v }

func TestNew_DefaultBaseURL(t *testing.T) {
	c := New(request.New())
	assert.Equal(t, DefaultBaseURL, c.BaseURL())

	c = New(request.New(request.WithBaseURL("http://backend:9000/api/")))
	assert.Equal(t, "http://backend:9000/api", c.BaseURL())
	assert.Equal(t, "http://backend:9000/api/jobs/"+testJobID+"/download-zip/", c.Jobs.DownloadZipURL(testJobID))
}

func TestParseJobID(t *testing.T) {
	id, err := ParseJobID(strings.ToUpper(testJobID))
	require.NoError(t, err)
	assert.Equal(t, testJobID, id)

	_, err = ParseJobID("42")
	assert.ErrorIs(t, err, ErrInvalidJobID)
}

func TestJobs_Create(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/jobs/", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "https://youtu.be/abc", body["youtube_url"])
		assert.Equal(t, "auto", body["mode"])
		assert.EqualValues(t, 5, body["interval_minutes"])

		writeJSON(w, http.StatusCreated, map[string]any{
			"id":           testJobID,
			"status":       "queued",
			"progress":     0,
			"message":      "",
			"created_at":   "2024-06-01T12:00:00Z",
			"access_token": "tok",
		})
	})

	ticket, err := c.Jobs.Create(context.Background(), JobCreateRequest{
		YouTubeURL: "https://youtu.be/abc",
		JobOptions: JobOptions{Mode: ModeAuto, IntervalMinutes: intPtr(5)},
	})
	require.NoError(t, err)
	assert.Equal(t, testJobID, ticket.ID)
	assert.Equal(t, StatusQueued, ticket.Status)
	assert.Equal(t, "tok", ticket.AccessToken)
}

func TestJobs_Create_ActiveJobLimit(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusTooManyRequests, map[string]any{
			"detail":          "Too many active jobs. " + strings.Repeat("x", 600),
			"active_jobs":     2,
			"max_active_jobs": 2,
			"active_job_details": []map[string]any{
				{"id": testJobID, "status": "running", "progress": 40},
			},
		})
	})

	_, err := c.Jobs.Create(context.Background(), JobCreateRequest{YouTubeURL: "https://youtu.be/abc"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrActiveJobLimit)

	var limit *ActiveJobLimitError
	require.ErrorAs(t, err, &limit)
	assert.Equal(t, 2, limit.ActiveJobs)
	assert.Equal(t, 2, limit.MaxActiveJobs)
	require.Len(t, limit.ActiveJobDetails, 1)
	assert.Equal(t, StatusRunning, limit.ActiveJobDetails[0].Status)
}

func TestJobs_Create_RateLimitWithoutDetails(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusTooManyRequests, map[string]any{"detail": "throttled"})
	})

	_, err := c.Jobs.Create(context.Background(), JobCreateRequest{YouTubeURL: "https://youtu.be/abc"})
	assert.False(t, errors.Is(err, ErrActiveJobLimit))
	assert.True(t, request.IsStatus(err, http.StatusTooManyRequests))
}

func TestJobs_Get(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/jobs/"+testJobID+"/", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"id":               testJobID,
			"status":           "done",
			"progress":         100,
			"cancel_requested": false,
			"created_at":       "2024-06-01T12:00:00Z",
			"results":          []map[string]string{{"filename": "clip_001.mp4", "url": "/media/clip_001.mp4"}},
		})
	})

	detail, err := c.Jobs.Get(context.Background(), testJobID)
	require.NoError(t, err)
	assert.True(t, detail.Status.Terminal())
	require.Len(t, detail.Results, 1)
	assert.Equal(t, "clip_001.mp4", detail.Results[0].Filename)
}

func TestJobs_Get_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
	})

	_, err := c.Jobs.Get(context.Background(), testJobID)
	assert.True(t, IsNotFound(err))
}

func TestJobs_InvalidIDSkipsRequest(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := c.Jobs.Get(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrInvalidJobID)
	_, err = c.Jobs.Cancel(context.Background(), "not-a-uuid", "tok")
	assert.ErrorIs(t, err, ErrInvalidJobID)
	_, err = c.Jobs.DownloadZip(context.Background(), "not-a-uuid", io.Discard)
	assert.ErrorIs(t, err, ErrInvalidJobID)
	assert.False(t, called)
}

func TestJobs_Cancel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/jobs/"+testJobID+"/cancel/", r.URL.Path)
		if r.Header.Get(JobTokenHeader) != "tok" {
			writeJSON(w, http.StatusForbidden, map[string]string{"detail": "Invalid job token."})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": testJobID, "status": "canceled", "cancel_requested": true})
	})

	detail, err := c.Jobs.Cancel(context.Background(), testJobID, "tok")
	require.NoError(t, err)
	assert.Equal(t, StatusCanceled, detail.Status)
	assert.True(t, detail.CancelRequested)

	_, err = c.Jobs.Cancel(context.Background(), testJobID, "wrong")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.True(t, request.IsStatus(err, http.StatusForbidden))

	_, err = c.Jobs.Cancel(context.Background(), testJobID, "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJobs_Upload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/jobs/upload/", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "manual", r.FormValue("mode"))
		assert.Equal(t, `[{"start":"0:00:10","end":"0:01:00"}]`, r.FormValue("ranges"))
		assert.Equal(t, `["id","en"]`, r.FormValue("subtitle_langs"))
		assert.Equal(t, "true", r.FormValue("burn_subtitles"))
		assert.Equal(t, "portrait", r.FormValue("orientation"))
		assert.Empty(t, r.FormValue("interval_minutes"))

		file, header, err := r.FormFile("video_file")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "talk.mp4", header.Filename)
		assert.Equal(t, "video-bytes", string(data))

		writeJSON(w, http.StatusCreated, map[string]any{"id": testJobID, "status": "queued", "access_token": "tok"})
	})

	in := LocalJobUpload{
		FileName: "talk.mp4",
		JobOptions: JobOptions{
			Mode:          ModeManual,
			Ranges:        []TimeRange{{Start: "0:00:10", End: "0:01:00"}},
			BurnSubtitles: true,
			Orientation:   OrientationPortrait,
		},
	}
	in.Normalize()
	require.NoError(t, in.Validate())

	ticket, err := c.Jobs.Upload(context.Background(), in, strings.NewReader("video-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "tok", ticket.AccessToken)
}

func TestJobs_DownloadZip(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/jobs/"+testJobID+"/download-zip/", r.URL.Path)
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write([]byte("PK\x03\x04zip"))
	})

	var buf bytes.Buffer
	n, err := c.Jobs.DownloadZip(context.Background(), testJobID, &buf)
	require.NoError(t, err)
	assert.EqualValues(t, 7, n)
	assert.Equal(t, "PK\x03\x04zip", buf.String())
}

func TestJobs_Words(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/subs/"+testJobID+"/words.json", r.URL.Path)
		assert.Equal(t, "tok", r.Header.Get(JobTokenHeader))
		writeJSON(w, http.StatusOK, map[string]any{
			"1": []map[string]any{{"word": "halo", "start": 0.1, "end": 0.4}},
		})
	})

	words, err := c.Jobs.Words(context.Background(), testJobID, "tok")
	require.NoError(t, err)
	require.Contains(t, words, "1")
	assert.JSONEq(t, `[{"word":"halo","start":0.1,"end":0.4}]`, string(words["1"]))
}

func TestJobs_ClipWords(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tok", r.Header.Get(JobTokenHeader))
		switch r.URL.Path {
		case "/api/subs/" + testJobID + "/3/words.json":
			writeJSON(w, http.StatusOK, []map[string]any{{"word": "halo", "start": 0.1, "end": 0.4}})
		case "/api/subs/" + testJobID + "/4/words.json":
			writeJSON(w, http.StatusOK, []any{})
		default:
			writeJSON(w, http.StatusNotFound, map[string]any{})
		}
	})
	ctx := context.Background()

	words, err := c.Jobs.ClipWords(ctx, testJobID, 3, "tok")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"word":"halo","start":0.1,"end":0.4}]`, string(words))

	words, err = c.Jobs.ClipWords(ctx, testJobID, 4, "tok")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(words))

	_, err = c.Jobs.ClipWords(ctx, testJobID, -1, "tok")
	assert.ErrorIs(t, err, ErrInvalidRequest)
	_, err = c.Jobs.ClipWords(ctx, "17", 1, "tok")
	assert.ErrorIs(t, err, ErrInvalidJobID)
}

func TestJobCreateRequest_Validate(t *testing.T) {
	valid := func() JobCreateRequest {
		return JobCreateRequest{
			YouTubeURL: "https://www.youtube.com/watch?v=abc",
			JobOptions: JobOptions{Mode: ModeAuto, IntervalMinutes: intPtr(10)},
		}
	}

	tests := []struct {
		name   string
		mutate func(r *JobCreateRequest)
		field  string
	}{
		{"valid auto", func(r *JobCreateRequest) {}, ""},
		{"short link", func(r *JobCreateRequest) { r.YouTubeURL = "youtu.be/abc" }, ""},
		{"local source", func(r *JobCreateRequest) { r.SourceType = SourceLocal }, "source_type"},
		{"unknown source", func(r *JobCreateRequest) { r.SourceType = "vimeo" }, "source_type"},
		{"missing url", func(r *JobCreateRequest) { r.YouTubeURL = "" }, "youtube_url"},
		{"foreign url", func(r *JobCreateRequest) { r.YouTubeURL = "https://vimeo.com/1" }, "youtube_url"},
		{"bad mode", func(r *JobCreateRequest) { r.Mode = "smart" }, "mode"},
		{"auto without interval", func(r *JobCreateRequest) { r.IntervalMinutes = nil }, "interval_minutes"},
		{"auto zero interval", func(r *JobCreateRequest) { r.IntervalMinutes = intPtr(0) }, "interval_minutes"},
		{"manual without ranges", func(r *JobCreateRequest) { r.Mode = ModeManual }, "ranges"},
		{"manual bad timestamp", func(r *JobCreateRequest) {
			r.Mode = ModeManual
			r.Ranges = []TimeRange{{Start: "10", End: "0:01:00"}}
		}, "ranges"},
		{"manual valid", func(r *JobCreateRequest) {
			r.Mode = ModeManual
			r.Ranges = []TimeRange{{Start: "0:00:00.5", End: "01:02:03"}}
		}, ""},
		{"too many ranges", func(r *JobCreateRequest) {
			r.Mode = ModeManual
			r.Ranges = make([]TimeRange, MaxRanges+1)
			for i := range r.Ranges {
				r.Ranges[i] = TimeRange{Start: "0:00:00", End: "0:00:10"}
			}
		}, "ranges"},
		{"bad fallback", func(r *JobCreateRequest) { r.MinHeightFallback = 360 }, "min_height_fallback"},
		{"fallback ignored when strict", func(r *JobCreateRequest) {
			r.Strict1080 = true
			r.MinHeightFallback = 360
		}, ""},
		{"negative max clips", func(r *JobCreateRequest) { r.MaxClips = intPtr(-1) }, "max_clips"},
		{"max clips over cap", func(r *JobCreateRequest) { r.MaxClips = intPtr(MaxClipsCap + 1) }, "max_clips"},
		{"bad caption lang", func(r *JobCreateRequest) {
			r.AutoCaptions = true
			r.AutoCaptionLang = "fr"
		}, "auto_caption_lang"},
		{"bad whisper model", func(r *JobCreateRequest) { r.WhisperModel = "large" }, "whisper_model"},
		{"bad orientation", func(r *JobCreateRequest) { r.Orientation = "square" }, "orientation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid()
			tt.mutate(&r)
			err := r.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidRequest)
			var fe *FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.field, fe.Field)
		})
	}
}

func TestLocalJobUpload_Validate(t *testing.T) {
	u := LocalJobUpload{JobOptions: JobOptions{Mode: ModeAuto, IntervalMinutes: intPtr(3)}}
	var fe *FieldError
	require.ErrorAs(t, u.Validate(), &fe)
	assert.Equal(t, "video_file", fe.Field)

	u.FileName = "a.mp4"
	assert.NoError(t, u.Validate())

	u.AutoCaptionLang = "de"
	require.ErrorAs(t, u.Validate(), &fe)
	assert.Equal(t, "auto_caption_lang", fe.Field)
}

func TestNormalize(t *testing.T) {
	o := JobOptions{AutoCaptions: true}
	o.Normalize()
	assert.Equal(t, []string{"id", "en"}, o.SubtitleLangs)

	o.SubtitleLangs[0] = "jv"
	assert.Equal(t, "id", DefaultSubtitleLangs[0])

	plain := JobOptions{}
	plain.Normalize()
	assert.Nil(t, plain.SubtitleLangs)

	given := JobOptions{BurnSubtitles: true, SubtitleLangs: []string{"en"}}
	given.Normalize()
	assert.Equal(t, []string{"en"}, given.SubtitleLangs)
}

func TestJobStatus(t *testing.T) {
	for _, s := range []JobStatus{StatusDone, StatusFailed, StatusCanceled} {
		assert.True(t, s.Terminal(), s)
		assert.False(t, s.Active(), s)
	}
	for _, s := range []JobStatus{StatusQueued, StatusRunning} {
		assert.False(t, s.Terminal(), s)
		assert.True(t, s.Active(), s)
	}
}

func TestVideos(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/videos/":
			assert.Equal(t, "cats", r.URL.Query().Get("search"))
			assert.Equal(t, "-created_at", r.URL.Query().Get("ordering"))
			assert.False(t, r.URL.Query().Has("video_id"))
			writeJSON(w, http.StatusOK, []map[string]any{{"id": 1, "title": "Cats", "clips_count": 2}})
		case r.Method == http.MethodGet && r.URL.Path == "/api/videos/1/":
			writeJSON(w, http.StatusOK, map[string]any{"id": 1, "title": "Cats", "clips": []map[string]any{{"id": 7}}})
		case r.Method == http.MethodPost && (r.URL.Path == "/api/videos/" || r.URL.Path == "/api/videos/upload/"):
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "Dogs", r.FormValue("title"))
			assert.Equal(t, "12.5", r.FormValue("duration"))
			_, header, err := r.FormFile("video_file")
			require.NoError(t, err)
			assert.Equal(t, "dogs.mp4", header.Filename)
			writeJSON(w, http.StatusCreated, map[string]any{"id": 2, "title": "Dogs", "duration": 12.5})
		case r.Method == http.MethodPut && r.URL.Path == "/api/videos/2/":
			var body VideoUpdate
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			writeJSON(w, http.StatusOK, map[string]any{"id": 2, "title": body.Title})
		case r.Method == http.MethodDelete && r.URL.Path == "/api/videos/2/":
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodGet && r.URL.Path == "/api/videos/1/clips/":
			writeJSON(w, http.StatusOK, []map[string]any{{"id": 7, "video": 1}})
		default:
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		}
	})
	ctx := context.Background()

	list, err := c.Videos.List(ctx, ListParams{Search: "cats", Ordering: "-created_at"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].ClipsCount)

	v, err := c.Videos.Get(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, v.Clips, 1)

	in := VideoInput{Title: "Dogs", Duration: 12.5, FileName: "dogs.mp4"}
	created, err := c.Videos.Create(ctx, in, strings.NewReader("data"))
	require.NoError(t, err)
	assert.Equal(t, 2, created.ID)
	_, err = c.Videos.Upload(ctx, in, strings.NewReader("data"))
	require.NoError(t, err)

	updated, err := c.Videos.Update(ctx, 2, VideoUpdate{Title: "Dogs 2"})
	require.NoError(t, err)
	assert.Equal(t, "Dogs 2", updated.Title)

	require.NoError(t, c.Videos.Delete(ctx, 2))

	clips, err := c.Videos.Clips(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, clips[0].Video)

	_, err = c.Videos.Get(ctx, 99)
	assert.True(t, IsNotFound(err))
}

func TestClips(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/clips/":
			assert.Equal(t, "3", r.URL.Query().Get("video_id"))
			writeJSON(w, http.StatusOK, []map[string]any{{"id": 1, "video": 3}})
		case r.Method == http.MethodGet && r.URL.Path == "/api/clips/1/":
			writeJSON(w, http.StatusOK, map[string]any{"id": 1, "start_time": 1.5, "end_time": 4})
		case r.Method == http.MethodPost && r.URL.Path == "/api/clips/":
			var body ClipInput
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			writeJSON(w, http.StatusCreated, map[string]any{"id": 2, "title": body.Title, "video": body.Video})
		case r.Method == http.MethodPut && r.URL.Path == "/api/clips/2/":
			writeJSON(w, http.StatusOK, map[string]any{"id": 2, "title": "renamed"})
		case r.Method == http.MethodDelete && r.URL.Path == "/api/clips/2/":
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodPost && r.URL.Path == "/api/clips/2/toggle_public/":
			writeJSON(w, http.StatusOK, map[string]any{"id": 2, "is_public": true})
		case r.Method == http.MethodGet && r.URL.Path == "/api/clips/my_clips/":
			writeJSON(w, http.StatusOK, []map[string]any{{"id": 2}})
		case r.Method == http.MethodGet && r.URL.Path == "/api/clips/public_clips/":
			writeJSON(w, http.StatusOK, []map[string]any{{"id": 2, "is_public": true}, {"id": 5, "is_public": true}})
		default:
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		}
	})
	ctx := context.Background()

	list, err := c.Clips.List(ctx, ListParams{VideoID: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, list[0].Video)

	clip, err := c.Clips.Get(ctx, 1)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, clip.EndTime-clip.StartTime, 1e-9)

	created, err := c.Clips.Create(ctx, ClipInput{Title: "intro", Video: 3, StartTime: 0, EndTime: 5})
	require.NoError(t, err)
	assert.Equal(t, "intro", created.Title)

	updated, err := c.Clips.Update(ctx, 2, ClipInput{Title: "renamed"})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)

	toggled, err := c.Clips.TogglePublic(ctx, 2)
	require.NoError(t, err)
	assert.True(t, toggled.IsPublic)

	mine, err := c.Clips.Mine(ctx)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	public, err := c.Clips.Public(ctx)
	require.NoError(t, err)
	assert.Len(t, public, 2)

	require.NoError(t, c.Clips.Delete(ctx, 2))
}
