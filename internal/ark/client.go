package ark

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"ad-video-gen/internal"
	"ad-video-gen/internal/logging"
)

// Client is a thin HTTP wrapper over the BytePlus Ark v3 endpoints used by
// the pipeline: synchronous image generation/editing and asynchronous
// image-to-video tasks.
type Client struct {
	apiKey  string
	baseURL string
	httpc   *http.Client
	log     *logging.Logger
}

func New(cfg internal.Config, log *logging.Logger) *Client {
	return &Client{
		apiKey:  cfg.ArkAPIKey,
		baseURL: cfg.ArkBaseURL,
		httpc:   &http.Client{Timeout: 120 * time.Second},
		log:     log,
	}
}

// ImageRequest describes one images/generations call.
type ImageRequest struct {
	Model  string
	Prompt string
	Size   string
	// Image is an optional input image to edit (seededit models).
	Image []byte
	// Reference is an optional style/character reference image.
	Reference []byte
}

// TaskStatus is one poll result for a video generation task.
type TaskStatus struct {
	ID       string
	Status   string
	VideoURL string
	ErrorMsg string
}

func dataURL(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}

// GenerateImage runs a synchronous image generation (or edit) and returns
// the downloaded image bytes.
func (c *Client) GenerateImage(ctx context.Context, req ImageRequest) ([]byte, error) {
	payload := map[string]any{
		"model":                       req.Model,
		"prompt":                      req.Prompt,
		"sequential_image_generation": "disabled",
		"response_format":             "url",
		"size":                        req.Size,
		"stream":                      false,
		"watermark":                   false,
	}
	if req.Image != nil {
		payload["image"] = dataURL(req.Image)
	}
	if req.Reference != nil {
		if req.Image != nil {
			payload["reference_image"] = dataURL(req.Reference)
		} else {
			payload["image"] = dataURL(req.Reference)
		}
	}

	body, err := c.postJSON(ctx, c.baseURL+"/images/generations", payload)
	if err != nil {
		return nil, err
	}

	imageURL := gjson.GetBytes(body, "data.0.url").String()
	if imageURL == "" {
		return nil, fmt.Errorf("ark: no image url in response")
	}
	return c.Download(ctx, imageURL)
}

// CreateVideoTask submits an image-to-video task and returns the task ID.
// The text prompt carries the seedance parameter switches appended by the
// caller (--duration, --ratio, --resolution, --fps, --watermark).
func (c *Client) CreateVideoTask(ctx context.Context, videoModel string, firstFrame []byte, text string) (string, error) {
	payload := map[string]any{
		"model": videoModel,
		"content": []map[string]any{
			{
				"type":      "image_url",
				"image_url": map[string]string{"url": dataURL(firstFrame)},
				"role":      "first_frame",
			},
			{
				"type": "text",
				"text": text,
			},
		},
	}

	body, err := c.postJSON(ctx, c.baseURL+"/contents/generations/tasks", payload)
	if err != nil {
		return "", err
	}

	taskID := gjson.GetBytes(body, "id").String()
	if taskID == "" {
		return "", fmt.Errorf("ark: no task id returned")
	}
	return taskID, nil
}

// QueryVideoTask fetches the current status of a video task.
func (c *Client) QueryVideoTask(ctx context.Context, taskID string) (TaskStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/contents/generations/tasks/"+taskID, nil)
	if err != nil {
		return TaskStatus{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return TaskStatus{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return TaskStatus{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return TaskStatus{}, fmt.Errorf("ark: status query http %d: %s", resp.StatusCode, truncate(body, 200))
	}

	return TaskStatus{
		ID:       taskID,
		Status:   gjson.GetBytes(body, "status").String(),
		VideoURL: gjson.GetBytes(body, "content.video_url").String(),
		ErrorMsg: gjson.GetBytes(body, "error.message").String(),
	}, nil
}

// WaitForVideo polls a video task until it succeeds, fails, or the attempt
// budget runs out, then downloads the result.
func (c *Client) WaitForVideo(ctx context.Context, taskID string, interval time.Duration, attempts int) ([]byte, error) {
	for attempt := 1; attempt <= attempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}

		st, err := c.QueryVideoTask(ctx, taskID)
		if err != nil {
			c.log.Warnf("ark: status query failed (attempt %d/%d): %v", attempt, attempts, err)
			continue
		}
		c.log.Infof("ark: task %s status=%s (attempt %d/%d)", taskID, st.Status, attempt, attempts)

		switch st.Status {
		case "succeeded":
			if st.VideoURL == "" {
				return nil, fmt.Errorf("ark: no video url in successful response")
			}
			return c.Download(ctx, st.VideoURL)
		case "failed":
			msg := st.ErrorMsg
			if msg == "" {
				msg = "unknown error"
			}
			return nil, fmt.Errorf("ark: task failed: %s", msg)
		case "queued", "running", "":
			continue
		default:
			c.log.Warnf("ark: unknown task status %q", st.Status)
		}
	}
	return nil, fmt.Errorf("ark: task %s timed out after %d attempts", taskID, attempts)
}

// Download fetches a generated asset by URL.
func (c *Client) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ark: download http %d for %s", resp.StatusCode, url)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) postJSON(ctx context.Context, url string, payload any) ([]byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ark: http %d: %s", resp.StatusCode, truncate(body, 200))
	}
	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n])
	}
	return string(b)
}
