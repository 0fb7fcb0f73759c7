// Package publish distributes the finished ad video to the configured
// destinations. Every destination is optional and failures never abort
// the pipeline.
package publish

import "context"

// Request describes one finished video to distribute.
type Request struct {
	VideoPath   string
	Title       string
	Description string
	Caption     string
	Tags        []string
	Privacy     string // public, unlisted, private
}

// Result is the outcome of one destination.
type Result struct {
	Success  bool              `json:"success"`
	Platform string            `json:"platform"`
	URL      string            `json:"url,omitempty"`
	Error    string            `json:"error,omitempty"`
	Details  map[string]string `json:"details,omitempty"`
}

// Publisher sends a finished video to one destination.
type Publisher interface {
	Publish(ctx context.Context, req *Request) (*Result, error)
	Platform() string
}
