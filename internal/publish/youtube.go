package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// YouTubePublisher uploads the finished ad to a YouTube channel using a
// pre-authorized OAuth token (see generate_token).
type YouTubePublisher struct {
	credentialsPath string
	tokenPath       string
}

func NewYouTubePublisher(credentialsPath, tokenPath string) *YouTubePublisher {
	return &YouTubePublisher{
		credentialsPath: credentialsPath,
		tokenPath:       tokenPath,
	}
}

func (y *YouTubePublisher) Platform() string {
	return "youtube"
}

func (y *YouTubePublisher) Publish(ctx context.Context, req *Request) (*Result, error) {
	service, err := y.authenticate(ctx)
	if err != nil {
		return &Result{
			Success:  false,
			Platform: "youtube",
			Error:    fmt.Sprintf("authentication failed: %v", err),
		}, err
	}

	videoFile, err := os.Open(req.VideoPath)
	if err != nil {
		return &Result{
			Success:  false,
			Platform: "youtube",
			Error:    fmt.Sprintf("failed to open video file: %v", err),
		}, err
	}
	defer videoFile.Close()

	privacy := req.Privacy
	if privacy == "" {
		privacy = "unlisted"
	}
	tags := req.Tags
	if len(tags) == 0 {
		tags = []string{"ad", "commercial"}
	}

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       req.Title,
			Description: req.Description,
			Tags:        tags,
			CategoryId:  "24", // Entertainment
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           privacy,
			SelfDeclaredMadeForKids: false,
		},
	}

	call := service.Videos.Insert([]string{"snippet", "status"}, video)
	uploaded, err := call.Media(videoFile).Do()
	if err != nil {
		return &Result{
			Success:  false,
			Platform: "youtube",
			Error:    fmt.Sprintf("upload failed: %v", err),
		}, err
	}

	return &Result{
		Success:  true,
		Platform: "youtube",
		URL:      "https://youtu.be/" + uploaded.Id,
		Details: map[string]string{
			"title":   req.Title,
			"privacy": privacy,
		},
	}, nil
}

func (y *YouTubePublisher) authenticate(ctx context.Context) (*youtube.Service, error) {
	credBytes, err := os.ReadFile(y.credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %v", err)
	}

	config, err := google.ConfigFromJSON(credBytes, youtube.YoutubeUploadScope, youtube.YoutubeScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials file: %v", err)
	}

	token, err := y.loadToken()
	if err != nil || token == nil || !token.Valid() {
		return nil, fmt.Errorf("token not found or expired, run generate_token first")
	}

	client := config.Client(ctx, token)
	service, err := youtube.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create YouTube service: %v", err)
	}
	return service, nil
}

func (y *YouTubePublisher) loadToken() (*oauth2.Token, error) {
	f, err := os.Open(y.tokenPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	token := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(token)
	return token, err
}
