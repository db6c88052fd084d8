package flyerapi

import (
	"context"
	"net/url"
	"time"
)

// WordPressPostRequest is a command to schedule or immediately publish a
// WordPress post for a generated image. Content is an HTML fragment.
type WordPressPostRequest struct {
	ImageID     string    `json:"image_id"`
	Title       string    `json:"title"`
	Content     string    `json:"content,omitempty"`
	ScheduledAt time.Time `json:"scheduled_at,omitempty"`
}

func (r WordPressPostRequest) validate(now time.Time, scheduled bool) error {
	if r.ImageID == "" {
		return &ValidationError{Msg: "image id is required"}
	}
	if r.Title == "" {
		return &ValidationError{Msg: "post title is required"}
	}
	if scheduled && !r.ScheduledAt.After(now) {
		return &ValidationError{Msg: "scheduled time must be in the future"}
	}
	return nil
}

// ScheduleWordPressPost schedules a post for future publication.
func (c *Client) ScheduleWordPressPost(ctx context.Context, flyerID string, req WordPressPostRequest) (ScheduledPost, error) {
	if err := req.validate(time.Now(), true); err != nil {
		return ScheduledPost{}, err
	}
	return c.submitWordPress(ctx, flyerID, "schedule", req)
}

// PostWordPressNow publishes immediately; ScheduledAt is ignored.
func (c *Client) PostWordPressNow(ctx context.Context, flyerID string, req WordPressPostRequest) (ScheduledPost, error) {
	if err := req.validate(time.Now(), false); err != nil {
		return ScheduledPost{}, err
	}
	req.ScheduledAt = time.Time{}
	return c.submitWordPress(ctx, flyerID, "post-now", req)
}

func (c *Client) submitWordPress(ctx context.Context, flyerID, action string, req WordPressPostRequest) (ScheduledPost, error) {
	resp, err := c.post(ctx, wordpressPath(flyerID, action), req)
	if err != nil {
		return ScheduledPost{}, err
	}
	var post ScheduledPost
	if err := decodeJSON(resp, &post); err != nil {
		return ScheduledPost{}, err
	}
	return post, nil
}

// ListScheduledWordPress returns the flyer's scheduled WordPress posts.
func (c *Client) ListScheduledWordPress(ctx context.Context, flyerID string) ([]ScheduledPost, error) {
	resp, err := c.get(ctx, wordpressPath(flyerID, "scheduled"))
	if err != nil {
		return nil, err
	}
	var posts []ScheduledPost
	if err := decodeJSON(resp, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// CancelScheduledWordPress removes a scheduled post by image id.
func (c *Client) CancelScheduledWordPress(ctx context.Context, flyerID, imageID string) error {
	resp, err := c.delete(ctx, wordpressPath(flyerID, "scheduled")+"/"+url.PathEscape(imageID))
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil)
}

func wordpressPath(flyerID, rest string) string {
	return "/flyers/" + url.PathEscape(flyerID) + "/wordpress/" + rest
}
