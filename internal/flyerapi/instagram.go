package flyerapi

import (
	"context"
	"fmt"
	"net/url"
	"time"
	"unicode/utf8"
)

// MaxCaptionLength is Instagram's caption limit in characters, enforced
// locally before any request is made.
const MaxCaptionLength = 2200

// SchedulePostRequest is a command to schedule a social post for a generated
// image.
type SchedulePostRequest struct {
	ImageID     string    `json:"image_id"`
	Caption     string    `json:"caption,omitempty"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

func (r SchedulePostRequest) validate(now time.Time) error {
	if r.ImageID == "" {
		return &ValidationError{Msg: "image id is required"}
	}
	if n := utf8.RuneCountInString(r.Caption); n > MaxCaptionLength {
		return &ValidationError{
			Msg: fmt.Sprintf("caption is %d characters; the limit is %d", n, MaxCaptionLength),
		}
	}
	if !r.ScheduledAt.After(now) {
		return &ValidationError{Msg: "scheduled time must be in the future"}
	}
	return nil
}

// SelectInstagramImages marks which generated images are candidates for
// Instagram posting.
func (c *Client) SelectInstagramImages(ctx context.Context, flyerID string, imageIDs []string) error {
	if len(imageIDs) == 0 {
		return &ValidationError{Msg: "at least one image id is required"}
	}
	resp, err := c.post(ctx, instagramPath(flyerID, "select-images"), map[string][]string{
		"image_ids": imageIDs,
	})
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil)
}

// ScheduleInstagramPost schedules a post. Caption length and the
// future-time requirement are validated locally first.
func (c *Client) ScheduleInstagramPost(ctx context.Context, flyerID string, req SchedulePostRequest) (ScheduledPost, error) {
	if err := req.validate(time.Now()); err != nil {
		return ScheduledPost{}, err
	}
	resp, err := c.post(ctx, instagramPath(flyerID, "schedule"), req)
	if err != nil {
		return ScheduledPost{}, err
	}
	var post ScheduledPost
	if err := decodeJSON(resp, &post); err != nil {
		return ScheduledPost{}, err
	}
	return post, nil
}

// ListScheduledInstagram returns the flyer's scheduled Instagram posts.
func (c *Client) ListScheduledInstagram(ctx context.Context, flyerID string) ([]ScheduledPost, error) {
	resp, err := c.get(ctx, instagramPath(flyerID, "scheduled"))
	if err != nil {
		return nil, err
	}
	var posts []ScheduledPost
	if err := decodeJSON(resp, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// CancelScheduledInstagram removes a scheduled post by image id.
func (c *Client) CancelScheduledInstagram(ctx context.Context, flyerID, imageID string) error {
	resp, err := c.delete(ctx, instagramPath(flyerID, "scheduled")+"/"+url.PathEscape(imageID))
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil)
}

func instagramPath(flyerID, rest string) string {
	return "/flyers/" + url.PathEscape(flyerID) + "/instagram/" + rest
}
