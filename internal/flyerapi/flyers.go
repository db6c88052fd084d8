package flyerapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"os"
	"path/filepath"
)

const maxUploadSize = 20 << 20 // matches the backend's flyer upload cap

// ListFlyers returns all flyers with their extraction status.
func (c *Client) ListFlyers(ctx context.Context) ([]Flyer, error) {
	resp, err := c.get(ctx, "/flyers")
	if err != nil {
		return nil, err
	}
	var flyers []Flyer
	if err := decodeJSON(resp, &flyers); err != nil {
		return nil, err
	}
	return flyers, nil
}

// GetFlyer returns the flyer detail, including extraction fields, confidence
// levels, and generated images.
func (c *Client) GetFlyer(ctx context.Context, id string) (Flyer, error) {
	resp, err := c.get(ctx, "/flyers/"+url.PathEscape(id))
	if err != nil {
		return Flyer{}, err
	}
	var f Flyer
	if err := decodeJSON(resp, &f); err != nil {
		return Flyer{}, err
	}
	return f, nil
}

// UpdateExtraction submits operator corrections as a partial update. Only the
// fields present in the map are touched; the server returns the updated
// flyer.
func (c *Client) UpdateExtraction(ctx context.Context, id string, fields map[string]string) (Flyer, error) {
	if len(fields) == 0 {
		return Flyer{}, &ValidationError{Msg: "no fields to update"}
	}
	for key := range fields {
		if !validFieldKey(key) {
			return Flyer{}, &ValidationError{Msg: fmt.Sprintf("unknown extraction field %q", key)}
		}
	}

	resp, err := c.patch(ctx, "/flyers/"+url.PathEscape(id)+"/extraction", fields)
	if err != nil {
		return Flyer{}, err
	}
	var f Flyer
	if err := decodeJSON(resp, &f); err != nil {
		return Flyer{}, err
	}
	return f, nil
}

func validFieldKey(key string) bool {
	for _, k := range FieldKeys() {
		if k == key {
			return true
		}
	}
	return false
}

// GenerateImages asks the backend to start asynchronous image generation.
// The caller must poll GetFlyer until generated images appear.
func (c *Client) GenerateImages(ctx context.Context, id string) error {
	resp, err := c.post(ctx, "/flyers/"+url.PathEscape(id)+"/generate-images", nil)
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil)
}

// UploadFlyer uploads a flyer file (image or PDF) as multipart form data and
// returns the created flyer, whose extraction runs asynchronously.
func (c *Client) UploadFlyer(ctx context.Context, path, title string) (Flyer, error) {
	f, err := os.Open(path)
	if err != nil {
		return Flyer{}, fmt.Errorf("opening flyer file: %w", err)
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil && info.Size() > maxUploadSize {
		return Flyer{}, &ValidationError{
			Msg: fmt.Sprintf("flyer file is %d bytes; the upload limit is %d", info.Size(), maxUploadSize),
		}
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return Flyer{}, fmt.Errorf("building upload form: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return Flyer{}, fmt.Errorf("reading flyer file: %w", err)
	}
	if title != "" {
		if err := mw.WriteField("title", title); err != nil {
			return Flyer{}, fmt.Errorf("building upload form: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return Flyer{}, fmt.Errorf("building upload form: %w", err)
	}

	req, err := newRequest(ctx, c, "POST", "/flyers", &buf)
	if err != nil {
		return Flyer{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Flyer{}, fmt.Errorf("dashboard API not reachable at %s (%w)", c.baseURL, err)
	}
	var created Flyer
	if err := decodeJSON(resp, &created); err != nil {
		return Flyer{}, err
	}
	return created, nil
}
