package dify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/fwojciec/murmur"
)

// SendFeedback rates an assistant message. It reports failure as false
// after logging; it never returns an error.
func (c *Client) SendFeedback(ctx context.Context, fb murmur.Feedback) bool {
	if fb.MessageID == "" {
		c.logger.Warn("feedback without message id")
		return false
	}
	body := feedbackRequest{User: fb.User, Content: fb.Content}
	if fb.Rating != murmur.RatingNone {
		r := string(fb.Rating)
		body.Rating = &r
	}
	data, err := json.Marshal(body)
	if err != nil {
		c.logger.Error("feedback failed", "message_id", fb.MessageID, "error", err)
		return false
	}

	path := "/v1/messages/" + url.PathEscape(fb.MessageID) + "/feedbacks"
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(data))
	if err != nil {
		c.logger.Error("feedback failed", "message_id", fb.MessageID, "error", err)
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("feedback failed", "message_id", fb.MessageID,
			"error", fmt.Errorf("%w: %w", murmur.ErrTransport, err))
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("feedback failed", "message_id", fb.MessageID, "error", parseHTTPError(resp))
		return false
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return true
}

// Parameters returns the options of the app's first select input. Any
// failure yields an empty result.
func (c *Client) Parameters(ctx context.Context) murmur.Parameters {
	req, err := c.newRequest(ctx, http.MethodGet, parametersPath, nil)
	if err != nil {
		c.logger.Error("fetching parameters failed", "error", err)
		return murmur.Parameters{}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("fetching parameters failed",
			"error", fmt.Errorf("%w: %w", murmur.ErrTransport, err))
		return murmur.Parameters{}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("fetching parameters failed", "error", parseHTTPError(resp))
		return murmur.Parameters{}
	}

	var params parametersResponse
	if err := json.NewDecoder(resp.Body).Decode(&params); err != nil {
		c.logger.Error("fetching parameters failed",
			"error", fmt.Errorf("%w: %w", murmur.ErrDecode, err))
		return murmur.Parameters{}
	}
	return selectOptions(params)
}

func selectOptions(params parametersResponse) murmur.Parameters {
	for _, entry := range params.UserInputForm {
		raw, ok := entry["select"]
		if !ok {
			continue
		}
		var ctl formControl
		if err := json.Unmarshal(raw, &ctl); err != nil || ctl.Options == nil {
			continue
		}
		return murmur.Parameters{Variable: ctl.Variable, SelectOptions: ctl.Options}
	}
	return murmur.Parameters{}
}
