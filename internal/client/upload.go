package client

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var ErrNotImage = errors.New("not an image file")

// FileToDataURL reads the file at path and encodes it as
// data:<mime>;base64,<payload>. The MIME type is detected from content.
func FileToDataURL(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", fmt.Errorf("%w: %s is %s", ErrNotImage, path, mt.String())
	}

	return "data:" + mt.String() + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// User-facing messages for analyze failures.
const (
	MsgRateLimited  = "Too many requests right now. Please wait a moment and try again."
	MsgUnauthorized = "Your session has expired. Please sign in again."
	MsgBadRequest   = "That image could not be processed. Please try a different photo."
	MsgNotImage     = "Please upload an image file (JPG, PNG, etc.)"
	MsgGeneric      = "Failed to analyze image. Please try again."
)

// FriendlyMessage maps an error to a short message for end users by looking
// for the HTTP status codes embedded in its text.
func FriendlyMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrNotImage) {
		return MsgNotImage
	}
	text := err.Error()
	switch {
	case strings.Contains(text, "429"):
		return MsgRateLimited
	case strings.Contains(text, "401"):
		return MsgUnauthorized
	case strings.Contains(text, "400"):
		return MsgBadRequest
	default:
		return MsgGeneric
	}
}
