// Package distribution hands finished reels to the platforms that host them.
package distribution

import (
	"context"
	"fmt"
	"time"
)

// UploadRequest carries one finished reel and its metadata.
type UploadRequest struct {
	FilePath     string
	Title        string
	Description  string
	Tags         []string
	Privacy      string
	FirstComment string // posted under the reel right after upload, if set
}

// UploadResponse identifies the published reel.
type UploadResponse struct {
	ID       string
	URL      string
	Platform string
}

// Uploader publishes a reel to one platform.
type Uploader interface {
	Upload(ctx context.Context, req UploadRequest) (*UploadResponse, error)
	Platform() string
}

// PlatformBlockError reports that a platform has rate-limited or blocked the
// account. Uploads are suspended until the cooldown passes.
type PlatformBlockError struct {
	PlatformName string
	Until        time.Time
}

func (e *PlatformBlockError) Error() string {
	return fmt.Sprintf("%s blocked uploads until %s", e.PlatformName, e.Until.Format(time.RFC3339))
}
