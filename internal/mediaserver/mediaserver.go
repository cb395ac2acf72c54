// Package mediaserver notifies a media server that the pointer-file tree changed.
package mediaserver

import "context"

// Refresher triggers a library rescan on a media server.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Ensure Emby implements Refresher.
var _ Refresher = (*Emby)(nil)
