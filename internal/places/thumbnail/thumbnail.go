// Copyright (c) 2026 NeverBeen. All rights reserved.
// Author: dev@neverbeen.app

/*
Package thumbnail implements photo thumbnail upload and moderation for places.

Uploads are batched: every filename in the batch must pass the extension
allow-list before any byte is written. Stored files get random names unique
within their place directory; the verified flag gates public visibility and
defaults to whether the uploader is staff.
*/
package thumbnail

import (
	"path/filepath"
	"strings"
	"time"
)

// # Constants

const (
	// NameLength is the length of generated file base names.
	NameLength = 10
	// maxNameAttempts bounds the unique-name redraw loop. Generous: with 62
	// symbols over 10 positions, collisions are practically impossible.
	maxNameAttempts = 64
)

// allowedExtensions is the upload allow-list, matched case-insensitively.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// AllowedExtension reports whether the filename carries an accepted image
// extension.
func AllowedExtension(filename string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// # Entity

// Thumbnail is one uploaded place photo.
//
// InternalURL is the server-side storage path and never leaves the service;
// clients only ever see ExternalURL.
type Thumbnail struct {
	ImageID     int       `json:"image_id"`
	Uploader    string    `json:"uploader"`
	PlaceID     int       `json:"place_id"`
	InternalURL string    `json:"-"`
	ExternalURL string    `json:"external_url"`
	Verified    bool      `json:"verified"`
	UploadDate  time.Time `json:"upload_date"`
}
