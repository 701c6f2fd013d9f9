package images

import (
	"crypto/md5"
	"fmt"
)

// ComputeChecksum generates a deterministic checksum of the image geometry and pixel buffer,
// used to verify that processing steps leave their input untouched and produce identical output.
//
// Arguments:
// - img: The image to compute the checksum for.
//
// Returns:
// - A hex-encoded MD5 checksum string, or "empty" for an image without data.
//
// Example:
//
// ```go
//
//	before := ComputeChecksum(frame)
//	_, _, _ = LetterboxResize(frame, 640, 640)
//	fmt.Println(before == ComputeChecksum(frame)) // true
//
// ```
func ComputeChecksum(img *Image) string {
	if img == nil || len(img.Data) == 0 {
		return "empty"
	}

	hash := md5.New()
	fmt.Fprintf(hash, "%dx%dx%d:", img.Width, img.Height, img.Channels)
	hash.Write(img.Data)
	return fmt.Sprintf("%x", hash.Sum(nil))
}
