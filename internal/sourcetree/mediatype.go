package sourcetree

import "strings"

// InferMediaType maps a file's extension to an EPUB manifest media type,
// for assets added during assembly or the asset-add editing operation.
// Ported from original_source/src/assemble/asset_embed.rs's
// infer_media_type.
func InferMediaType(path string) string {
	ext := ""
	if idx := strings.LastIndex(path, "."); idx >= 0 {
		ext = strings.ToLower(path[idx+1:])
	}
	switch ext {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "svg":
		return "image/svg+xml"
	case "webp":
		return "image/webp"
	case "css":
		return "text/css"
	case "js":
		return "application/javascript"
	case "ttf":
		return "font/ttf"
	case "otf":
		return "font/otf"
	case "woff":
		return "font/woff"
	case "woff2":
		return "font/woff2"
	case "mp3":
		return "audio/mpeg"
	case "mp4":
		return "video/mp4"
	case "xhtml", "html":
		return "application/xhtml+xml"
	default:
		return "application/octet-stream"
	}
}
