package deploy

import (
	"mime"
	"path"
	"regexp"
	"strconv"
)

var revved = regexp.MustCompile(`.+\.rev-.+`)

// IsRevved reports whether the file name carries a content revision, as in
// "main.rev-3f2a1b.js".
func IsRevved(name string) bool {
	return revved.MatchString(path.Base(name))
}

// CacheControl is the Cache-Control header for name: revved files are cached
// for longTTL seconds, everything else for shortTTL.
func CacheControl(name string, longTTL, shortTTL int) string {
	ttl := shortTTL
	if IsRevved(name) {
		ttl = longTTL
	}
	return "max-age=" + strconv.Itoa(ttl)
}

// ContentType guesses the type from the extension. Extensionless files are
// served as HTML.
func ContentType(name string) string {
	ext := path.Ext(name)
	if ext == "" {
		return "text/html"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}
