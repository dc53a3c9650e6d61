package media

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/ncontiero/dk-tube-sub000/internal/errs"
)

var mediaIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ParseMediaID extracts the media id from a bare id or a watch, short, embed or youtu.be URL.
func ParseMediaID(s string) (string, error) {
	s = strings.TrimSpace(s)
	if mediaIDPattern.MatchString(s) {
		return s, nil
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: bad media id %q", errs.ErrValidation, s)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	host = strings.TrimPrefix(host, "m.")
	var id string
	switch host {
	case "youtu.be":
		id = strings.Trim(u.Path, "/")
	case "youtube.com", "music.youtube.com", "youtube-nocookie.com":
		if v := u.Query().Get("v"); v != "" {
			id = v
			break
		}
		segs := strings.Split(strings.Trim(u.Path, "/"), "/")
		if len(segs) == 2 && (segs[0] == "shorts" || segs[0] == "embed" || segs[0] == "live") {
			id = segs[1]
		}
	}
	if !mediaIDPattern.MatchString(id) {
		return "", fmt.Errorf("%w: bad media id %q", errs.ErrValidation, s)
	}
	return id, nil
}
