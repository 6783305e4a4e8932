package discord

import (
	"regexp"
	"strings"
	"sync"
	"time"
)

// a token is a double-quoted phrase or a run of non-space characters
var reToken = regexp.MustCompile(`"([^"]*)"|(\S+)`)

// ParsePrefix splits "!name arg1 "two words"" into its command name
// (lower-cased) and arguments. ok is false when content is not a command.
func ParsePrefix(content, prefix string) (name string, args []string, ok bool) {
	if prefix == "" {
		return "", nil, false
	}
	rest, found := strings.CutPrefix(strings.TrimSpace(content), prefix)
	if !found || rest == "" || strings.HasPrefix(rest, " ") {
		return "", nil, false
	}
	for _, m := range reToken.FindAllStringSubmatch(rest, -1) {
		if m[2] != "" {
			args = append(args, m[2])
		} else {
			args = append(args, m[1])
		}
	}
	if len(args) == 0 {
		return "", nil, false
	}
	name, args = strings.ToLower(args[0]), args[1:]
	if len(args) == 0 {
		args = nil
	}
	return name, args, true
}

// Deduper drops gateway redeliveries of the same message.
type Deduper struct {
	ttl    time.Duration
	now    func() time.Time
	recent sync.Map // key -> time.Time
}

func NewDeduper(ttl time.Duration) *Deduper {
	return &Deduper{ttl: ttl, now: time.Now}
}

// AllowOnce reports true the first time key is seen within the TTL.
func (d *Deduper) AllowOnce(key string) bool {
	now := d.now()
	if v, loaded := d.recent.LoadOrStore(key, now); loaded {
		if now.Sub(v.(time.Time)) < d.ttl {
			return false
		}
		d.recent.Store(key, now)
	}
	d.sweep(now)
	return true
}

func (d *Deduper) sweep(now time.Time) {
	d.recent.Range(func(k, v any) bool {
		if now.Sub(v.(time.Time)) >= d.ttl {
			d.recent.Delete(k)
		}
		return true
	})
}
