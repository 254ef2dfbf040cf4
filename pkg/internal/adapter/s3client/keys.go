package s3client

import (
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/joeydtaylor/switchboard/pkg/internal/utils"
)

// renderKey expands {yyyy} {MM} {dd} {HH} {mm} {ts} and {ulid} in the prefix and file name
// templates. The extension is appended by the caller.
func (c *Client) renderKey(now time.Time) string {
	ts := now.UTC()
	r := strings.NewReplacer(
		"{yyyy}", ts.Format("2006"),
		"{MM}", ts.Format("01"),
		"{dd}", ts.Format("02"),
		"{HH}", ts.Format("15"),
		"{mm}", ts.Format("04"),
		"{ts}", strconv.FormatInt(ts.UnixMilli(), 10),
		"{ulid}", utils.NewULID(ts),
	)
	name := c.fileNameTmpl
	if !strings.Contains(name, "{ulid}") {
		// keys must stay unique so a retried batch never overwrites another batch
		name += "-{ulid}"
	}
	prefix := strings.TrimPrefix(r.Replace(c.prefixTemplate), "/")
	return path.Join(prefix, r.Replace(name))
}
