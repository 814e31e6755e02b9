package consent

import (
	"strings"

	"github.com/mcpp-dev/mcpp-core/mcpptype"
)

// Key identifies a decision-cache slot: host_id::destination::data_usage,
// with an optional trailing ::tool_name when the caller supplied one.
type Key struct {
	HostID      string
	Destination string
	DataUsage   mcpptype.UsageLevel
	ToolName    string
}

// String renders the key in its canonical wire form.
func (k Key) String() string {
	parts := []string{k.HostID, k.Destination, k.DataUsage.String()}
	if k.ToolName != "" {
		parts = append(parts, k.ToolName)
	}
	return strings.Join(parts, "::")
}
