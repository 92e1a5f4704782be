package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// Save serializes the current options to path, one "key=value" line
// per option in sorted key order, overwriting any previous file.  The
// config path option itself is never written (see Snapshot).
func (o *Options) Save(path string) error {
	snap := o.Snapshot()

	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%s\n", k, snap[k])
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write options file: %w", err)
	}
	return nil
}
