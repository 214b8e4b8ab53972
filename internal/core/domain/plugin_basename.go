package domain

import (
	"strings"
)

// PluginBasename turns a plugin file path into the identifier the host
// framework uses, e.g. "/srv/wp/wp-content/plugins/apppush/apppush.php"
// becomes "apppush/apppush.php" when pluginDirs contains the plugins root.
//
// Backslashes are converted, repeated slashes collapsed, the first matching
// plugin directory prefix removed and surrounding slashes trimmed. With
// absolute plugin directories, applying it to its own output is a no-op.
func PluginBasename(file string, pluginDirs ...string) string {
	file = normalizePath(file)

	for _, dir := range pluginDirs {
		dir = strings.TrimRight(normalizePath(dir), "/")
		if dir == "" {
			continue
		}
		if strings.HasPrefix(file, dir+"/") {
			file = strings.TrimPrefix(file, dir+"/")
			break
		}
	}

	return strings.Trim(file, "/")
}

func normalizePath(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")

	var b strings.Builder
	b.Grow(len(p))
	prevSlash := false
	for i := 0; i < len(p); i++ {
		c := p[i]
		if c == '/' {
			if prevSlash {
				continue
			}
			prevSlash = true
		} else {
			prevSlash = false
		}
		b.WriteByte(c)
	}
	return b.String()
}
