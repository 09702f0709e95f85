package mediapath

import "strings"

// Translate maps a path as reported by the playback source onto the local
// filesystem by substituting remotePrefix with localPrefix. Paths that do not
// carry the remote prefix are returned unchanged; some items already use
// local-style absolute paths and that is not an error.
func Translate(remotePath, remotePrefix, localPrefix string) string {
	if remotePrefix == "" || !strings.HasPrefix(remotePath, remotePrefix) {
		return remotePath
	}
	return localPrefix + remotePath[len(remotePrefix):]
}
