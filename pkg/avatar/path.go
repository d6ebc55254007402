package avatar

import (
	"regexp"
	"strconv"
)

// Path prefixes VRChat uses for avatar parameters and prefab discovery
// (spec.md §2 supplement).
const (
	AvatarParamPrefix = "/avatar/parameters"
	PrefabPrefix      = "/avatar/parameters/haptic/prefabs/"
	AvatarChangePath  = "/avatar/change"
)

var vrcFuryVersionPrefix = regexp.MustCompile(`VF\d+_`)

// RemoveVersion strips VRCFury's injected "VF<n>_" path segments, so a
// synced parameter's address matches the prefab's address regardless of
// which VRCFury installation number produced it.
func RemoveVersion(path string) string {
	return vrcFuryVersionPrefix.ReplaceAllString(path, "")
}

// prefabPathPattern matches one prefab descriptor announced directly on
// the avatar parameter stream: /avatar/parameters/haptic/prefabs/<author>/<name>/v<version>.
var prefabPathPattern = regexp.MustCompile(`^/avatar/parameters/haptic/prefabs/([^/]+)/([^/]+)/v(\d+)$`)

// parsePrefabPath extracts the (author, name, version) triple from a
// prefab descriptor address, reporting ok=false if address isn't one.
func parsePrefabPath(address string) (author, name string, version uint32, ok bool) {
	m := prefabPathPattern.FindStringSubmatch(address)
	if m == nil {
		return "", "", 0, false
	}
	v, err := strconv.ParseUint(m[3], 10, 32)
	if err != nil {
		return "", "", 0, false
	}
	return m[1], m[2], uint32(v), true
}
